package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/docket/internal/backend"
	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/desk"
)

type app struct {
	baseURL string
	jsonOut bool
	verbose bool

	desk *desk.Desk
	out  io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "docket",
		Short:        "Review client cases, request analyses and ask about documents",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  docket cases list --status new
  docket submit --name "Claire Martin" --email claire@example.com --file contract.pdf
  docket analyze 7f9c24e8-3b12-4fef-91fd-5bd4a3a6b0e1
  docket ask 7f9c24e8-3b12-4fef-91fd-5bd4a3a6b0e1 "Is the termination clause enforceable?"
`),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.baseURL, "url", "", "case service base URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of text")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log desk activity to stderr")

	cmd.AddCommand(
		newCasesCmd(a),
		newSubmitCmd(a),
		newAnalyzeCmd(a),
		newAskCmd(a),
	)

	return cmd
}

// init builds the desk and loads the collection. Every command starts from
// the server's current view of the cases.
func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if a.baseURL != "" {
		cfg.Desk.BaseURL = a.baseURL
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client := backend.New(cfg.Desk.BaseURL, nil, cfg.Desk.RequestTimeoutDuration(), logger)
	a.desk = desk.NewFromBackend(client, desk.Config{
		AnalysisTimeout: cfg.Desk.AnalysisTimeoutDuration(),
		ChatTimeout:     cfg.Desk.ChatTimeoutDuration(),
	}, logger)

	if _, err := a.desk.Dispatch(cmd.Context(), desk.Load{}); err != nil {
		return errors.Wrap(err, "load cases")
	}
	return nil
}

func exitCode(err error) int {
	switch {
	case desk.IsPrecondition(err):
		return 2
	case backend.IsTransport(err):
		return 3
	case backend.IsService(err):
		return 4
	}
	return 1
}
