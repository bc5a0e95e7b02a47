package main

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/docket/internal/cases"
)

func newCasesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Browse the case collection",
	}
	cmd.AddCommand(newCasesListCmd(a), newCasesShowCmd(a))
	return cmd
}

func newCasesListCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot := a.desk.Cases.Snapshot()

			if status != "" {
				want, err := cases.ParseStatus(status)
				if err != nil {
					return err
				}
				snapshot = slices.DeleteFunc(snapshot, func(c cases.Case) bool {
					return c.Status != want
				})
			}

			return a.printCases(snapshot)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only cases in this status (new, processed)")
	return cmd
}

func newCasesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <case-id>",
		Short: "Show a case with its analysis and conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCaseID(args[0])
			if err != nil {
				return err
			}

			c, ok := a.desk.Cases.Get(id)
			if !ok {
				return errors.Newf("case %s not found", id)
			}
			return a.printCase(c)
		},
	}
}

func parseCaseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "invalid case id %q", s)
	}
	return id, nil
}
