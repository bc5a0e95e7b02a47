package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/docket/internal/desk"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <case-id>",
		Short: "Analyze a new case document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCaseID(args[0])
			if err != nil {
				return err
			}

			res, err := a.desk.Dispatch(cmd.Context(), desk.Analyze{CaseID: id})
			if err != nil {
				if res.Case != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "case %s left as %s\n", id, res.Case.Status)
				}
				return err
			}
			return a.printCase(*res.Case)
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <case-id> <question...>",
		Short: "Ask a question about a case document",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCaseID(args[0])
			if err != nil {
				return err
			}

			question := strings.Join(args[1:], " ")
			res, err := a.desk.Dispatch(cmd.Context(), desk.Ask{CaseID: id, Question: question})
			if err != nil {
				return err
			}

			if a.jsonOut {
				return a.printCase(*res.Case)
			}

			history := res.Case.ChatHistory
			if n := len(history); n > 0 {
				fmt.Fprintln(a.out, history[n-1].Text)
			}
			return nil
		},
	}
}
