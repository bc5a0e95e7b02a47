package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/JaimeStill/docket/internal/cases"
)

const timeLayout = "2006-01-02 15:04"

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printCases(list []cases.Case) error {
	if a.jsonOut {
		return a.printJSON(list)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCLIENT\tDOCUMENT\tSUBMITTED\tMESSAGES")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			c.ID, c.Status, c.ClientName, c.FileName,
			c.SubmittedAt.Local().Format(timeLayout), len(c.ChatHistory))
	}
	return tw.Flush()
}

func (a *app) printCase(c cases.Case) error {
	if a.jsonOut {
		return a.printJSON(c)
	}

	w := a.out
	fmt.Fprintf(w, "Case %s  [%s]\n", c.ID, c.Status)
	fmt.Fprintf(w, "Client:    %s <%s>\n", c.ClientName, c.ClientEmail)
	fmt.Fprintf(w, "Document:  %s (%s)\n", c.FileName, c.FileType)
	fmt.Fprintf(w, "Submitted: %s\n", c.SubmittedAt.Local().Format(timeLayout))
	if c.Message != "" {
		fmt.Fprintf(w, "\n%s\n", c.Message)
	}

	if an := c.Analysis; an != nil {
		fmt.Fprintf(w, "\nSummary\n  %s\n", an.Summary)
		printList(a, "Key points", an.KeyPoints)
		if len(an.Risks) > 0 {
			fmt.Fprintln(w, "\nRisks")
			for _, r := range an.Risks {
				fmt.Fprintf(w, "  [%s] %s\n", r.Severity, r.Description)
			}
		}
		printList(a, "Actions", an.Actions)
		if an.DraftResponse != "" {
			fmt.Fprintf(w, "\nDraft response\n%s\n", indent(an.DraftResponse))
		}
	}

	if len(c.ChatHistory) > 0 {
		fmt.Fprintln(w, "\nConversation")
		for _, m := range c.ChatHistory {
			fmt.Fprintf(w, "  %s (%s):\n%s\n", m.Role, m.Timestamp.Local().Format(timeLayout), indent(m.Text))
		}
	}
	return nil
}

func printList(a *app, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(a.out, "\n%s\n", title)
	for _, it := range items {
		fmt.Fprintf(a.out, "  - %s\n", it)
	}
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n    ")
}
