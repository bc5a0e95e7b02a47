package main

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/docket/internal/desk"
)

func newSubmitCmd(a *app) *cobra.Command {
	var (
		in   desk.Intake
		path string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Open a case for a client document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(err, "read document")
			}

			in.FileName = filepath.Base(path)
			in.FileBase64 = base64.StdEncoding.EncodeToString(data)

			res, err := a.desk.Dispatch(cmd.Context(), desk.Submit{Intake: in})
			if err != nil {
				return err
			}
			return a.printCase(*res.Case)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.ClientName, "name", "", "client name")
	f.StringVar(&in.ClientEmail, "email", "", "client email")
	f.StringVar(&in.Message, "message", "", "message from the client")
	f.StringVar(&in.FileType, "type", "", "document media type (inferred from the extension when empty)")
	f.StringVar(&path, "file", "", "document to attach (.pdf, .doc, .docx, .txt)")

	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("message")
	cmd.MarkFlagRequired("file")

	return cmd
}
