package desk

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// documentTypes maps accepted extensions to the media type assumed when the
// caller does not declare one.
var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// Intake is what a client submits to open a case.
type Intake struct {
	ClientName  string `validate:"required"`
	ClientEmail string `validate:"required,email"`
	Message     string `validate:"required"`
	FileName    string `validate:"required,document"`
	FileType    string
	FileBase64  string `validate:"required"`
}

// AcceptedExtensions lists the document extensions intake allows.
func AcceptedExtensions() []string {
	return []string{".pdf", ".doc", ".docx", ".txt"}
}

// MediaType returns the declared file type, or the one implied by the extension.
func (in Intake) MediaType() string {
	if t := strings.TrimSpace(in.FileType); t != "" {
		return t
	}
	return documentTypes[strings.ToLower(filepath.Ext(in.FileName))]
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("document", func(fl validator.FieldLevel) bool {
		_, ok := documentTypes[strings.ToLower(filepath.Ext(fl.Field().String()))]
		return ok
	})
	return v
}
