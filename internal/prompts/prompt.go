// Package prompts stores instruction overrides for the assistant. At most one
// prompt per stage is active; without one the built-in instructions apply.
package prompts

import (
	"strings"

	"github.com/google/uuid"
)

type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// Command carries the writable fields of a prompt for create and update.
type Command struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

func (c Command) validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Instructions) == "" {
		return ErrMissingField
	}
	if _, err := ParseStage(string(c.Stage)); err != nil {
		return err
	}
	return nil
}

// StageContent pairs a stage with one of its texts.
type StageContent struct {
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
}
