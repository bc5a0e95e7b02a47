package prompts

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("prompt not found")
	ErrDuplicate    = errors.New("prompt name already exists")
	ErrInvalidStage = errors.New("stage must be analyze or chat")
	ErrMissingField = errors.New("name and instructions are required")
)

var statusOf = []struct {
	target error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrDuplicate, http.StatusConflict},
	{ErrInvalidStage, http.StatusBadRequest},
	{ErrMissingField, http.StatusBadRequest},
}

// MapHTTPStatus returns the status for the first known error in err's chain,
// or 500.
func MapHTTPStatus(err error) int {
	for _, m := range statusOf {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
