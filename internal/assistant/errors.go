package assistant

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/JaimeStill/docket/internal/cases"
)

var (
	ErrMissingField   = errors.New("missing field")
	ErrInvalidRequest = errors.New("invalid request")
	ErrModel          = errors.New("model request failed")
	ErrEmptyResponse  = errors.New("model returned an empty response")
)

func missingField(name string) error {
	return errors.Mark(errors.Newf("missing field: %s", name), ErrMissingField)
}

// MapHTTPStatus maps assistant errors to HTTP status codes. Model failures
// are reported as 502 so callers can tell them from bad input.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingField),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, cases.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, cases.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrModel):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
