package cases

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docket/pkg/storage"
)

// Domain errors for case operations.
var (
	ErrNotFound         = errors.New("case not found")
	ErrDuplicate        = errors.New("case already exists")
	ErrInvalidCase      = errors.New("invalid case")
	ErrInvalidDocument  = errors.New("invalid document payload")
	ErrDocumentTooLarge = errors.New("document exceeds maximum size")
	ErrTransientStatus  = errors.New("ANALYZING is not a persistable status")
	ErrStatusRegression = errors.New("processed case cannot return to NEW")
	ErrHistoryRewritten = errors.New("chat history must extend the stored history")
)

// MapHTTPStatus maps case domain errors to HTTP status codes. Errors from
// the document store fall through to the storage mapping.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrStatusRegression),
		errors.Is(err, ErrHistoryRewritten):
		return http.StatusConflict
	case errors.Is(err, ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidCase),
		errors.Is(err, ErrInvalidDocument),
		errors.Is(err, ErrTransientStatus):
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
