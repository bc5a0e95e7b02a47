package storage

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/cockroachdb/errors"
)

// ErrBadKey marks every rejected storage key.
var ErrBadKey = errors.New("bad storage key")

var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.Mark(errors.New("storage key must not be empty"), ErrBadKey)
	ErrInvalidKey = errors.Mark(errors.New("storage key contains invalid path segment"), ErrBadKey)
)

// MapHTTPStatus maps storage errors to HTTP status codes. Any other answer
// from the blob service is an upstream failure.
func MapHTTPStatus(err error) int {
	var resp *azcore.ResponseError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadKey):
		return http.StatusBadRequest
	case errors.As(err, &resp):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
