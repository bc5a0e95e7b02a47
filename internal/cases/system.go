package cases

import (
	"context"

	"github.com/google/uuid"
)

// System defines the server-side case store.
type System interface {
	Handler(maxBodySize int64) *Handler

	List(ctx context.Context, filters Filters) ([]Case, error)
	Find(ctx context.Context, id uuid.UUID) (*Case, error)
	Create(ctx context.Context, c Case) (*Case, error)
	Update(ctx context.Context, id uuid.UUID, c Case) (*Case, error)
	// Document returns the decoded document of a case.
	Document(ctx context.Context, id uuid.UUID) (*File, error)
}

// File is a decoded case document.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
