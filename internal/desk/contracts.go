package desk

import (
	"context"

	"github.com/JaimeStill/docket/internal/cases"
)

// Repository is the remote case store.
type Repository interface {
	ListCases(ctx context.Context) ([]cases.Case, error)
	CreateCase(ctx context.Context, c cases.Case) (cases.Case, error)
	UpdateCase(ctx context.Context, c cases.Case) (cases.Case, error)
}

// Analyst produces a structured analysis of a document.
type Analyst interface {
	Analyze(ctx context.Context, req cases.AnalyzeRequest) (cases.Analysis, error)
}

// Counsel answers one question about a document given the prior turns.
type Counsel interface {
	Ask(ctx context.Context, req cases.ChatRequest) (string, error)
}

// Backend bundles the three collaborators. backend.Client satisfies it.
type Backend interface {
	Repository
	Analyst
	Counsel
}
