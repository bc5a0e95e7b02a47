// Package assistant serves /analyze and /chat with a generative model. Stage
// instructions come from the prompts system; the model sits behind Model so
// the provider can be swapped.
package assistant

import (
	"context"

	"google.golang.org/genai"

	"github.com/JaimeStill/docket/internal/cases"
	"github.com/JaimeStill/docket/internal/prompts"
)

// System analyzes case documents and answers questions about them.
type System interface {
	Handler(maxBodySize int64) *Handler

	Analyze(ctx context.Context, req cases.AnalyzeRequest) (*cases.Analysis, error)
	Chat(ctx context.Context, req cases.ChatRequest) (string, error)
}

// Model produces the text reply for one generation request.
type Model interface {
	Generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error)
}

// Instructions resolves the effective texts for a stage. prompts.System
// satisfies it.
type Instructions interface {
	Instructions(ctx context.Context, stage prompts.Stage) (string, error)
	Spec(ctx context.Context, stage prompts.Stage) (string, error)
}
