package assistant_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"google.golang.org/genai"

	"github.com/JaimeStill/docket/internal/prompts"
)

type call struct {
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeModel replays replies in order; an error entry fails that attempt.
type fakeModel struct {
	mu      sync.Mutex
	replies []reply
	calls   []call
}

type reply struct {
	text string
	err  error
}

func (m *fakeModel) Generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, call{contents: contents, config: config})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.replies) == 0 {
		return "", io.ErrUnexpectedEOF
	}
	r := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return r.text, r.err
}

func (m *fakeModel) Calls() []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]call(nil), m.calls...)
}

// blockingModel waits for the caller's deadline.
type blockingModel struct {
	calls atomic.Int32
}

func (m *blockingModel) Generate(ctx context.Context, _ []*genai.Content, _ *genai.GenerateContentConfig) (string, error) {
	m.calls.Add(1)
	<-ctx.Done()
	return "", ctx.Err()
}

// builtins resolves the built-in stage texts without a database.
type builtins struct{}

func (builtins) Instructions(_ context.Context, stage prompts.Stage) (string, error) {
	return prompts.Instructions(stage)
}

func (builtins) Spec(_ context.Context, stage prompts.Stage) (string, error) {
	return prompts.Spec(stage)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func partText(c *genai.Content) []string {
	var out []string
	for _, p := range c.Parts {
		if p.Text != "" {
			out = append(out, p.Text)
		}
		if p.InlineData != nil {
			out = append(out, "<"+p.InlineData.MIMEType+">")
		}
	}
	return out
}
