package desk_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/JaimeStill/docket/internal/cases"
	"github.com/JaimeStill/docket/internal/desk"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListCases(ctx context.Context) ([]cases.Case, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cases.Case), args.Error(1)
}

func (m *mockBackend) CreateCase(ctx context.Context, c cases.Case) (cases.Case, error) {
	args := m.Called(ctx, c)
	if fn, ok := args.Get(0).(func(cases.Case) cases.Case); ok {
		return fn(c), args.Error(1)
	}
	return args.Get(0).(cases.Case), args.Error(1)
}

func (m *mockBackend) UpdateCase(ctx context.Context, c cases.Case) (cases.Case, error) {
	args := m.Called(ctx, c)
	if fn, ok := args.Get(0).(func(cases.Case) cases.Case); ok {
		return fn(c), args.Error(1)
	}
	return args.Get(0).(cases.Case), args.Error(1)
}

func (m *mockBackend) Analyze(ctx context.Context, req cases.AnalyzeRequest) (cases.Analysis, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(cases.Analysis), args.Error(1)
}

func (m *mockBackend) Ask(ctx context.Context, req cases.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// echo returns the persisted case unchanged, as the case store does.
func echo(c cases.Case) cases.Case { return c }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDesk(b *mockBackend) *desk.Desk {
	return desk.NewFromBackend(b, desk.Config{
		AnalysisTimeout: time.Second,
		ChatTimeout:     time.Second,
	}, discard())
}

func storedCase(name string) cases.Case {
	return cases.Case{
		ID:          uuid.New(),
		ClientName:  name,
		ClientEmail: "client@example.com",
		Message:     "Bonjour",
		Document: cases.Document{
			FileName:   "contract.pdf",
			FileType:   "application/pdf",
			FileBase64: "JVBERi0xLjc=",
		},
		SubmittedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Status:      cases.StatusNew,
		ChatHistory: []cases.ChatMessage{},
	}
}

// loaded returns a desk whose collection holds cs.
func loaded(b *mockBackend, cs ...cases.Case) *desk.Desk {
	b.On("ListCases", mock.Anything).Return(cs, nil).Once()
	d := newDesk(b)
	if _, err := d.Cases.Load(context.Background()); err != nil {
		panic(err)
	}
	return d
}

func sampleAnalysis() cases.Analysis {
	return cases.Analysis{
		Summary:       "ok",
		KeyPoints:     []string{},
		Risks:         []cases.Risk{{Severity: cases.SeverityHigh, Description: "clause X"}},
		Actions:       []string{},
		DraftResponse: "...",
	}
}

func roles(c cases.Case) []string {
	out := make([]string, len(c.ChatHistory))
	for i, m := range c.ChatHistory {
		out[i] = string(m.Role) + ":" + m.Text
	}
	return out
}
