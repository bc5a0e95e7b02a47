package assistant_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/JaimeStill/docket/internal/assistant"
	"github.com/JaimeStill/docket/internal/cases"
)

const pdf = "JVBERi0xLjc=" // %PDF-1.7

const analysisJSON = `{
	"summary": "Fixed-term employment contract with a broad mobility clause.",
	"keyPoints": ["mobility clause", "three-month probation"],
	"risks": [{"severity": "High", "description": "Mobility clause covers the whole country."}],
	"actions": ["Ask the employer for the relocation terms in writing."],
	"draftResponse": "Subject: Your employment contract\n\nDear Ms Martin,"
}`

func newSystem(t *testing.T, model *fakeModel, opts assistant.Options) (assistant.System, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return assistant.New(model, builtins{}, assistant.NewMetrics("docket", reg), opts, discard()), reg
}

func TestAnalyze(t *testing.T) {
	model := &fakeModel{replies: []reply{{text: analysisJSON}}}
	sys, _ := newSystem(t, model, assistant.Options{})

	a, err := sys.Analyze(context.Background(), cases.AnalyzeRequest{
		FileBase64:    "data:application/pdf;base64," + pdf,
		MimeType:      "application/pdf",
		ClientMessage: "Can my employer move me to Lyon?",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"mobility clause", "three-month probation"}, a.KeyPoints)
	assert.Equal(t, cases.SeverityHigh, a.Risks[0].Severity)

	calls := model.Calls()
	require.Len(t, calls, 1)

	cfg := calls[0].config
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.ResponseSchema)
	assert.ElementsMatch(t, []string{"summary", "keyPoints", "risks", "actions", "draftResponse"}, cfg.ResponseSchema.Required)
	assert.Equal(t,
		[]string{"Low", "Medium", "High"},
		cfg.ResponseSchema.Properties["risks"].Items.Properties["severity"].Enum)

	require.Len(t, calls[0].contents, 1)
	parts := partText(calls[0].contents[0])
	assert.Equal(t, "<application/pdf>", parts[0])
	assert.Contains(t, parts[1], "move me to Lyon")
	assert.Equal(t, "%PDF-1.7", string(calls[0].contents[0].Parts[0].InlineData.Data))
}

func TestAnalyzeToleratesFencedReply(t *testing.T) {
	model := &fakeModel{replies: []reply{{text: "```json\n" + analysisJSON + "\n```"}}}
	sys, _ := newSystem(t, model, assistant.Options{})

	a, err := sys.Analyze(context.Background(), cases.AnalyzeRequest{FileBase64: pdf, MimeType: "application/pdf"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.Summary)
}

func TestAnalyzeLegacySeverity(t *testing.T) {
	legacy := `{"summary":"s","keyPoints":[],"risks":[{"severity":"Élevé","description":"d"}],"actions":[],"draftResponse":"r"}`
	model := &fakeModel{replies: []reply{{text: legacy}}}
	sys, _ := newSystem(t, model, assistant.Options{})

	a, err := sys.Analyze(context.Background(), cases.AnalyzeRequest{FileBase64: pdf, MimeType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, cases.SeverityHigh, a.Risks[0].Severity)
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		replies []reply
		want    error
	}{
		{"invalid base64", "%%%", nil, cases.ErrInvalidDocument},
		{"unparseable reply", pdf, []reply{{text: "I cannot help with that."}}, assistant.ErrModel},
		{"unknown severity", pdf, []reply{{text: `{"risks":[{"severity":"Critical","description":"d"}]}`}}, assistant.ErrModel},
		{"model rejects request", pdf, []reply{{err: genai.APIError{Code: 400, Message: "bad request"}}}, assistant.ErrModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, _ := newSystem(t, &fakeModel{replies: tt.replies}, assistant.Options{Attempts: 3})

			_, err := sys.Analyze(context.Background(), cases.AnalyzeRequest{FileBase64: tt.payload, MimeType: "application/pdf"})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRejectsOversizedDocument(t *testing.T) {
	model := &fakeModel{replies: []reply{{text: analysisJSON}}}
	sys, _ := newSystem(t, model, assistant.Options{MaxDocumentSize: 4})

	_, err := sys.Analyze(context.Background(), cases.AnalyzeRequest{FileBase64: "data:application/pdf;base64," + pdf, MimeType: "application/pdf"})
	assert.ErrorIs(t, err, cases.ErrDocumentTooLarge)
	assert.Empty(t, model.Calls(), "model must not be called")

	sys, _ = newSystem(t, model, assistant.Options{MaxDocumentSize: 8})
	_, err = sys.Analyze(context.Background(), cases.AnalyzeRequest{FileBase64: pdf, MimeType: "application/pdf"})
	assert.NoError(t, err)
}

func TestRetriesTransientFailures(t *testing.T) {
	model := &fakeModel{replies: []reply{
		{err: genai.APIError{Code: 503, Message: "overloaded"}},
		{err: assistant.ErrEmptyResponse},
		{text: "Clause 4 sets the mobility area."},
	}}
	sys, reg := newSystem(t, model, assistant.Options{Attempts: 3, RetryDelay: time.Millisecond})

	answer, err := sys.Chat(context.Background(), cases.ChatRequest{Question: "Where is the mobility clause?", FileBase64: pdf, MimeType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, "Clause 4 sets the mobility area.", answer)
	assert.Len(t, model.Calls(), 3)

	expected := `
# HELP docket_assistant_model_retries_total Model call retries by stage.
# TYPE docket_assistant_model_retries_total counter
docket_assistant_model_retries_total{stage="chat"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "docket_assistant_model_retries_total"))
}

func TestDoesNotRetryRejectedRequests(t *testing.T) {
	model := &fakeModel{replies: []reply{{err: genai.APIError{Code: 400, Message: "invalid mime type"}}}}
	sys, _ := newSystem(t, model, assistant.Options{Attempts: 5, RetryDelay: time.Millisecond})

	_, err := sys.Chat(context.Background(), cases.ChatRequest{Question: "q", FileBase64: pdf, MimeType: "x/unknown"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, assistant.ErrModel))
	assert.Len(t, model.Calls(), 1)
}

func TestTimeoutBoundsModelCall(t *testing.T) {
	model := &blockingModel{}
	reg := prometheus.NewRegistry()
	sys := assistant.New(model, builtins{}, assistant.NewMetrics("docket", reg), assistant.Options{Timeout: 20 * time.Millisecond, Attempts: 3}, discard())

	start := time.Now()
	_, err := sys.Chat(context.Background(), cases.ChatRequest{Question: "q", FileBase64: pdf, MimeType: "application/pdf"})

	assert.True(t, errors.Is(err, assistant.ErrModel))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
	assert.EqualValues(t, 1, model.calls.Load())
}

func TestChatConversation(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	history := []cases.ChatMessage{
		cases.UserMessage("What is the probation period?", t0),
		cases.ModelMessage("Three months.", t0.Add(time.Second)),
		cases.UserMessage("Can it be renewed?", t0.Add(2*time.Second)),
	}

	tests := []struct {
		name     string
		analysis *cases.Analysis
		wantCtx  string
	}{
		{"without analysis", nil, "No prior analysis."},
		{"with analysis", &cases.Analysis{Summary: "Fixed-term contract", KeyPoints: []string{}, Risks: []cases.Risk{}, Actions: []string{}}, "Fixed-term contract"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{replies: []reply{{text: "Once, by written agreement.\n"}}}
			sys, _ := newSystem(t, model, assistant.Options{})

			answer, err := sys.Chat(context.Background(), cases.ChatRequest{
				Question:        "Can it be renewed?",
				FileBase64:      pdf,
				MimeType:        "application/pdf",
				History:         history,
				AnalysisContext: tt.analysis,
			})
			require.NoError(t, err)
			assert.Equal(t, "Once, by written agreement.", answer)

			c := model.Calls()[0]
			assert.Contains(t, c.config.SystemInstruction.Parts[0].Text, tt.wantCtx)

			require.Len(t, c.contents, 3)
			assert.Equal(t, []string{"<application/pdf>", "What is the probation period?"}, partText(c.contents[0]))
			assert.Equal(t, string(genai.RoleModel), c.contents[1].Role)
			assert.Equal(t, []string{"Three months."}, partText(c.contents[1]))
			assert.Equal(t, []string{"Can it be renewed?"}, partText(c.contents[2]), "question must not be repeated")
		})
	}
}

func TestChatWithoutHistory(t *testing.T) {
	model := &fakeModel{replies: []reply{{text: "Yes."}}}
	sys, _ := newSystem(t, model, assistant.Options{})

	_, err := sys.Chat(context.Background(), cases.ChatRequest{Question: "Is it signed?", FileBase64: pdf, MimeType: "application/pdf"})
	require.NoError(t, err)

	contents := model.Calls()[0].contents
	require.Len(t, contents, 1)
	assert.Equal(t, []string{"<application/pdf>", "Is it signed?"}, partText(contents[0]))
}
