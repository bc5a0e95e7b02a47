package backend_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/docket/internal/backend"
	"github.com/JaimeStill/docket/internal/cases"
)

const baseURL = "http://docket.test/api"

func newClient() *backend.Client {
	return backend.New(baseURL, nil, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleCase() cases.Case {
	return cases.Case{
		ID:          uuid.MustParse("4a3c5b0e-1e7d-4a3a-9f36-0a8d7b6b2c11"),
		ClientName:  "Claire Martin",
		ClientEmail: "claire@example.com",
		Message:     "Bonjour",
		Document:    cases.Document{FileName: "contract.pdf", FileType: "application/pdf", FileBase64: "JVBERi0xLjc="},
		SubmittedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Status:      cases.StatusNew,
		ChatHistory: []cases.ChatMessage{},
	}
}

func TestListCases(t *testing.T) {
	defer gock.Off()

	gock.New(baseURL).
		Get("/cases").
		Reply(http.StatusOK).
		JSON([]cases.Case{sampleCase()})

	got, err := newClient().ListCases(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sampleCase().ID, got[0].ID)
	assert.False(t, gock.HasUnmatchedRequest())
}

func TestUpdateCaseSendsFullCase(t *testing.T) {
	defer gock.Off()

	c := sampleCase().AppendMessage(cases.UserMessage("Q1", time.Now().UTC()))

	gock.New(baseURL).
		Put("/cases/" + c.ID.String()).
		MatchType("json").
		BodyString(`"chatHistory":\[\{"role":"user","text":"Q1"`).
		Reply(http.StatusOK).
		JSON(c)

	got, err := newClient().UpdateCase(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, got.ChatHistory, 1)
	assert.True(t, gock.IsDone())
}

func TestAnalyze(t *testing.T) {
	defer gock.Off()

	gock.New(baseURL).
		Post("/analyze").
		MatchType("json").
		JSON(cases.AnalyzeRequest{FileBase64: "JVBERi0xLjc=", MimeType: "application/pdf", ClientMessage: "Bonjour"}).
		Reply(http.StatusOK).
		JSON(map[string]any{
			"summary":       "ok",
			"keyPoints":     []string{},
			"risks":         []map[string]string{{"severity": "High", "description": "clause X"}},
			"actions":       []string{},
			"draftResponse": "...",
		})

	got, err := newClient().Analyze(context.Background(), cases.AnalyzeRequest{
		FileBase64:    "JVBERi0xLjc=",
		MimeType:      "application/pdf",
		ClientMessage: "Bonjour",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Summary)
	assert.Equal(t, cases.SeverityHigh, got.Risks[0].Severity)
}

func TestAsk(t *testing.T) {
	defer gock.Off()

	gock.New(baseURL).
		Post("/chat").
		Reply(http.StatusOK).
		JSON(cases.ChatResponse{Response: "A1"})

	got, err := newClient().Ask(context.Background(), cases.ChatRequest{Question: "Q1"})
	require.NoError(t, err)
	assert.Equal(t, "A1", got)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantService bool
		wantMessage string
	}{
		{"structured error", http.StatusBadGateway, `{"error":"model unavailable"}`, true, "model unavailable"},
		{"structured not found", http.StatusNotFound, `{"error":"case not found"}`, true, "case not found"},
		{"bare 500", http.StatusInternalServerError, `internal error`, false, ""},
		{"empty error field", http.StatusBadRequest, `{"error":""}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()

			gock.New(baseURL).
				Post("/analyze").
				Reply(tt.status).
				BodyString(tt.body)

			_, err := newClient().Analyze(context.Background(), cases.AnalyzeRequest{})
			require.Error(t, err)

			assert.Equal(t, tt.wantService, backend.IsService(err))
			assert.Equal(t, !tt.wantService, backend.IsTransport(err))
			assert.Equal(t, tt.status, backend.StatusCode(err))

			if tt.wantService {
				var se *backend.ServiceError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantMessage, se.Message)
			}
		})
	}
}

func TestNetworkFailureIsTransport(t *testing.T) {
	defer gock.Off()

	gock.New(baseURL).
		Get("/cases").
		ReplyError(errors.New("connection refused"))

	_, err := newClient().ListCases(context.Background())
	require.Error(t, err)
	assert.True(t, backend.IsTransport(err))
	assert.Zero(t, backend.StatusCode(err))
}

func TestMalformedSuccessBodyIsTransport(t *testing.T) {
	defer gock.Off()

	gock.New(baseURL).
		Post("/chat").
		Reply(http.StatusOK).
		BodyString("not json")

	_, err := newClient().Ask(context.Background(), cases.ChatRequest{Question: "Q"})
	assert.True(t, backend.IsTransport(err))
}
