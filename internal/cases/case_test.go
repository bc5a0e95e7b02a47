package cases_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/docket/internal/cases"
)

var t0 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newCase() cases.Case {
	return cases.Case{
		ID:          uuid.MustParse("7f9c24e8-3b12-4fef-91fd-5bd4a3a6b0e1"),
		ClientName:  "Claire Martin",
		ClientEmail: "claire@example.com",
		Message:     "Bonjour",
		Document: cases.Document{
			FileName:   "contract.pdf",
			FileType:   "application/pdf",
			FileBase64: "JVBERi0xLjc=",
		},
		SubmittedAt: t0,
		Status:      cases.StatusNew,
		ChatHistory: []cases.ChatMessage{},
	}
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

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to cases.Status
		legal    bool
	}{
		{cases.StatusNew, cases.StatusAnalyzing, true},
		{cases.StatusAnalyzing, cases.StatusProcessed, true},
		{cases.StatusAnalyzing, cases.StatusNew, true},
		{cases.StatusNew, cases.StatusProcessed, false},
		{cases.StatusProcessed, cases.StatusNew, false},
		{cases.StatusProcessed, cases.StatusAnalyzing, false},
		{cases.StatusNew, cases.StatusNew, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.legal, tt.from.CanTransition(tt.to))
			if tt.legal {
				assert.Equal(t, tt.to, tt.from.MustTransition(tt.to))
			} else {
				assert.Panics(t, func() { tt.from.MustTransition(tt.to) })
			}
		})
	}
}

func TestAnalysisLifecycle(t *testing.T) {
	c := newCase()

	analyzing := c.BeginAnalysis()
	assert.Equal(t, cases.StatusAnalyzing, analyzing.Status)
	assert.Nil(t, analyzing.Analysis)
	assert.Equal(t, cases.StatusNew, c.Status, "receiver must not change")

	done := analyzing.CompleteAnalysis(sampleAnalysis())
	require.NotNil(t, done.Analysis)
	assert.Equal(t, cases.StatusProcessed, done.Status)
	assert.Equal(t, cases.SeverityHigh, done.Analysis.Risks[0].Severity)
	assert.NoError(t, done.Validate())

	rolled := analyzing.AbortAnalysis()
	assert.Equal(t, cases.StatusNew, rolled.Status)
	assert.Nil(t, rolled.Analysis)

	assert.Panics(t, func() { done.BeginAnalysis() })
	assert.Panics(t, func() { c.CompleteAnalysis(sampleAnalysis()) })
}

func TestAppendMessageDoesNotAlias(t *testing.T) {
	c := newCase().AppendMessage(cases.UserMessage("m1", t0))
	a := c.AppendMessage(cases.ModelMessage("a", t0))
	b := c.AppendMessage(cases.ModelMessage("b", t0))

	assert.Len(t, c.ChatHistory, 1)
	assert.Equal(t, "a", a.ChatHistory[1].Text)
	assert.Equal(t, "b", b.ChatHistory[1].Text)
}

func TestCloneIsDeep(t *testing.T) {
	pages := 3
	c := newCase().BeginAnalysis().CompleteAnalysis(sampleAnalysis())
	c.PageCount = &pages

	cp := c.Clone()
	cp.Analysis.Risks[0].Description = "changed"
	*cp.PageCount = 9

	assert.Equal(t, "clause X", c.Analysis.Risks[0].Description)
	assert.Equal(t, 3, *c.PageCount)
}

func TestValidate(t *testing.T) {
	processedNoAnalysis := newCase()
	processedNoAnalysis.Status = cases.StatusProcessed

	newWithAnalysis := newCase()
	a := sampleAnalysis()
	newWithAnalysis.Analysis = &a

	badRole := newCase()
	badRole.ChatHistory = []cases.ChatMessage{{Role: "lawyer", Text: "?"}}

	unknown := newCase()
	unknown.Status = "ARCHIVED"

	for name, c := range map[string]cases.Case{
		"processed without analysis": processedNoAnalysis,
		"new with analysis":          newWithAnalysis,
		"unknown role":               badRole,
		"unknown status":             unknown,
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, errors.Is(c.Validate(), cases.ErrInvalidCase))
		})
	}

	assert.NoError(t, newCase().Validate())
}

func TestHistoryExtends(t *testing.T) {
	m1 := cases.UserMessage("m1", t0)
	m2 := cases.ModelMessage("m2", t0.Add(time.Second))

	c := newCase().AppendMessage(m1).AppendMessage(m2)

	assert.True(t, c.HistoryExtends(nil))
	assert.True(t, c.HistoryExtends([]cases.ChatMessage{m1}))
	assert.True(t, c.HistoryExtends([]cases.ChatMessage{m1, m2}))
	assert.False(t, c.HistoryExtends([]cases.ChatMessage{m2}))
	assert.False(t, c.HistoryExtends([]cases.ChatMessage{m1, m2, m1}))

	// same instant in another zone is the same message
	local := cases.UserMessage("m1", t0.In(time.FixedZone("CET", 3600)))
	assert.True(t, c.HistoryExtends([]cases.ChatMessage{local}))
}

func TestLegacyWireValues(t *testing.T) {
	payload := `{
		"status": "Traité",
		"analysis": {
			"summary": "s",
			"keyPoints": [],
			"risks": [
				{"severity": "Faible", "description": "a"},
				{"severity": "Moyen", "description": "b"},
				{"severity": "Élevé", "description": "c"}
			],
			"actions": [],
			"draftResponse": "d"
		}
	}`

	var c cases.Case
	require.NoError(t, json.Unmarshal([]byte(payload), &c))

	assert.Equal(t, cases.StatusProcessed, c.Status)
	require.Len(t, c.Analysis.Risks, 3)
	assert.Equal(t, cases.SeverityLow, c.Analysis.Risks[0].Severity)
	assert.Equal(t, cases.SeverityMedium, c.Analysis.Risks[1].Severity)
	assert.Equal(t, cases.SeverityHigh, c.Analysis.Risks[2].Severity)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status":"PROCESSED"`)
	assert.Contains(t, string(out), `"severity":"High"`)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]cases.Status{
		"NEW":              cases.StatusNew,
		"new":              cases.StatusNew,
		"Nouveau":          cases.StatusNew,
		"Analyse en cours": cases.StatusAnalyzing,
		"processed":        cases.StatusProcessed,
	} {
		got, err := cases.ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := cases.ParseStatus("closed")
	assert.ErrorIs(t, err, cases.ErrInvalidCase)
}

func TestSeverityRank(t *testing.T) {
	levels := cases.Severities()
	for i := 1; i < len(levels); i++ {
		assert.Less(t, levels[i-1].Rank(), levels[i].Rank())
	}
	assert.Zero(t, cases.Severity("Critical").Rank())
}

func TestDocumentFieldsAreFlat(t *testing.T) {
	out, err := json.Marshal(newCase())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))

	for _, key := range []string{"id", "clientName", "clientEmail", "message", "fileName", "fileType", "fileBase64", "submittedAt", "status", "chatHistory"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "analysis")
}

func TestDecodePayload(t *testing.T) {
	data, err := cases.DecodePayload("data:application/pdf;base64,JVBERi0xLjc=")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	data, err = cases.DecodePayload("JVBERi0xLjc=")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	_, err = cases.DecodePayload("not base64!")
	assert.ErrorIs(t, err, cases.ErrInvalidDocument)
}
