// Package cases defines the case data model shared by the lawyer desk and the
// case store server, together with the server-side persistence of cases.
package cases

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one turn of the lawyer's conversation about a case document.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// UserMessage builds a user turn stamped at the given time.
func UserMessage(text string, at time.Time) ChatMessage {
	return ChatMessage{Role: RoleUser, Text: text, Timestamp: at}
}

// ModelMessage builds a model turn stamped at the given time.
func ModelMessage(text string, at time.Time) ChatMessage {
	return ChatMessage{Role: RoleModel, Text: text, Timestamp: at}
}

func (m ChatMessage) equal(o ChatMessage) bool {
	return m.Role == o.Role && m.Text == o.Text && m.Timestamp.Equal(o.Timestamp)
}

// Risk is a single point of attention raised by an analysis.
type Risk struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Analysis is the structured result of analyzing a case document. It is
// replaced as a whole and never patched field by field.
type Analysis struct {
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"keyPoints"`
	Risks         []Risk   `json:"risks"`
	Actions       []string `json:"actions"`
	DraftResponse string   `json:"draftResponse"`
}

// Clone returns a deep copy of a.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	out := &Analysis{
		Summary:       a.Summary,
		KeyPoints:     slices.Clone(a.KeyPoints),
		Risks:         slices.Clone(a.Risks),
		Actions:       slices.Clone(a.Actions),
		DraftResponse: a.DraftResponse,
	}
	if out.KeyPoints == nil {
		out.KeyPoints = []string{}
	}
	if out.Risks == nil {
		out.Risks = []Risk{}
	}
	if out.Actions == nil {
		out.Actions = []string{}
	}
	return out
}

// Document is the client's uploaded file. The payload travels as base64 and
// is passed through untouched to the analysis and chat services.
type Document struct {
	FileName   string `json:"fileName" validate:"required"`
	FileType   string `json:"fileType" validate:"required"`
	FileBase64 string `json:"fileBase64" validate:"required"`
	PageCount  *int   `json:"pageCount,omitempty"`
}

// Case is one client-submitted legal matter under review.
type Case struct {
	ID          uuid.UUID `json:"id"`
	ClientName  string    `json:"clientName" validate:"required"`
	ClientEmail string    `json:"clientEmail" validate:"required,email"`
	Message     string    `json:"message"`
	Document
	SubmittedAt time.Time     `json:"submittedAt"`
	Status      Status        `json:"status"`
	Analysis    *Analysis     `json:"analysis,omitempty"`
	ChatHistory []ChatMessage `json:"chatHistory"`
}

// Clone returns a deep copy of c. Orchestrators work on clones so the
// collection's canonical values are never mutated in place.
func (c Case) Clone() Case {
	out := c
	out.Analysis = c.Analysis.Clone()
	out.ChatHistory = slices.Clone(c.ChatHistory)
	if out.ChatHistory == nil {
		out.ChatHistory = []ChatMessage{}
	}
	if c.PageCount != nil {
		n := *c.PageCount
		out.PageCount = &n
	}
	return out
}

// BeginAnalysis marks the case as having an analysis in flight.
func (c Case) BeginAnalysis() Case {
	out := c.Clone()
	out.Status = c.Status.MustTransition(StatusAnalyzing)
	out.Analysis = nil
	return out
}

// CompleteAnalysis records result and moves the case to PROCESSED in one step.
func (c Case) CompleteAnalysis(result Analysis) Case {
	out := c.Clone()
	out.Status = c.Status.MustTransition(StatusProcessed)
	out.Analysis = result.Clone()
	return out
}

// AbortAnalysis rolls an in-flight analysis back to NEW so it can be retried.
func (c Case) AbortAnalysis() Case {
	out := c.Clone()
	out.Status = c.Status.MustTransition(StatusNew)
	out.Analysis = nil
	return out
}

// AppendMessage returns a copy of c with m added to the end of the history.
func (c Case) AppendMessage(m ChatMessage) Case {
	out := c.Clone()
	out.ChatHistory = append(out.ChatHistory, m)
	return out
}

// HistoryExtends reports whether c's chat history starts with every message
// of prior, in order.
func (c Case) HistoryExtends(prior []ChatMessage) bool {
	if len(c.ChatHistory) < len(prior) {
		return false
	}
	for i, m := range prior {
		if !c.ChatHistory[i].equal(m) {
			return false
		}
	}
	return true
}

// Validate checks the status, the analysis/status pairing and chat roles.
func (c Case) Validate() error {
	if !c.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidCase, c.Status)
	}

	hasAnalysis := c.Analysis != nil
	if hasAnalysis != (c.Status == StatusProcessed) {
		return fmt.Errorf("%w: analysis must be present exactly when status is %s", ErrInvalidCase, StatusProcessed)
	}

	for i, m := range c.ChatHistory {
		if m.Role != RoleUser && m.Role != RoleModel {
			return fmt.Errorf("%w: chat message %d has role %q", ErrInvalidCase, i, m.Role)
		}
	}

	return nil
}
