package cases

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/docket/pkg/query"
	"github.com/JaimeStill/docket/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "cases", "c").
	Project("id", "ID").
	Project("client_name", "ClientName").
	Project("client_email", "ClientEmail").
	Project("message", "Message").
	Project("file_name", "FileName").
	Project("file_type", "FileType").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("submitted_at", "SubmittedAt").
	Project("status", "Status").
	Project("analysis", "Analysis").
	Project("chat_history", "ChatHistory")

var defaultSort = query.SortField{
	Field:      "SubmittedAt",
	Descending: true,
}

// Filters narrows case listings. Nil fields are ignored.
type Filters struct {
	Status *Status
	Search *string
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	return b.
		WhereEquals("Status", status).
		WhereSearch(f.Search, "ClientName", "ClientEmail", "FileName")
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("status"); s != "" {
		st, err := ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}

	if q := values.Get("search"); q != "" {
		f.Search = &q
	}

	return f, nil
}

// record is a stored case plus the blob key of its document.
type record struct {
	Case
	StorageKey string
}

func scanRecord(s repository.Scanner) (record, error) {
	var (
		r        record
		analysis []byte
		history  []byte
	)

	err := s.Scan(
		&r.ID,
		&r.ClientName,
		&r.ClientEmail,
		&r.Message,
		&r.FileName,
		&r.FileType,
		&r.PageCount,
		&r.StorageKey,
		&r.SubmittedAt,
		&r.Status,
		&analysis,
		&history,
	)
	if err != nil {
		return r, err
	}

	if len(analysis) > 0 {
		r.Analysis = &Analysis{}
		if err := json.Unmarshal(analysis, r.Analysis); err != nil {
			return r, fmt.Errorf("decode analysis: %w", err)
		}
	}

	r.ChatHistory = []ChatMessage{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &r.ChatHistory); err != nil {
			return r, fmt.Errorf("decode chat history: %w", err)
		}
	}

	return r, nil
}

// jsonParams encodes the jsonb columns. A nil analysis stays SQL NULL.
func jsonParams(c Case) (analysis any, history string, err error) {
	if c.Analysis != nil {
		b, err := json.Marshal(c.Analysis)
		if err != nil {
			return nil, "", err
		}
		analysis = string(b)
	}

	chat := c.ChatHistory
	if chat == nil {
		chat = []ChatMessage{}
	}
	b, err := json.Marshal(chat)
	if err != nil {
		return nil, "", err
	}

	return analysis, string(b), nil
}
