package cases

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	FileBase64    string `json:"fileBase64" validate:"required"`
	MimeType      string `json:"mimeType" validate:"required"`
	ClientMessage string `json:"clientMessage"`
}

// ChatRequest is the body of POST /api/chat. AnalysisContext is omitted for
// cases that have not been analyzed.
type ChatRequest struct {
	Question        string        `json:"question" validate:"required"`
	FileBase64      string        `json:"fileBase64" validate:"required"`
	MimeType        string        `json:"mimeType" validate:"required"`
	History         []ChatMessage `json:"history"`
	AnalysisContext *Analysis     `json:"analysisContext,omitempty"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// StripDataURL removes a "data:<mime>;base64," prefix if present.
func StripDataURL(payload string) string {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			return payload[i+1:]
		}
	}
	return payload
}

// DecodePayload strips any data URL prefix and decodes standard base64.
func DecodePayload(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(StripDataURL(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return data, nil
}
