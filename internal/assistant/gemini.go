package assistant

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"google.golang.org/genai"
)

type gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Model on the Gemini API. A nil httpClient uses the
// SDK default.
func NewGemini(ctx context.Context, apiKey, model string, httpClient *http.Client) (Model, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	return &gemini{client: client, model: model}, nil
}

func (g *gemini) Generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// retryable reports whether a failed generation is worth another attempt.
// Rate limiting, server errors, empty replies and transport failures are;
// rejected requests and cancellation are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	return true
}
