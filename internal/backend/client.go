// Package backend is the HTTP client for the case store, analysis and chat
// endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JaimeStill/docket/internal/cases"
	"github.com/JaimeStill/docket/pkg/handlers"
)

const maxErrorBody = 64 << 10

// Client calls the docket API. Case store calls are bounded by the request
// timeout; analysis and chat calls are bounded only by the caller's context.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Client rooted at baseURL (for example http://localhost:8080/api).
// A nil httpClient uses a client on the default transport.
func New(baseURL string, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.With("system", "backend"),
	}
}

func (c *Client) ListCases(ctx context.Context) ([]cases.Case, error) {
	var out []cases.Case
	err := c.bounded(ctx, func(ctx context.Context) error {
		return c.do(ctx, "list cases", http.MethodGet, "/cases", nil, &out)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []cases.Case{}
	}
	return out, nil
}

func (c *Client) CreateCase(ctx context.Context, cs cases.Case) (cases.Case, error) {
	var out cases.Case
	err := c.bounded(ctx, func(ctx context.Context) error {
		return c.do(ctx, "create case", http.MethodPost, "/cases", cs, &out)
	})
	return out, err
}

func (c *Client) UpdateCase(ctx context.Context, cs cases.Case) (cases.Case, error) {
	var out cases.Case
	err := c.bounded(ctx, func(ctx context.Context) error {
		return c.do(ctx, "update case", http.MethodPut, "/cases/"+cs.ID.String(), cs, &out)
	})
	return out, err
}

func (c *Client) Analyze(ctx context.Context, req cases.AnalyzeRequest) (cases.Analysis, error) {
	var out cases.Analysis
	err := c.do(ctx, "analyze", http.MethodPost, "/analyze", req, &out)
	return out, err
}

func (c *Client) Ask(ctx context.Context, req cases.ChatRequest) (string, error) {
	var out cases.ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/chat", req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *Client) bounded(ctx context.Context, fn func(context.Context) error) error {
	if c.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(ctx)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s: encode request", op)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: errors.Wrap(err, "decode response")}
	}
	return nil
}

func decodeFailure(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body handlers.ErrorBody
	if json.Unmarshal(raw, &body) == nil && strings.TrimSpace(body.Error) != "" {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Message: body.Error}
	}

	return &TransportError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Err:        errors.Newf("status %d", resp.StatusCode),
	}
}
