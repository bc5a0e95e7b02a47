package assistant

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/JaimeStill/docket/internal/cases"
	"github.com/JaimeStill/docket/internal/prompts"
	"github.com/JaimeStill/docket/pkg/formatting"
)

const noPriorAnalysis = "No prior analysis."

// Options bounds and paces model calls. MaxDocumentSize rejects oversized
// documents before they are decoded; zero disables the check.
type Options struct {
	MaxDocumentSize   int64
	Timeout           time.Duration
	Attempts          uint
	RetryDelay        time.Duration
	RequestsPerSecond float64
	Burst             int
}

type service struct {
	model        Model
	instructions Instructions
	limiter      *rate.Limiter
	metrics      *Metrics
	opts         Options
	logger       *slog.Logger
}

// New creates the assistant System on top of model.
func New(model Model, instructions Instructions, metrics *Metrics, opts Options, logger *slog.Logger) System {
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	return &service{
		model:        model,
		instructions: instructions,
		limiter:      rate.NewLimiter(limit, opts.Burst),
		metrics:      metrics,
		opts:         opts,
		logger:       logger.With("system", "assistant"),
	}
}

func (s *service) Handler(maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, maxBodySize)
}

func (s *service) Analyze(ctx context.Context, req cases.AnalyzeRequest) (*cases.Analysis, error) {
	data, err := s.document(req.FileBase64)
	if err != nil {
		return nil, err
	}

	system, err := s.systemInstruction(ctx, prompts.StageAnalyze)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, req.MimeType),
			genai.NewPartFromText("Client message: " + quote(req.ClientMessage)),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    analysisSchema(),
	}

	text, err := s.generate(ctx, prompts.StageAnalyze, contents, config)
	if err != nil {
		return nil, err
	}

	analysis, err := formatting.Parse[cases.Analysis](text)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode analysis"), ErrModel)
	}

	s.logger.Info("analysis generated", "risks", len(analysis.Risks), "key_points", len(analysis.KeyPoints))
	return analysis.Clone(), nil
}

func (s *service) Chat(ctx context.Context, req cases.ChatRequest) (string, error) {
	data, err := s.document(req.FileBase64)
	if err != nil {
		return "", err
	}

	system, err := s.systemInstruction(ctx, prompts.StageChat)
	if err != nil {
		return "", err
	}

	prior := noPriorAnalysis
	if req.AnalysisContext != nil {
		raw, err := json.MarshalIndent(req.AnalysisContext, "", "  ")
		if err != nil {
			return "", errors.Wrap(err, "encode analysis context")
		}
		prior = string(raw)
	}
	system += "\n\nPrevious analysis:\n" + prior

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	contents := conversation(genai.NewPartFromBytes(data, req.MimeType), req.History, req.Question)

	text, err := s.generate(ctx, prompts.StageChat, contents, config)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *service) document(payload string) ([]byte, error) {
	if limit := s.opts.MaxDocumentSize; limit > 0 && formatting.DecodedLen(cases.StripDataURL(payload)) > limit {
		return nil, cases.ErrDocumentTooLarge
	}
	return cases.DecodePayload(payload)
}

func (s *service) systemInstruction(ctx context.Context, stage prompts.Stage) (string, error) {
	text, err := s.instructions.Instructions(ctx, stage)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s instructions", stage)
	}
	spec, err := s.instructions.Spec(ctx, stage)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s spec", stage)
	}
	return text + "\n\n" + spec, nil
}

func (s *service) generate(
	ctx context.Context,
	stage prompts.Stage,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	var text string

	err := retry.Do(
		func() error {
			if err := s.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			var err error
			text, err = s.model.Generate(ctx, contents, config)
			return err
		},
		retry.Attempts(s.opts.Attempts),
		retry.LastErrorOnly(true),
		retry.Delay(s.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			s.metrics.retried(stage)
			s.logger.Warn("model call failed, retrying", "stage", stage, "attempt", n+1, "error", err)
		}),
	)

	s.metrics.observe(stage, err, time.Since(start))

	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "%s model call", stage), ErrModel)
	}
	return text, nil
}

// conversation replays history as alternating turns and ends with the
// question. The document rides on the first user turn. A trailing user turn
// carrying the question itself is the caller's optimistic echo and is
// dropped so the question is not asked twice.
func conversation(document *genai.Part, history []cases.ChatMessage, question string) []*genai.Content {
	if n := len(history); n > 0 {
		last := history[n-1]
		if last.Role == cases.RoleUser && strings.TrimSpace(last.Text) == strings.TrimSpace(question) {
			history = history[:n-1]
		}
	}

	var contents []*genai.Content
	add := func(role genai.Role, part *genai.Part) {
		if n := len(contents); n > 0 && contents[n-1].Role == string(role) {
			contents[n-1].Parts = append(contents[n-1].Parts, part)
			return
		}
		contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, role))
	}

	add(genai.RoleUser, document)
	for _, m := range history {
		role := genai.RoleUser
		if m.Role == cases.RoleModel {
			role = genai.RoleModel
		}
		add(role, genai.NewPartFromText(m.Text))
	}
	add(genai.RoleUser, genai.NewPartFromText(question))

	return contents
}

func quote(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}
