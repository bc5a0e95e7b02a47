package desk

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JaimeStill/docket/internal/cases"
)

// Conversation drives the chat workflow: the question is appended and
// persisted before the chat call, and the reply is appended after it. Sends
// on one case run one at a time in call order.
type Conversation struct {
	coll    *Collection
	repo    Repository
	counsel Counsel
	locks   *caseLocks
	timeout time.Duration
	logger  *slog.Logger
}

func newConversation(coll *Collection, repo Repository, counsel Counsel, locks *caseLocks, timeout time.Duration, logger *slog.Logger) *Conversation {
	return &Conversation{
		coll:    coll,
		repo:    repo,
		counsel: counsel,
		locks:   locks,
		timeout: timeout,
		logger:  logger.With("system", "conversation"),
	}
}

// SendMessage asks question about c's document.
//
// A failed chat call keeps the persisted question and returns the error
// with that case. A failed persist of the question restores the previous
// history and skips the chat call. A failed persist of the reply leaves the
// case at its last confirmed state.
func (v *Conversation) SendMessage(ctx context.Context, c cases.Case, question string) (cases.Case, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return c, ErrEmptyQuestion
	}

	release, err := v.locks.acquire(ctx, c.ID)
	if err != nil {
		return c, errors.Wrap(err, "wait for case")
	}
	defer release()

	current, ok := v.coll.Get(c.ID)
	if !ok {
		return c, errors.Wrapf(ErrUnknownCase, "case %s", c.ID)
	}

	optimistic := current.AppendMessage(cases.UserMessage(question, time.Now().UTC()))
	v.coll.ApplyUpdate(optimistic)

	saved, err := v.repo.UpdateCase(ctx, optimistic)
	if err != nil {
		v.coll.ApplyUpdate(current)
		v.logger.Warn("question not persisted, history restored", "id", c.ID, "error", err)
		return current, errors.Wrap(err, "persist question")
	}

	confirmed := reconcile(v.logger, optimistic, saved)
	v.coll.ApplyUpdate(confirmed)

	reply, err := v.ask(ctx, question, confirmed)
	if err != nil {
		v.logger.Warn("chat failed, question kept without reply", "id", c.ID, "error", err)
		return confirmed, errors.Wrap(err, "ask question")
	}

	answered := confirmed.AppendMessage(cases.ModelMessage(reply, time.Now().UTC()))
	v.coll.ApplyUpdate(answered)

	final, err := v.repo.UpdateCase(ctx, answered)
	if err != nil {
		v.coll.ApplyUpdate(confirmed)
		v.logger.Warn("reply not persisted", "id", c.ID, "error", err)
		return confirmed, errors.Wrap(err, "persist reply")
	}

	out := reconcile(v.logger, answered, final)
	v.coll.ApplyUpdate(out)
	return out, nil
}

func (v *Conversation) ask(ctx context.Context, question string, c cases.Case) (string, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	return v.counsel.Ask(ctx, cases.ChatRequest{
		Question:        question,
		FileBase64:      c.FileBase64,
		MimeType:        c.FileType,
		History:         c.ChatHistory,
		AnalysisContext: c.Analysis,
	})
}
