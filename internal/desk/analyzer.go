package desk

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/docket/internal/cases"
)

// Analyzer drives the request-analysis workflow. At most one analysis call
// is in flight per case; concurrent requests for the same case share it.
type Analyzer struct {
	coll    *Collection
	repo    Repository
	analyst Analyst
	locks   *caseLocks
	flight  singleflight.Group
	timeout time.Duration
	logger  *slog.Logger
}

func newAnalyzer(coll *Collection, repo Repository, analyst Analyst, locks *caseLocks, timeout time.Duration, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		coll:    coll,
		repo:    repo,
		analyst: analyst,
		locks:   locks,
		timeout: timeout,
		logger:  logger.With("system", "analyzer"),
	}
}

// RequestAnalysis analyzes a NEW case and persists the PROCESSED result.
// For a case already ANALYZING or PROCESSED it is a no-op returning the
// current case. On failure the case is back in NEW, nothing is persisted,
// and the error is returned with the reverted case.
//
// The shared call does not inherit the starting caller's cancellation. Each
// caller stops waiting when its own ctx ends; the analysis still completes
// or rolls back.
func (a *Analyzer) RequestAnalysis(ctx context.Context, c cases.Case) (cases.Case, error) {
	detached := context.WithoutCancel(ctx)
	ch := a.flight.DoChan(c.ID.String(), func() (any, error) {
		return a.analyze(detached, c.ID)
	})

	select {
	case <-ctx.Done():
		return c, errors.Wrap(ctx.Err(), "wait for analysis")
	case res := <-ch:
		if res.Shared {
			a.logger.Warn("analysis request joined in-flight call", "id", c.ID)
		}
		out, _ := res.Val.(cases.Case)
		if out.ID == uuid.Nil {
			out = c
		}
		return out, res.Err
	}
}

func (a *Analyzer) analyze(ctx context.Context, id uuid.UUID) (cases.Case, error) {
	release, err := a.locks.acquire(ctx, id)
	if err != nil {
		return cases.Case{}, errors.Wrap(err, "wait for case")
	}
	defer release()

	current, ok := a.coll.Get(id)
	if !ok {
		return cases.Case{}, errors.Wrapf(ErrUnknownCase, "case %s", id)
	}
	if current.Status != cases.StatusNew {
		a.logger.Info("analysis skipped", "id", id, "status", current.Status)
		return current, nil
	}

	working := current.BeginAnalysis()
	a.coll.ApplyUpdate(working)

	result, err := a.callAnalyst(ctx, working)
	if err != nil {
		return a.rollback(working, errors.Wrap(err, "analyze case"))
	}

	done := working.CompleteAnalysis(result)

	saved, err := a.repo.UpdateCase(ctx, done)
	if err != nil {
		return a.rollback(working, errors.Wrap(err, "persist analysis"))
	}

	confirmed := reconcile(a.logger, done, saved)
	a.coll.ApplyUpdate(confirmed)

	a.logger.Info("case analyzed", "id", id, "risks", len(confirmed.Analysis.Risks))
	return confirmed, nil
}

func (a *Analyzer) callAnalyst(ctx context.Context, c cases.Case) (cases.Analysis, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	return a.analyst.Analyze(ctx, cases.AnalyzeRequest{
		FileBase64:    c.FileBase64,
		MimeType:      c.FileType,
		ClientMessage: c.Message,
	})
}

func (a *Analyzer) rollback(working cases.Case, cause error) (cases.Case, error) {
	reverted := working.AbortAnalysis()
	a.coll.ApplyUpdate(reverted)
	a.logger.Warn("analysis failed, case returned to NEW", "id", working.ID, "error", cause)
	return reverted, cause
}

// reconcile prefers the server echo as canonical. An echo for another case
// or one that breaks the analysis/status pairing is discarded in favor of
// the local value.
func reconcile(logger *slog.Logger, local, echo cases.Case) cases.Case {
	if echo.ID != local.ID {
		logger.Warn("server echo has a different id, keeping local state", "id", local.ID, "echo", echo.ID)
		return local
	}
	if err := echo.Validate(); err != nil {
		logger.Warn("server echo is inconsistent, keeping local state", "id", local.ID, "error", err)
		return local
	}
	return echo
}
