// Package desk is the lawyer-side core: the case collection, the analysis
// and conversation orchestrators, and a command interface that front ends
// use instead of touching case state directly.
package desk

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/JaimeStill/docket/internal/cases"
)

// Config bounds the remote calls that move a case forward. When a bound
// expires the call fails and the usual failure path runs.
type Config struct {
	AnalysisTimeout time.Duration
	ChatTimeout     time.Duration
}

// Desk wires the collection to both orchestrators.
type Desk struct {
	Cases        *Collection
	Analyzer     *Analyzer
	Conversation *Conversation
	logger       *slog.Logger
}

// New creates a Desk over the three collaborators.
func New(repo Repository, analyst Analyst, counsel Counsel, cfg Config, logger *slog.Logger) *Desk {
	logger = logger.With("module", "desk")
	coll := NewCollection(repo, logger)
	locks := newCaseLocks()

	return &Desk{
		Cases:        coll,
		Analyzer:     newAnalyzer(coll, repo, analyst, locks, cfg.AnalysisTimeout, logger),
		Conversation: newConversation(coll, repo, counsel, locks, cfg.ChatTimeout, logger),
		logger:       logger,
	}
}

// NewFromBackend creates a Desk whose collaborators are all served by b.
func NewFromBackend(b Backend, cfg Config, logger *slog.Logger) *Desk {
	return New(b, b, b, cfg, logger)
}

// Command is a request a front end sends to the desk.
type Command interface {
	command()
}

// Load refreshes the collection from the case store.
type Load struct{}

// Submit opens a new case.
type Submit struct {
	Intake Intake
}

// Analyze requests an analysis of a case.
type Analyze struct {
	CaseID uuid.UUID
}

// Ask sends a question about a case document.
type Ask struct {
	CaseID   uuid.UUID
	Question string
}

func (Load) command()    {}
func (Submit) command()  {}
func (Analyze) command() {}
func (Ask) command()     {}

// Result carries the case a command produced, or the collection for Load.
// Snapshot is the collection after the command ran, success or not.
type Result struct {
	Case     *cases.Case
	Snapshot []cases.Case
}

// Dispatch runs cmd. Errors from Submit, Analyze and Ask still return a
// Result whose Case reflects what the collection holds after the failure.
func (d *Desk) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	var (
		out cases.Case
		err error
	)

	switch c := cmd.(type) {
	case Load:
		_, err = d.Cases.Load(ctx)
		return d.result(nil), err

	case Submit:
		out, err = d.Cases.Create(ctx, c.Intake)
		if err != nil {
			return d.result(nil), err
		}

	case Analyze:
		target, ok := d.Cases.Get(c.CaseID)
		if !ok {
			return d.result(nil), errors.Wrapf(ErrUnknownCase, "case %s", c.CaseID)
		}
		out, err = d.Analyzer.RequestAnalysis(ctx, target)

	case Ask:
		target, ok := d.Cases.Get(c.CaseID)
		if !ok {
			return d.result(nil), errors.Wrapf(ErrUnknownCase, "case %s", c.CaseID)
		}
		out, err = d.Conversation.SendMessage(ctx, target, c.Question)

	default:
		return d.result(nil), errors.Newf("unsupported command %T", cmd)
	}

	return d.result(&out), err
}

func (d *Desk) result(c *cases.Case) Result {
	return Result{Case: c, Snapshot: d.Cases.Snapshot()}
}
