package desk

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JaimeStill/docket/internal/cases"
)

// Collection is the in-memory, authoritative view of all cases. It is the
// only owner of canonical case values: callers receive copies, and every
// change goes through Create or ApplyUpdate.
type Collection struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]cases.Case

	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCollection creates an empty collection backed by repo.
func NewCollection(repo Repository, logger *slog.Logger) *Collection {
	return &Collection{
		byID:     make(map[uuid.UUID]cases.Case),
		repo:     repo,
		validate: newValidator(),
		logger:   logger.With("system", "collection"),
	}
}

// Load replaces the collection with the repository's cases, in the order the
// repository returns them. Later duplicates of an id are dropped.
func (c *Collection) Load(ctx context.Context) ([]cases.Case, error) {
	fetched, err := c.repo.ListCases(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load cases")
	}

	order := make([]uuid.UUID, 0, len(fetched))
	byID := make(map[uuid.UUID]cases.Case, len(fetched))

	for _, cs := range fetched {
		if _, dup := byID[cs.ID]; dup {
			c.logger.Warn("duplicate case id in listing ignored", "id", cs.ID)
			continue
		}
		order = append(order, cs.ID)
		byID[cs.ID] = cs.Clone()
	}

	c.mu.Lock()
	c.order = order
	c.byID = byID
	c.mu.Unlock()

	c.logger.Info("cases loaded", "count", len(order))
	return c.Snapshot(), nil
}

// Create opens a case from in, persists it and prepends the stored case.
func (c *Collection) Create(ctx context.Context, in Intake) (cases.Case, error) {
	if err := c.validate.Struct(in); err != nil {
		return cases.Case{}, errors.Wrapf(ErrInvalidIntake, "%v", err)
	}

	draft := cases.Case{
		ID:          c.freshID(),
		ClientName:  strings.TrimSpace(in.ClientName),
		ClientEmail: strings.TrimSpace(in.ClientEmail),
		Message:     in.Message,
		Document: cases.Document{
			FileName:   in.FileName,
			FileType:   in.MediaType(),
			FileBase64: in.FileBase64,
		},
		SubmittedAt: time.Now().UTC(),
		Status:      cases.StatusNew,
		ChatHistory: []cases.ChatMessage{},
	}

	created, err := c.repo.CreateCase(ctx, draft)
	if err != nil {
		return cases.Case{}, errors.Wrap(err, "create case")
	}

	c.mu.Lock()
	if _, exists := c.byID[created.ID]; exists {
		c.byID[created.ID] = created.Clone()
	} else {
		c.order = append([]uuid.UUID{created.ID}, c.order...)
		c.byID[created.ID] = created.Clone()
	}
	c.mu.Unlock()

	c.logger.Info("case created", "id", created.ID, "file", created.FileName)
	return created.Clone(), nil
}

// ApplyUpdate replaces the case with the same id. Updates for ids the
// collection does not hold are logged and ignored; the result reports
// whether the update was applied.
func (c *Collection) ApplyUpdate(cs cases.Case) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[cs.ID]; !ok {
		c.logger.Warn("update for unknown case ignored", "id", cs.ID)
		return false
	}

	c.byID[cs.ID] = cs.Clone()
	return true
}

// Get returns a copy of the case with the given id.
func (c *Collection) Get(id uuid.UUID) (cases.Case, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cs, ok := c.byID[id]
	if !ok {
		return cases.Case{}, false
	}
	return cs.Clone(), true
}

// Snapshot returns copies of all cases in collection order.
func (c *Collection) Snapshot() []cases.Case {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]cases.Case, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

// Len returns the number of cases held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Collection) freshID() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for {
		id := uuid.New()
		if _, taken := c.byID[id]; !taken {
			return id
		}
	}
}
