package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/docket/pkg/query"
	"github.com/JaimeStill/docket/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Postgres-backed prompt System.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{db: db, logger: logger.With("system", "prompts")}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context, filters Filters) ([]Prompt, error) {
	q, args := filters.Apply(query.NewBuilder(projection, defaultSort...)).Build()

	list, err := repository.QueryMany(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return list, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd Command) (*Prompt, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	p, err := r.returning(ctx, `
		INSERT INTO prompts AS p (name, stage, instructions, description)
		VALUES ($1, $2, $3, $4)`,
		cmd.Name, string(cmd.Stage), cmd.Instructions, cmd.Description)
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt created", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return p, nil
}

// Update rewrites a prompt. An active prompt moved to another stage comes
// out inactive, keeping one active override per stage.
func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd Command) (*Prompt, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	p, err := r.returning(ctx, `
		UPDATE prompts p
		SET name = $2, stage = $3, instructions = $4, description = $5,
			active = p.active AND p.stage = $3
		WHERE p.id = $1`,
		id, cmd.Name, string(cmd.Stage), cmd.Instructions, cmd.Description)
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt updated", "id", id, "name", p.Name)
	return p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM prompts WHERE id = $1", id); err != nil {
		return mapError(err)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

// Activate makes id the override for its stage. The previous active prompt
// of that stage is switched off in the same transaction.
func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		target, err := repository.QueryOne(ctx, tx, q+" FOR UPDATE", args, scanPrompt)
		if err != nil {
			return Prompt{}, err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE prompts SET active = false WHERE stage = $1 AND active AND id <> $2",
			string(target.Stage), id)
		if err != nil {
			return Prompt{}, fmt.Errorf("switch off %s override: %w", target.Stage, err)
		}

		return repository.QueryOne(ctx, tx,
			"UPDATE prompts p SET active = true WHERE p.id = $1 RETURNING "+projection.Columns(),
			[]any{id}, scanPrompt)
	})
	if err != nil {
		return nil, mapError(err)
	}

	r.logger.Info("prompt activated", "id", p.ID, "stage", p.Stage)
	return &p, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := r.returning(ctx, "UPDATE prompts p SET active = false WHERE p.id = $1", id)
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt deactivated", "id", p.ID, "stage", p.Stage)
	return p, nil
}

func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}

	active := true
	q, args := query.NewBuilder(projection).
		WhereEquals("Stage", string(stage)).
		WhereEquals("Active", &active).
		Build()

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if errors.Is(err, sql.ErrNoRows) {
		return Instructions(stage)
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s instructions: %w", stage, err)
	}
	return p.Instructions, nil
}

func (r *repo) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}

// returning runs a single-row write and scans the row it returns.
func (r *repo) returning(ctx context.Context, stmt string, args ...any) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, stmt+"\nRETURNING "+projection.Columns(), args, scanPrompt)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func mapError(err error) error {
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
