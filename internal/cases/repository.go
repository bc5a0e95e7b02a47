package cases

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/docket/pkg/formatting"
	"github.com/JaimeStill/docket/pkg/query"
	"github.com/JaimeStill/docket/pkg/repository"
	"github.com/JaimeStill/docket/pkg/storage"
)

const pdfMimeType = "application/pdf"

// Options tunes the case store.
type Options struct {
	MaxDocumentSize int64
	CacheSize       int
	CacheTTL        time.Duration
	Concurrency     int
}

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
	payload *expirable.LRU[string, string]
	opts    Options
}

// New creates a case store backed by Postgres for case rows and blob storage
// for documents. Encoded payloads are cached by storage key.
func New(db *sql.DB, store storage.System, logger *slog.Logger, opts Options) System {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "cases"),
		payload: expirable.NewLRU[string, string](opts.CacheSize, nil, opts.CacheTTL),
		opts:    opts,
	}
}

func (r *repo) Handler(maxBodySize int64) *Handler {
	return NewHandler(r, r.logger, maxBodySize)
}

func (r *repo) List(ctx context.Context, filters Filters) ([]Case, error) {
	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	q, args := qb.Build()
	records, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}

	out := make([]Case, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, rec := range records {
		g.Go(func() error {
			c, err := r.hydrate(gctx, rec)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				r.logger.Warn("case document missing, listed without payload", "id", rec.ID, "key", rec.StorageKey)
				out[i] = rec.Case
				return nil
			case err != nil:
				return err
			}
			out[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Case, error) {
	rec, err := r.find(ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}

	c, err := r.hydrate(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, c Case) (*Case, error) {
	c = c.Clone()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = StatusNew
	}
	if c.Status != StatusNew {
		return nil, fmt.Errorf("%w: new cases start as %s", ErrInvalidCase, StatusNew)
	}
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = time.Now().UTC()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	data, err := DecodePayload(c.FileBase64)
	if err != nil {
		return nil, err
	}
	if r.opts.MaxDocumentSize > 0 && int64(len(data)) > r.opts.MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	c.FileBase64 = base64.StdEncoding.EncodeToString(data)
	c.FileType = detectContentType(c.FileType, data)
	c.PageCount = r.pageCount(c.FileType, data)

	// the key is fresh per upload, so a rejected insert only removes its own blob
	key := buildStorageKey(c.ID, uuid.New(), sanitizeFilename(c.FileName))
	if err := r.storage.Upload(ctx, key, bytes.NewReader(data), c.FileType); err != nil {
		return nil, fmt.Errorf("upload case document: %w", err)
	}

	analysis, history, err := jsonParams(c)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO cases AS c (id, client_name, client_email, message, file_name, file_type, page_count, size_bytes, storage_key, submitted_at, status, analysis, chat_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + projection.Columns()

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (record, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			c.ID,
			c.ClientName,
			c.ClientEmail,
			c.Message,
			c.FileName,
			c.FileType,
			c.PageCount,
			int64(len(data)),
			key,
			c.SubmittedAt,
			string(c.Status),
			analysis,
			history,
		}, scanRecord)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, r.mapError(err)
	}

	r.payload.Add(key, c.FileBase64)
	rec.FileBase64 = c.FileBase64

	r.logger.Info("case created", "id", rec.ID, "file", rec.FileName, "size", formatting.FormatBytes(int64(len(data)), 1))
	return &rec.Case, nil
}

// Update persists the mutable parts of a case: status, analysis and chat
// history. Intake and document fields always keep their stored values.
func (r *repo) Update(ctx context.Context, id uuid.UUID, c Case) (*Case, error) {
	if c.ID != uuid.Nil && c.ID != id {
		return nil, fmt.Errorf("%w: body id %s does not match path id %s", ErrInvalidCase, c.ID, id)
	}
	if c.Status == StatusAnalyzing {
		return nil, ErrTransientStatus
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	analysis, history, err := jsonParams(c)
	if err != nil {
		return nil, err
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (record, error) {
		stored, err := r.find(ctx, tx, id, true)
		if err != nil {
			return record{}, err
		}

		if stored.Status == StatusProcessed && c.Status == StatusNew {
			return record{}, ErrStatusRegression
		}
		if !c.HistoryExtends(stored.ChatHistory) {
			return record{}, ErrHistoryRewritten
		}

		q := `
			UPDATE cases c
			SET status = $2, analysis = $3, chat_history = $4, updated_at = now()
			WHERE c.id = $1
			RETURNING ` + projection.Columns()

		return repository.QueryOne(ctx, tx, q, []any{id, string(c.Status), analysis, history}, scanRecord)
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	out, err := r.hydrate(ctx, rec)
	if err != nil {
		return nil, err
	}

	r.logger.Info("case updated", "id", id, "status", out.Status, "messages", len(out.ChatHistory))
	return &out, nil
}

func (r *repo) Document(ctx context.Context, id uuid.UUID) (*File, error) {
	rec, err := r.find(ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}

	data, err := storage.ReadAll(ctx, r.storage, rec.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read case document: %w", err)
	}
	return &File{Name: rec.FileName, ContentType: rec.FileType, Data: data}, nil
}

func (r *repo) find(ctx context.Context, db repository.Querier, id uuid.UUID, lock bool) (record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	if lock {
		q += " FOR UPDATE"
	}

	rec, err := repository.QueryOne(ctx, db, q, args, scanRecord)
	if err != nil {
		return record{}, r.mapError(err)
	}
	return rec, nil
}

// hydrate attaches the base64 document payload, reading through the cache.
func (r *repo) hydrate(ctx context.Context, rec record) (Case, error) {
	if encoded, ok := r.payload.Get(rec.StorageKey); ok {
		rec.FileBase64 = encoded
		return rec.Case, nil
	}

	data, err := storage.ReadAll(ctx, r.storage, rec.StorageKey)
	if err != nil {
		return Case{}, fmt.Errorf("load document for case %s: %w", rec.ID, err)
	}

	rec.FileBase64 = base64.StdEncoding.EncodeToString(data)
	r.payload.Add(rec.StorageKey, rec.FileBase64)
	return rec.Case, nil
}

func (r *repo) pageCount(mimeType string, data []byte) *int {
	if mimeType != pdfMimeType {
		return nil
	}

	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		r.logger.Warn("pdf page count failed", "error", err)
		return nil
	}
	return &n
}

func (r *repo) mapError(err error) error {
	if repository.IsCheckViolation(err) {
		return fmt.Errorf("%w: %w", ErrInvalidCase, err)
	}
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func detectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

func buildStorageKey(id, upload uuid.UUID, filename string) string {
	return fmt.Sprintf("cases/%s/%s-%s", id, upload, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "document"
	}
	return url.PathEscape(name)
}
