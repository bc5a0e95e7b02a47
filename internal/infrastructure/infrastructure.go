// Package infrastructure assembles what every domain system shares: the
// lifecycle coordinator, the logger, Postgres, blob storage and the metrics
// registry.
package infrastructure

import (
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/pkg/database"
	"github.com/JaimeStill/docket/pkg/lifecycle"
	"github.com/JaimeStill/docket/pkg/storage"
)

// MetricsNamespace prefixes every docket metric.
const MetricsNamespace = "docket"

type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Metrics   *prometheus.Registry
}

// New wires the shared systems. Nothing connects until Start.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := cfg.Logging.Logger(os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, errors.Wrap(err, "database init")
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, errors.Wrap(err, "storage init")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Metrics:   reg,
	}, nil
}

// Start hands the database and storage hooks to the coordinator.
func (i *Infrastructure) Start() error {
	for name, sys := range map[string]interface {
		Start(*lifecycle.Coordinator) error
	}{
		"database": i.Database,
		"storage":  i.Storage,
	} {
		if err := sys.Start(i.Lifecycle); err != nil {
			return errors.Wrapf(err, "%s start", name)
		}
	}
	return nil
}

// Ready reports whether startup finished and both backing stores answer.
func (i *Infrastructure) Ready() bool {
	return i.Lifecycle.ReadyWith(i.Database, i.Storage)
}

// Scoped returns a copy whose logger carries module=name.
func (i *Infrastructure) Scoped(name string) *Infrastructure {
	scoped := *i
	scoped.Logger = i.Logger.With("module", name)
	return &scoped
}
