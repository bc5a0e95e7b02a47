// Package api assembles the /api module: case store, prompt overrides and
// the assistant endpoints.
package api

import (
	"net/http"

	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/infrastructure"
	"github.com/JaimeStill/docket/pkg/middleware"
	"github.com/JaimeStill/docket/pkg/module"
)

func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	scoped := infra.Scoped("api")

	domain, err := NewDomain(cfg, scoped)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(scoped.Logger))
	m.Use(middleware.Metrics(middleware.NewHTTPMetrics(infrastructure.MetricsNamespace, scoped.Metrics)))

	return m, nil
}
