package api

import (
	"net/http"

	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config) {
	maxBody := cfg.API.MaxRequestSizeBytes()

	routes.Register(
		mux,
		domain.Cases.Handler(maxBody).Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Assistant.Handler(maxBody).Routes(),
	)
}
