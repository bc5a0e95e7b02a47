package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/docket/internal/infrastructure"
	"github.com/JaimeStill/docket/pkg/lifecycle"
)

func TestProbes(t *testing.T) {
	reg := prometheus.NewRegistry()
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "docket_router_test_total", Help: "test"})
	reg.MustRegister(hits)
	hits.Inc()

	infra := &infrastructure.Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:   reg,
	}

	srv := httptest.NewServer(buildRouter(infra))
	t.Cleanup(srv.Close)
	e := httpexpect.Default(t, srv.URL)

	e.GET("/healthz").Expect().Status(http.StatusOK).
		JSON().Object().HasValue("status", "ok")

	e.GET("/readyz").Expect().Status(http.StatusServiceUnavailable).
		JSON().Object().HasValue("status", "not ready")

	infra.Lifecycle.WaitForStartup()

	e.GET("/readyz").Expect().Status(http.StatusOK).
		JSON().Object().HasValue("status", "ready")

	e.GET("/metrics").Expect().Status(http.StatusOK).
		Body().Contains("docket_router_test_total 1")
}
