// Package module mounts self-contained HTTP handlers under single-segment
// path prefixes, each with its own middleware chain.
package module

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JaimeStill/docket/pkg/middleware"
)

// Module serves everything under prefix. Its router sees paths with the
// prefix removed, so "/api/cases" arrives as "/cases".
type Module struct {
	prefix string
	router http.Handler
	chain  middleware.Chain
}

// New panics unless prefix is a single segment such as "/api".
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{prefix: prefix, router: router}
}

// Handler is the router behind the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.chain.Then(m.router)
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the prefix and dispatches. The caller's request is left untouched.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := req.Clone(req.Context())
	inner.URL.Path = strings.TrimPrefix(req.URL.Path, m.prefix)
	if inner.URL.Path == "" {
		inner.URL.Path = "/"
	}
	inner.URL.RawPath = ""

	m.Handler().ServeHTTP(w, inner)
}

// Use appends mw to the module's chain. Earlier middleware runs first.
func (m *Module) Use(mw middleware.Middleware) {
	m.chain.Use(mw)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return errors.New("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return errors.Newf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return errors.Newf("module prefix must be a single segment: %s", prefix)
	}
	return nil
}
