package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/docket/pkg/middleware"
	"github.com/JaimeStill/docket/pkg/module"
)

// echoPath writes back the path the inner handler observed.
func echoPath(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.URL.Path))
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestPrefixValidation(t *testing.T) {
	for _, ok := range []string{"/api", "/admin"} {
		assert.Equal(t, ok, module.New(ok, http.NewServeMux()).Prefix())
	}

	for _, bad := range []string{"", "api", "/api/v1"} {
		assert.Panics(t, func() { module.New(bad, http.NewServeMux()) }, "prefix %q", bad)
	}
}

func TestServeStripsPrefix(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", echoPath)

	m := module.New("/api", mux)

	tests := map[string]string{
		"/api":                "/",
		"/api/cases":          "/cases",
		"/api/cases/7/chat":   "/cases/7/chat",
		"/api/cases%2F7/chat": "/cases/7/chat",
	}

	for target, inner := range tests {
		t.Run(target, func(t *testing.T) {
			req := httptest.NewRequest("GET", target, nil)
			rec := httptest.NewRecorder()
			m.Serve(rec, req)

			assert.Equal(t, inner, rec.Body.String())
			assert.Equal(t, target[:4], req.URL.Path[:4], "caller request must keep its prefix")
		})
	}
}

func TestModuleChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(w.Header().Get("X-Seen")))
	})

	tag := func(v string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Seen", w.Header().Get("X-Seen")+v)
				next.ServeHTTP(w, r)
			})
		}
	}

	m := module.New("/api", mux)
	m.Use(tag("a"))
	m.Use(tag("b"))

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api", nil))
	assert.Equal(t, "ab", rec.Body.String())
}

func TestRouter(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /cases", echoPath)

	admin := http.NewServeMux()
	admin.HandleFunc("GET /", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("admin"))
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", api))
	router.Mount(module.New("/admin", admin))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		target string
		code   int
		body   string
	}{
		{"/api/cases", http.StatusOK, "/cases"},
		{"/api/cases/", http.StatusOK, "/cases"},
		{"/admin", http.StatusOK, "admin"},
		{"/healthz", http.StatusOK, "ok"},
		{"/metrics", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(router, "GET", tt.target)
			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
