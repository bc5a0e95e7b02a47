package module

import (
	"net/http"
	"strings"
)

// Router sends each request to the module owning its first path segment.
// Paths no module claims go to the fallback mux.
type Router struct {
	mounted  map[string]*Module
	fallback *http.ServeMux
}

func NewRouter() *Router {
	return &Router{
		mounted:  map[string]*Module{},
		fallback: http.NewServeMux(),
	}
}

// HandleNative registers a handler outside any module, such as a health probe.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.fallback.Handle(pattern, handler)
}

// Mount claims m's prefix. A later module with the same prefix replaces it.
func (r *Router) Mount(m *Module) {
	r.mounted[m.Prefix()] = m
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	trimTrailingSlash(req)

	if m, ok := r.mounted[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}
	r.fallback.ServeHTTP(w, req)
}

// firstSegment returns "/api" for "/api/cases/1".
func firstSegment(p string) string {
	rest, _, _ := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	return "/" + rest
}

func trimTrailingSlash(req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimRight(p, "/")
		if req.URL.Path == "" {
			req.URL.Path = "/"
		}
	}
}
