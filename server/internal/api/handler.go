package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Fixed response bodies.
const (
	msgReadFailed = "Error retrieving ConfigMap content"
	msgNotFound   = "Not Found"
)

// Source supplies the raw configuration content. *store.Store implements it.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
}

// Handler is the HTTP handler for the config server.
// GET / returns the configuration content; everything else is 404.
type Handler struct {
	src Source
	mux *chi.Mux
}

// New creates a Handler wired to src and registers its single route.
func New(src Source) http.Handler {
	h := &Handler{src: src, mux: chi.NewRouter()}

	h.mux.Use(middleware.Recoverer)
	h.mux.Get("/", h.content)
	h.mux.NotFound(h.notFound)
	// Other methods on / are answered like an unknown path.
	h.mux.MethodNotAllowed(h.notFound)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// content returns GET / — the configuration file verbatim. Only the bare
// request target "/" matches; "/?x=1" and "/?" are unknown paths.
func (h *Handler) content(w http.ResponseWriter, r *http.Request) {
	if r.URL.RawQuery != "" || r.URL.ForceQuery {
		h.notFound(w, r)
		return
	}

	data, err := h.src.Read(r.Context())
	if err != nil {
		slog.Error("api: read configmap content failed", "err", err)
		textResp(w, http.StatusInternalServerError, msgReadFailed)
		return
	}

	// The body is passed through untouched; the JSON content type is asserted
	// whether or not the file is valid JSON.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	slog.Info("api: path not found", "method", r.Method, "path", r.URL.RequestURI())
	textResp(w, http.StatusNotFound, msgNotFound)
}

func textResp(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	w.Write([]byte(msg)) //nolint:errcheck
}
