// Package server exposes manifest resolution over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"eups-manifest/internal/app"
	"eups-manifest/internal/shared"
)

const (
	DefaultListen          = ":8080"
	DefaultShutdownTimeout = 10 * time.Second

	contentTypeText = "text/plain; charset=utf-8"
)

type Config struct {
	Listen          string
	StackRoot       string
	DefaultStack    string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server answers manifest requests. Every request builds its own loader, so
// requests are served concurrently without shared resolution state.
type Server struct {
	service app.Service
	config  Config
}

func New(service app.Service, config Config) *Server {
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Server{service: service, config: config}
}

// Routes returns the router with all routes configured.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(requestIDHeader)

	r.Get("/health", s.handleHealth)
	r.Get("/index/{pkg}", s.handleIndex)
	r.Get("/manifests/*", s.handleManifest)
	r.Get("/{stack}/manifests/*", s.handleManifest)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", s.config.Listen).Str("stack_root", s.config.StackRoot).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("http server failed").
			WithCause(err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("http server shutdown failed").
			WithCause(err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok\n")
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)
	result, err := s.service.ResolvePath(ctx, app.ResolvePathRequest{
		StackRoot:    s.config.StackRoot,
		DefaultStack: s.config.DefaultStack,
		Path:         r.URL.Path,
	})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	body := result.Manifest.String()
	etag := bodyETag(body)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeText(w, http.StatusOK, body)
}

// handleIndex lists the directive files of a package, oldest version first,
// followed by the current version when the index has one.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)
	stack := r.URL.Query().Get("stack")
	if stack == "" {
		stack = s.config.DefaultStack
	}
	if shared.HasParentSegment(stack) {
		s.writeError(ctx, w, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid stack name: "+stack))
		return
	}
	pkg := chi.URLParam(r, "pkg")
	result, err := s.service.List(ctx, app.ListRequest{
		BaseDir: stackDir(s.config.StackRoot, stack),
		Package: pkg,
		Flavor:  r.URL.Query().Get("flavor"),
	})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	if len(result.Manifests) == 0 && !result.HasCurrent {
		s.writeError(ctx, w, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no directive files for package: "+pkg))
		return
	}
	var b strings.Builder
	for _, ref := range result.Manifests {
		fmt.Fprintf(&b, "%s %s %s\n", ref.Package, ref.Version, ref.Flavor)
	}
	if result.HasCurrent {
		fmt.Fprintf(&b, "# current %s\n", result.Current.Version)
	}
	writeText(w, http.StatusOK, b.String())
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusForError(err)
	event := log.Ctx(ctx).Warn()
	if status >= http.StatusInternalServerError {
		event = log.Ctx(ctx).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")
	writeText(w, status, shared.ErrorMessage(err)+"\n")
}

func statusForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeNotFound:
		return http.StatusNotFound
	case errbuilder.CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func bodyETag(body string) string {
	hasher := xxhash.New()
	_, _ = hasher.WriteString(body)
	return fmt.Sprintf("\"%016x\"", hasher.Sum64())
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func stackDir(root string, stack string) string {
	return filepath.Join(root, stack)
}

// requestContext attaches the global logger, tagged with the request id.
func requestContext(r *http.Request) context.Context {
	logger := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
	return logger.WithContext(r.Context())
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}
