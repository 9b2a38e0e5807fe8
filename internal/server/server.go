// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/app"
	"github.com/matthewbaird/signatures/internal/handler"
	"github.com/matthewbaird/signatures/internal/session"
	"github.com/matthewbaird/signatures/internal/wire"
)

// Session lifetimes for websocket connections.
const (
	sessionMaxAge      = 24 * time.Hour
	sessionIdleTimeout = 30 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

// NewRouter registers every route over the wired app.
func NewRouter(a *app.App, sessions *session.Manager) http.Handler {
	logger := a.Logger
	r := chi.NewRouter()
	r.Use(handler.RequestID)
	r.Use(handler.Recovery(logger))
	r.Use(handler.Logging(logger.Named("http")))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	ch := handler.NewComposeHandler(a.Service, logger)
	qh := handler.NewQuestionHandler(a.Store, logger)
	cath := handler.NewCatalogHandler(a.Catalog, a.Stats, a.Bus.Dropped)
	ah := handler.NewActivityHandler(a.Activity, logger)
	ws := wire.NewHandler(sessions, a.Service, logger.Named("wire"))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/compose", ch.Compose)

		r.Get("/questions", qh.ListQuestions)
		r.Get("/questions/{id}", qh.GetQuestion)
		r.Get("/categories", qh.ListCategories)
		r.Get("/personas", qh.ListPersonas)

		r.Get("/catalog", cath.GetCatalog)
		r.Get("/stats", cath.GetStats)

		r.Get("/activity", ah.Search)
		r.Get("/activity/{index_type}/{key}", ah.GetIndex)

		r.Get("/ws", ws.ServeHTTP)
	})
	return r
}

// Run starts the event bus and the HTTP server, and shuts both down when
// ctx is cancelled.
func Run(ctx context.Context, a *app.App) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.Config.Server.Port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", a.Config.Server.Port, err)
	}
	return Serve(ctx, a, ln)
}

// Serve is Run over an existing listener.
func Serve(ctx context.Context, a *app.App, ln net.Listener) error {
	a.Start(ctx)

	sessions := session.NewManager(sessionMaxAge, sessionIdleTimeout)
	janitorDone := make(chan struct{})
	defer close(janitorDone)
	go sessions.RunJanitor(janitorDone, time.Minute)

	server := &http.Server{
		Handler:           NewRouter(a, sessions),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("starting server", zap.String("addr", ln.Addr().String()))
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	a.Logger.Info("shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
