// Package server runs the HTTP listener and tears down process resources
// in an orderly fashion on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

type teardown struct {
	name string
	fn   func(context.Context) error
}

// Teardowns collects cleanup functions for resources acquired during
// startup. Execute releases them in reverse acquisition order, continuing
// past failures.
type Teardowns struct {
	fns []teardown
}

// AddContext registers a cleanup function that honours a deadline.
func (t *Teardowns) AddContext(name string, fn func(context.Context) error) {
	if fn == nil {
		log.Warn().Str("resource", name).Msg("nil teardown ignored")
		return
	}
	t.fns = append(t.fns, teardown{name: name, fn: fn})
}

// Add registers a cleanup function that needs no context.
func (t *Teardowns) Add(name string, fn func() error) {
	if fn == nil {
		log.Warn().Str("resource", name).Msg("nil teardown ignored")
		return
	}
	t.AddContext(name, func(context.Context) error { return fn() })
}

// AddClose registers a resource with a bare Close method.
func (t *Teardowns) AddClose(name string, closer interface{ Close() }) {
	if closer == nil {
		log.Warn().Str("resource", name).Msg("nil teardown ignored")
		return
	}
	t.AddContext(name, func(context.Context) error { closer.Close(); return nil })
}

// Execute releases resources last-acquired-first. Failures are logged and
// do not stop the remaining teardowns.
func (t *Teardowns) Execute(ctx context.Context) {
	for i := len(t.fns) - 1; i >= 0; i-- {
		td := t.fns[i]
		l := log.Ctx(ctx).With().Str("resource", td.name).Logger()

		if err := td.fn(ctx); err != nil {
			l.Warn().Err(err).Msg("teardown failed")
		} else {
			l.Info().Msg("teardown complete")
		}
	}
}

// Run serves handler on the configured port until the context is
// cancelled or SIGINT/SIGTERM arrives, then drains in-flight requests for
// up to shutdownTimeout before returning.
func Run(ctx context.Context, handler http.Handler, port int, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received; draining connections")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
