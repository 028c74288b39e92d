// Package xhttp implements http helpers.
package xhttp

import (
	"context"
	"net"
	"net/http"
	"time"

	"cdr.dev/slog"

	"oss.terrastruct.com/xcontext"

	"oss.terrastruct.com/lrviz/lib/log"
)

// NewServer returns a server for h whose internal errors go to the logger in ctx.
func NewServer(ctx context.Context, h http.Handler) *http.Server {
	return &http.Server{
		MaxHeaderBytes: 1 << 18, // 262,144B
		ReadTimeout:    time.Minute,
		WriteTimeout:   time.Minute,
		IdleTimeout:    time.Hour,
		ErrorLog:       slog.Stdlib(ctx, log.From(ctx), slog.LevelWarn),
		Handler:        http.MaxBytesHandler(h, 1<<20), // 1,048,576B
	}
}

// Serve serves s on l until ctx is done and then shuts s down, waiting at most
// shutdownTimeout for in flight requests.
func Serve(ctx context.Context, shutdownTimeout time.Duration, s *http.Server, l net.Listener) error {
	s.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(l)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		ctx = xcontext.WithoutCancel(ctx)
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	}
}
