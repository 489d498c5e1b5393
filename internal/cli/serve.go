package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/gitquest/pkg/adapters/http"
	"github.com/aretw0/gitquest/pkg/adapters/mcp"
)

// ShutdownTimeout bounds graceful shutdown of the servers.
const ShutdownTimeout = 5 * time.Second

// NewHTTPHandler builds the JSON API of app.
func NewHTTPHandler(app *App) http.Handler {
	opts := []httpAdapter.Option{
		httpAdapter.WithSettings(app.Settings),
		httpAdapter.WithLogger(app.Logger),
	}
	if app.Config.Server.Metrics {
		opts = append(opts, httpAdapter.WithMetrics(app.Metrics.Handler()))
	}
	return httpAdapter.NewHandler(app.Manager, opts...)
}

// RunServe serves the JSON API on addr until ctx is cancelled.
func RunServe(ctx context.Context, app *App, addr string) error {
	if addr == "" {
		addr = app.Config.Server.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHTTPHandler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("gitquest server listening", "addr", addr, "content", app.Engine.Name)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		app.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		return nil
	}
}

// RunMCP serves the MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, app *App, transport string, port int) error {
	if transport == "" {
		transport = app.Config.MCP.Transport
	}
	if port == 0 {
		port = app.Config.MCP.Port
	}
	srv := mcp.NewServer(app.Manager, app.Logger)

	switch transport {
	case "stdio":
		app.Logger.Info("starting mcp server (stdio)")
		return srv.ServeStdio()
	case "sse":
		err := srv.ServeSSE(ctx, port)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
	return fmt.Errorf("unknown transport %q, want stdio or sse", transport)
}
