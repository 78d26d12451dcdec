package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/playlift/playlift/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP API server and blocks until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	serverCfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		serverCfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		serverCfg.Port = port
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.Logging(r.logger), server.CORS())

	api := server.NewAPIHandler(r.converter, r.logger, time.Duration(serverCfg.RequestTimeout)*time.Second)
	api.Register(router)

	srv := server.New(serverCfg, router, r.logger)

	notifyCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-notifyCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
