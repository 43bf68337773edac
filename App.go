package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const ExitCodeMainError = 1

const shutdownTimeout = 5 * time.Second

// RunApp hosts one view until ctx is cancelled
func RunApp(ctx context.Context, config *Config, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", config.Listen)
	if err != nil {
		return err
	}

	return ServeApp(ctx, config, logger, listener)
}

func ServeApp(ctx context.Context, config *Config, logger *slog.Logger, listener net.Listener) error {
	gin.SetMode(gin.ReleaseMode)

	serviceContainer, err := BuildServiceContainer(ctx, config, logger)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer serviceContainer.Close()

	logger.Info("view started",
		"listen", listener.Addr().String(), "document", config.DocumentId,
		"storage", config.Storage.Driver, "relay", config.Sync.RelayUrl, "serveRelay", config.Sync.ServeRelay,
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return serviceContainer.Coordinator.Run(groupCtx)
	})

	group.Go(func() error {
		return serve(groupCtx, serviceContainer.Router, listener, logger)
	})

	return group.Wait()
}

// RunRelay hosts only the websocket broadcast relay
func RunRelay(ctx context.Context, config *Config, logger *slog.Logger, listener net.Listener) error {
	gin.SetMode(gin.ReleaseMode)

	relay := NewWebsocketRelay(config.Sync.QueueSize, logger.With("component", "relay"))
	defer relay.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	router := SetupRelayRouter(relay, registry)

	logger.Info("relay started", "listen", listener.Addr().String())

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return serve(groupCtx, router, listener, logger)
	})

	return group.Wait()
}

func serve(ctx context.Context, handler http.Handler, listener net.Listener, logger *slog.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	served := make(chan error, 1)
	go func() {
		served <- server.Serve(listener)
	}()

	select {
	case err := <-served:
		return err

	case <-ctx.Done():
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		if err := <-served; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func HandleExitError(errStream io.Writer, err error) int {
	if err != nil {
		_, _ = fmt.Fprintln(errStream, err)
	}

	if err != nil {
		return ExitCodeMainError
	}

	return 0
}
