package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhadevv/anichin/internal/api"
	"github.com/zhadevv/anichin/internal/config"
	"github.com/zhadevv/anichin/internal/health"
	"github.com/zhadevv/anichin/internal/scheduler"
	"github.com/zhadevv/anichin/internal/scheduler/tasks"
	"github.com/zhadevv/anichin/internal/scraper/anichin"
	"github.com/zhadevv/anichin/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(o *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve every operation over a JSON REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides server.port)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg, os.Stdout, true)
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("baseUrl", cfg.Scraper.BaseURL).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting anichin")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(log.Logger)
	go hub.Run(ctx)

	// Enable log streaming via WebSocket now that hub is available
	log.Broadcaster().SetHub(hub)

	client, err := anichin.New(cfg.Scraper, log.Logger)
	if err != nil {
		return err
	}

	healthService := health.NewService(log.Logger)
	healthService.SetBroadcaster(hub)
	client.SetBroadcaster(hub)
	client.SetHealth(healthService)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if cfg.Scheduler.Enabled {
		task := tasks.NewUpstreamHealthTask(client, healthService, log.Logger)
		if err := tasks.RegisterUpstreamHealthTask(sched, task, cfg.Scheduler.UpstreamHealthCron); err != nil {
			return fmt.Errorf("register upstream health task: %w", err)
		}
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown error")
		}
	}()

	server := api.NewServer(cfg, api.Services{
		Scraper:   client,
		Hub:       hub,
		Health:    healthService,
		Scheduler: sched,
		Logs:      log,
	}, log.Logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}
