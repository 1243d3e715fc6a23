package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lojaesportiva/internal/config"
	"lojaesportiva/internal/infra"
	"lojaesportiva/internal/repository"
	"lojaesportiva/internal/router"
	"lojaesportiva/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := infra.InitTelemetry(ctx, cfg.OTELEndpoint, cfg.ServiceName, version)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init telemetry")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Redis only backs the alert e-mail queue; the API runs without it.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	mailer := infra.NewMailer(cfg)
	mailCB := infra.NewCircuitBreaker("smtp", infra.DefaultCBConfig())

	r := router.New(ctx, cfg, db, rdb, mailCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("version", version).Msgf("loja esportiva API listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if rdb != nil {
		// Worker handlers are wired here (composition root).
		dispatcher := worker.NewDispatcher(rdb)
		pool := worker.NewPool(rdb, cfg.WorkerPoolSize, map[string]worker.Handler{
			worker.JobEmail: worker.NewEmailWorker(mailer, mailCB),
		})
		g.Go(func() error { return pool.Run(gctx) })

		if destinos := splitEmails(cfg.AlertaEmailDestino); len(destinos) > 0 {
			alertaCfg := worker.AlertaCronConfig{
				Alertas:       repository.NewAlertaRepository(db),
				Queue:         dispatcher,
				CB:            mailCB,
				Destinatarios: destinos,
				Intervalo:     time.Duration(cfg.AlertaIntervaloSegundos) * time.Second,
			}
			g.Go(func() error { return worker.RunAlertaCron(gctx, alertaCfg) })
		}
	}

	// Graceful shutdown on SIGINT / SIGTERM or when any member fails
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("forced shutdown: %w", err)
		}
		return shutdownTelemetry(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server exited")
}

func splitEmails(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}
