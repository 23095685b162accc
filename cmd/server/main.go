package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gameops/remoteconfig/internal/api"
	"github.com/gameops/remoteconfig/internal/config"
	"github.com/gameops/remoteconfig/internal/logging"
	"github.com/gameops/remoteconfig/internal/store"
	"github.com/gameops/remoteconfig/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logging.New("info")
		log.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.InitTracing(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing")
	}

	st, err := store.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store")
	}
	defer st.Close()

	if cfg.StoreType == "postgres" {
		if err := runMigrations(ctx, cfg.DatabaseDSN, log); err != nil {
			log.Fatal().Err(err).Msg("migrations")
		}
	}

	telemetry.Init()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server")
		}
	}()

	srvAPI := api.NewServer(st, api.Options{
		Env:               cfg.Env,
		AdminAPIKey:       cfg.AdminAPIKey,
		RateLimitPerIP:    cfg.RateLimitPerIP,
		AllowDebugInstant: cfg.AllowDebugInstant(),
		Logger:            log,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(srvAPI.Router(), "remoteconfig-http"),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = shutdownTracing(ctxShut)
	log.Info().Msg("stopped")
}
