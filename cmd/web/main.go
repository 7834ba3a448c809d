package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_booking_web/internal/adapters/bookingapi"
	server "hotel_booking_web/internal/adapters/http_server"
	"hotel_booking_web/internal/adapters/observability"
	redisad "hotel_booking_web/internal/adapters/redis"
	"hotel_booking_web/internal/domain"
	"hotel_booking_web/internal/shared"
	mysqlrepo "hotel_booking_web/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	api, err := bookingapi.New(cfg.APIBaseURL, cfg.APIRPS, cfg.APITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize hotel API client")
	}

	h := &server.Handlers{
		Backend: func(s domain.Session, nav domain.Navigator) server.Backend {
			return api.WithSession(s, nav)
		},
		CacheTTL:        cfg.CacheTTL,
		SessionTTL:      cfg.SessionTTL,
		OfflineFallback: cfg.OfflineFallback,
	}

	// cache is optional: without redis every detail view hits the API
	if cfg.RedisAddr != "" {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := cache.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; hotel cache disabled")
			_ = cache.Close()
		} else {
			h.Cache = cache
			defer cache.Close()
		}
		cancel()
	}

	// journal is optional as well
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		defer db.Close()
		log.Info().Msg("database connection ok")
		h.Journal = mysqlrepo.New(db)
	}

	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("api", cfg.APIBaseURL).
		Bool("offline_fallback", cfg.OfflineFallback).
		Msg("web listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("web stopped")
}
