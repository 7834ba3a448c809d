package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking_web/internal/adapters/bookingapi"
	"hotel_booking_web/internal/adapters/observability"
	"hotel_booking_web/internal/app"
	"hotel_booking_web/internal/domain"
	"hotel_booking_web/internal/shared"
	mysqlrepo "hotel_booking_web/internal/storage/mysql"
)

// logNav stands in for the browser: a 401 here means the service token expired.
type logNav struct{}

func (logNav) Navigate(v domain.View) {
	log.Error().Str("view", string(v)).Msg("hotel API rejected RECONCILE_API_TOKEN")
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.APIBaseURL).
		Int("workers", cfg.ReconcileWorkers).
		Int("batch", cfg.ReconcileBatch).
		Msg("reconciler starting")

	if cfg.MySQLDSN == "" || cfg.ReconcileAPIToken == "" {
		log.Fatal().Msg("MYSQL_DSN and RECONCILE_API_TOKEN are required")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	client, err := bookingapi.New(cfg.APIBaseURL, cfg.APIRPS, cfg.APITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize hotel API client")
	}
	api := client.WithSession(app.NewSession(cfg.ReconcileAPIToken), logNav{})

	// bookings are created for the token's owner; only that account's entries are re-submitted
	account, err := api.Me(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve reconcile account failed")
	}
	log.Info().Int64("user_id", account.ID).Msg("reconciling as")
	svc := app.NewReconcileService(api, mysqlrepo.New(db), account)

	pending, err := svc.Pending(ctx, cfg.ReconcileBatch)
	if err != nil {
		log.Fatal().Err(err).Msg("list pending bookings failed")
	}
	if len(pending) == 0 {
		log.Info().Msg("nothing to reconcile")
		return
	}

	sem := semaphore.NewWeighted(int64(cfg.ReconcileWorkers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, e := range pending {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(e domain.JournalEntry) {
			defer wg.Done()
			defer sem.Release(1)

			if err := svc.ReconcileOne(ctx, e); err != nil {
				failed.Add(1)
				log.Warn().Int64("local_id", e.LocalID).Err(err).Msg("reconcile failed")
			}
		}(e)
	}

	wg.Wait()
	log.Info().Int("pending", len(pending)).Int64("failed", failed.Load()).Msg("reconciliation completed")
}
