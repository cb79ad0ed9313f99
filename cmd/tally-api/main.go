// @title         Tally API
// @version       0.1.0
// @description   Work time aggregates, tracked project config and overtime

package main

import (
	"context"
	"os/signal"
	"syscall"

	"tally/internal/modkit/repokit"
	"tally/internal/platform/config"
	"tally/internal/platform/logger"
	phttp "tally/internal/platform/net/http"
	"tally/internal/platform/store"

	"tally/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (TALLY_API_*)
	root := config.New()
	apiCfg := root.Prefix("TALLY_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	logger.Init(logger.FromEnv())
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "tally-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
				Migrate:     pgCfg.MayBool("MIGRATE", true),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// refuse to serve if the store is not actually reachable
	repokit.MustGuard(ctx, st)

	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:        apiCfg,
			Store:         st,
			Logger:        l,
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			l.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
