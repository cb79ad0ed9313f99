// Package api provides the HTTP API for the application
package api

import (
	"net/http"

	"tally/internal/platform/config"
	"tally/internal/platform/logger"
	phttp "tally/internal/platform/net/http"
	"tally/internal/platform/store"

	"tally/internal/modkit"
	"tally/internal/modkit/httpkit"
	"tally/internal/modkit/module"
	"tally/internal/modkit/swaggerkit"

	"tally/internal/adapters/tracker"
	"tally/internal/services/ident"

	chronicledom "tally/internal/services/chronicle/domain"
	chroniclemod "tally/internal/services/chronicle/module"
	metamod "tally/internal/services/meta/module"
	rollupmod "tally/internal/services/rollup/module"
	settingsdom "tally/internal/services/settings/domain"
	settingsmod "tally/internal/services/settings/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Logger        *logger.Logger
	EnableSwagger bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	// bearer auth for all domain modules; an empty secret disables auth
	// (dev mode) via the middleware's nil-port passthrough
	var auth []func(http.Handler) http.Handler
	if secret := opt.Config.MayString("AUTH_JWT_SECRET", ""); secret != "" {
		auth = append(auth, httpkit.Auth(ident.NewVerifier(secret)))
	}

	source := tracker.NewClient(tracker.Options{
		BaseURL:    opt.Config.MustString("TRACKER_BASEURL"),
		Timeout:    opt.Config.MayDuration("TRACKER_TIMEOUT", 0),
		Spacing:    opt.Config.MayDuration("TRACKER_SPACING", 0),
		MaxRetries: opt.Config.MayInt("TRACKER_MAX_RETRIES", 0),
	})

	chronicle := chroniclemod.New(deps, modkit.WithMiddlewares(auth...))
	settings := settingsmod.New(deps, modkit.WithMiddlewares(auth...))
	rollup := rollupmod.New(deps, rollupmod.Collab{
		Chronicle: module.MustPortsOf[chronicledom.ResolverPort](chronicle),
		Settings:  module.MustPortsOf[settingsdom.ReaderPort](settings),
		Source:    source,
	}, modkit.WithMiddlewares(auth...))

	mods := []module.Module{
		metamod.New(deps),
		chronicle,
		settings,
		rollup,
	}

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
