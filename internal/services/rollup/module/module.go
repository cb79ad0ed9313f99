// Package module wires the aggregate cache into the API using modkit
package module

import (
	"net/http"

	modkit "tally/internal/modkit"
	"tally/internal/modkit/httpkit"
	reportsdom "tally/internal/services/reports/domain"
	reportssvc "tally/internal/services/reports/service"
	rolluphttp "tally/internal/services/rollup/http"
	rolluprepo "tally/internal/services/rollup/repo"
	rollupsvc "tally/internal/services/rollup/service"

	chronicledom "tally/internal/services/chronicle/domain"
	settingsdom "tally/internal/services/settings/domain"
)

// Collab names the cross-module ports rollup consumes
type Collab struct {
	Chronicle chronicledom.ResolverPort
	Settings  settingsdom.ReaderPort
	Source    reportsdom.SourcePort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc rollupsvc.Service
}

// New constructs a rollup module with the provided dependencies, collaborators and options
func New(deps modkit.Deps, collab Collab, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("rollup"), modkit.WithPrefix("/weeks")}, opts...)...)

	repo := rolluprepo.NewPG()
	svc := rollupsvc.New(deps.PG, repo, rollupsvc.Collab{
		Chronicle: collab.Chronicle,
		Settings:  collab.Settings,
		Reports:   reportssvc.New(collab.Source),
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptRollupPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		rolluphttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
