// Package http provides http transport for owner settings
package http

import (
	stdhttp "net/http"

	"tally/internal/modkit/httpkit"
	"tally/internal/services/settings/domain"
	svc "tally/internal/services/settings/service"
)

// Register mounts settings endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.get)
	httpkit.PutJSON[domain.PutInput](r, "/", h.put)
}

type handlers struct{ svc svc.Service }

// @Summary Owner settings
// @Tags Settings
// @Produce json
// @Success 200 {object} domain.Settings "ok"
// @Router /settings [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), httpkit.MustOwner(r))
}

// @Summary Replace owner settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body domain.PutInput true "Settings"
// @Success 200 {object} domain.Settings "ok"
// @Router /settings [put]
func (h *handlers) put(r *stdhttp.Request, in domain.PutInput) (any, error) {
	return h.svc.Put(r.Context(), httpkit.MustOwner(r), in)
}
