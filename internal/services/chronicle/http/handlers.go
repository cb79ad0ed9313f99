// Package http provides http transport for the config chronicle
package http

import (
	stdhttp "net/http"
	"time"

	"tally/internal/modkit/httpkit"
	perr "tally/internal/platform/errors"
	"tally/internal/services/chronicle/domain"
	svc "tally/internal/services/chronicle/service"
)

// Register mounts chronicle endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/current", h.current)
	httpkit.Get(r, "/at", h.at)
	httpkit.Get(r, "/history", h.history)
	httpkit.PostJSON[domain.AppendInput](r, "/", h.append)
	httpkit.PostJSON[domain.ReviseInput](r, "/revise", h.revise)
	httpkit.PostJSON[domain.DeleteInput](r, "/delete", h.remove)
}

type handlers struct{ svc svc.Service }

// @Summary Current open config entry
// @Tags Configs
// @Produce json
// @Success 200 {object} domain.ConfigEntry "ok"
// @Router /configs/current [get]
func (h *handlers) current(r *stdhttp.Request) (any, error) {
	return h.svc.Current(r.Context(), httpkit.MustOwner(r))
}

// @Summary Config entry active at an instant
// @Tags Configs
// @Produce json
// @Param instant query string true "RFC3339 instant"
// @Success 200 {object} domain.ConfigEntry "ok"
// @Router /configs/at [get]
func (h *handlers) at(r *stdhttp.Request) (any, error) {
	raw := r.URL.Query().Get("instant")
	instant, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, perr.WithField(perr.InvalidArgf("instant must be RFC3339"), "instant")
	}
	return h.svc.At(r.Context(), httpkit.MustOwner(r), instant)
}

// @Summary Full config history, newest first
// @Tags Configs
// @Produce json
// @Success 200 {array} domain.ConfigEntry "ok"
// @Router /configs/history [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	return h.svc.History(r.Context(), httpkit.MustOwner(r))
}

// @Summary Append a new config version
// @Tags Configs
// @Accept json
// @Produce json
// @Param payload body domain.AppendInput true "New version"
// @Success 201 {object} domain.ConfigEntry "created"
// @Router /configs [post]
func (h *handlers) append(r *stdhttp.Request, in domain.AppendInput) (any, error) {
	e, err := h.svc.Append(r.Context(), httpkit.MustOwner(r), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(e), nil
}

// @Summary Revise an existing config entry
// @Tags Configs
// @Accept json
// @Produce json
// @Param payload body domain.ReviseInput true "Fields to change"
// @Success 200 {object} domain.ConfigEntry "ok"
// @Router /configs/revise [post]
func (h *handlers) revise(r *stdhttp.Request, in domain.ReviseInput) (any, error) {
	return h.svc.Revise(r.Context(), httpkit.MustOwner(r), in)
}

// @Summary Delete a closed config entry
// @Tags Configs
// @Accept json
// @Produce json
// @Param payload body domain.DeleteInput true "Entry to delete"
// @Success 204 {string} string "deleted"
// @Router /configs/delete [post]
func (h *handlers) remove(r *stdhttp.Request, in domain.DeleteInput) (any, error) {
	if err := h.svc.Remove(r.Context(), httpkit.MustOwner(r), in.EntryID); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
