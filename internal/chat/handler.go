package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/rbac"
)

// Handler exposes chat endpoints.
type Handler struct {
	dispatch *dispatch.Dispatcher
	service  *Service
}

// NewHandler builds Handler instance.
func NewHandler(d *dispatch.Dispatcher, service *Service) *Handler {
	return &Handler{dispatch: d, service: service}
}

// MountRoutes registers chat routes.
func (h *Handler) MountRoutes(r chi.Router) {
	staff := rbac.Require(rbac.RoleAdmin, rbac.RoleSAdmin)
	participants := rbac.Require(rbac.RoleAdmin, rbac.RoleSAdmin, rbac.RoleAdvertiser)

	r.Post("/sessions", h.dispatch.Handle(h.create, rbac.Public()))
	r.Get("/sessions", h.dispatch.Handle(h.list, staff))
	r.Get("/sessions/{id}", h.dispatch.Handle(h.get, participants))
	r.Post("/sessions/{id}/messages", h.dispatch.Handle(h.postMessage, rbac.Public()))
	r.Post("/sessions/{id}/close", h.dispatch.Handle(h.close, participants))
}

func (h *Handler) create(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	var in CreateSessionInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	sess, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()).ID, in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Created(sess), nil
}

func (h *Handler) list(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	page, err := dispatch.PageFromQuery(r)
	if err != nil {
		return dispatch.Result{}, err
	}
	sessions, err := h.service.List(r.Context(), ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(sessions), nil
}

func (h *Handler) get(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	sess, err := h.service.Get(r.Context(), p.Get("id"))
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(sess), nil
}

func (h *Handler) postMessage(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	var in PostMessageInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	msg, err := h.service.PostMessage(r.Context(), rbac.PrincipalFromContext(r.Context()).ID, p.Get("id"), in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Created(msg), nil
}

func (h *Handler) close(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	sess, err := h.service.Close(r.Context(), p.Get("id"))
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(sess), nil
}
