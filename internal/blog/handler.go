package blog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/rbac"
)

// Handler exposes blog endpoints.
type Handler struct {
	dispatch *dispatch.Dispatcher
	service  *Service
}

// NewHandler builds Handler instance.
func NewHandler(d *dispatch.Dispatcher, service *Service) *Handler {
	return &Handler{dispatch: d, service: service}
}

// MountRoutes registers blog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.dispatch.Handle(h.create, rbac.Require(rbac.RoleAdmin, rbac.RoleSAdmin)))
	r.Get("/", h.dispatch.Handle(h.list, rbac.Public()))
	r.Get("/{id}", h.dispatch.Handle(h.get, rbac.Public()))
}

func (h *Handler) create(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	var in CreatePostInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	post, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()).ID, in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Created(post), nil
}

func (h *Handler) list(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	page, err := dispatch.PageFromQuery(r)
	if err != nil {
		return dispatch.Result{}, err
	}
	posts, err := h.service.List(r.Context(), r.URL.Query().Get("tag"), page.Limit, page.Offset)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(posts), nil
}

func (h *Handler) get(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	post, err := h.service.Get(r.Context(), p.Get("id"))
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(post), nil
}
