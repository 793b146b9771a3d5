package dispatch

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// PrincipalResolver extracts the caller identity from a request. A request
// without credentials resolves to rbac.Anonymous and no error.
type PrincipalResolver interface {
	Resolve(r *http.Request) (rbac.Principal, error)
}

// Observer receives one outcome per dispatched request.
type Observer interface {
	ObserveDispatch(route string, outcome string)
}

// Params holds the path parameters of the matched route.
type Params map[string]string

// Get returns the named path parameter or "".
func (p Params) Get(name string) string {
	return p[name]
}

// Result is a successful handler outcome. Status 0 means 200.
type Result struct {
	Status int
	Data   any
}

// OK returns a 200 result.
func OK(data any) Result {
	return Result{Status: http.StatusOK, Data: data}
}

// Created returns a 201 result.
func Created(data any) Result {
	return Result{Status: http.StatusCreated, Data: data}
}

// HandlerFunc is a business operation invoked only after authorization passed.
// The resolved principal is available through rbac.PrincipalFromContext.
type HandlerFunc func(r *http.Request, params Params) (Result, error)

// Dispatcher produces guarded http.HandlerFuncs. It holds no per-request state
// and may be shared by every route.
type Dispatcher struct {
	resolver PrincipalResolver
	logger   *slog.Logger
	observer Observer
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithObserver reports dispatch outcomes to o.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// New constructs a Dispatcher.
func New(resolver PrincipalResolver, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{resolver: resolver, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle wraps h so that it runs only for principals satisfying req.
func (d *Dispatcher) Handle(h HandlerFunc, req rbac.Requirement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env := d.dispatch(h, req, r)
		if d.observer != nil {
			outcome := string(env.ErrorKind)
			if env.Status == StatusSuccess {
				outcome = StatusSuccess
			}
			d.observer.ObserveDispatch(routePattern(r), outcome)
		}
		Write(w, env)
	}
}

func (d *Dispatcher) dispatch(h HandlerFunc, req rbac.Requirement, r *http.Request) (env Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			env = d.fail(r, fmt.Errorf("dispatch: panic: %v", rec))
		}
	}()

	principal := rbac.Anonymous()
	if d.resolver != nil {
		resolved, err := d.resolver.Resolve(r)
		if err != nil {
			return d.fail(r, err)
		}
		principal = resolved
	}

	decision := rbac.Authorize(principal, req)
	if !decision.Allowed {
		if decision.Reason == rbac.ReasonUnauthenticated {
			return Failure(shared.Unauthenticated("authentication required", nil))
		}
		return Failure(shared.Forbidden("insufficient role for this operation"))
	}

	r = r.WithContext(rbac.WithPrincipal(r.Context(), principal))
	result, err := h(r, paramsFrom(r))
	if err != nil {
		return d.fail(r, err)
	}
	return Success(result.Status, result.Data)
}

func (d *Dispatcher) fail(r *http.Request, err error) Envelope {
	env := Failure(err)
	if env.ErrorKind.Redacted() {
		d.logger.Error("dispatch failed",
			slog.String("request_id", chimw.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("route", routePattern(r)),
			slog.String("kind", string(env.ErrorKind)),
			slog.Any("error", err),
		)
	}
	return env
}

func paramsFrom(r *http.Request) Params {
	params := Params{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
