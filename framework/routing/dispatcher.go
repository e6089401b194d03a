package routing

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/errs"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/route"
	"github.com/km-arc/go-mvc/framework/view"
)

// ControllerInstantiator resolves a controller for a route configuration.
type ControllerInstantiator interface {
	InstantiateController(cfg route.Configuration, rendererID string) (controller.Controller, error)
}

// Dispatcher answers a matched route: it builds the controller, runs it and
// writes the response.
type Dispatcher struct {
	instantiator ControllerInstantiator
	responses    *gohttp.ResponseFactory
	logger       *zap.Logger
	debug        bool
}

// NewDispatcher creates a dispatcher. With debug set, error responses carry
// the error text instead of the status text.
func NewDispatcher(instantiator ControllerInstantiator, logger *zap.Logger, debug bool) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		instantiator: instantiator,
		responses:    gohttp.NewResponseFactory(),
		logger:       logger,
		debug:        debug,
	}
}

// Handler returns the http.HandlerFunc for one route.
func (d *Dispatcher) Handler(cfg route.Configuration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Dispatch(w, r, cfg)
	}
}

// Dispatch answers r with the route configured by cfg.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, r *http.Request, cfg route.Configuration) {
	logger := d.logger.With(zap.String("request_id", RequestIDFromContext(r.Context())))

	res, err := d.respond(r, cfg, logger)
	if err != nil {
		res = d.errorResponse(err, logger, r)
	}
	if err := res.Send(w); err != nil {
		logger.Warn("write response", zap.Error(err))
	}
}

func (d *Dispatcher) respond(r *http.Request, cfg route.Configuration, logger *zap.Logger) (*gohttp.Response, error) {
	if redirect, ok := route.AsRedirect(cfg); ok {
		return d.responses.CreateRedirectResponse(redirect.Location, int(redirect.Status))
	}

	cv, ok := route.AsControllerView(cfg)
	if !ok {
		return nil, errs.Newf("dispatch", "", errs.ErrInvalidRouteConfiguration, "got %T", cfg)
	}
	rendererID := NegotiateRenderer(r, cv)

	c, err := d.instantiator.InstantiateController(cv, rendererID)
	if err != nil {
		return nil, err
	}
	logger.Debug("dispatching", zap.String("controller", cv.ControllerClass), zap.String("renderer", rendererID))

	res, err := c.Handle(r)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errs.Newf("dispatch", cv.ControllerClass, errs.ErrContractViolation, "controller returned no response")
	}
	return res, nil
}

func (d *Dispatcher) errorResponse(err error, logger *zap.Logger, r *http.Request) *gohttp.Response {
	status := StatusFor(err)
	req := gohttp.NewRequest(r)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Info("request rejected", fields...)
	}

	if d.debug {
		return d.responses.CreateErrorResponse(status, err.Error())
	}
	return d.responses.CreateErrorResponse(status)
}

// StatusFor maps a resolution error to the HTTP status sent to the client.
// Only an unknown controller class is a 404; a route naming an unknown
// renderer or view container factory is a server error.
func StatusFor(err error) int {
	if errors.Is(err, errs.ErrInvalidRouteConfiguration) {
		return http.StatusInternalServerError
	}
	if errors.Is(err, errs.ErrClassNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// NegotiateRenderer picks the renderer for a controller route: the route's
// own renderer if it pins one, JSON when the request asks for JSON, HTML
// otherwise.
func NegotiateRenderer(r *http.Request, cv route.ControllerView) string {
	if cv.Renderer != "" {
		return cv.Renderer
	}
	if gohttp.NewRequest(r).IsJSON() {
		return view.RendererJSON
	}
	return view.RendererHTML
}
