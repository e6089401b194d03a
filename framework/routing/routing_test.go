package routing_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/errs"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/module/api"
	"github.com/km-arc/go-mvc/framework/module/web"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/route"
	"github.com/km-arc/go-mvc/framework/routing"
	"github.com/km-arc/go-mvc/framework/view"
)

// ── controllers ───────────────────────────────────────────────────────────────

type homeController struct {
	*web.BaseController
}

func newHomeController(deps controller.Dependencies, views view.Services) *homeController {
	return &homeController{web.NewBaseController(deps, views, nil)}
}

func (c *homeController) Handle(r *http.Request) (*gohttp.Response, error) {
	vc := c.Views.ViewContainerFactory().CreateViewContainerFromView(map[string]string{"Name": "Ada"}, "home")
	return c.CreateResponse(r, vc)
}

type userController struct {
	*api.BaseController
}

func newUserController(deps controller.Dependencies, views view.Services) *userController {
	return &userController{api.NewBaseController(deps, views, nil)}
}

func (c *userController) Handle(r *http.Request) (*gohttp.Response, error) {
	vc := c.Views.ViewContainerFactory().CreateViewContainerFromView(map[string]string{"id": gohttp.NewRequest(r).RouteParam("id")}, "user")
	return c.CreateResponse(r, vc)
}

type failingController struct{}

func newFailingController(controller.Dependencies, view.Services) *failingController {
	return &failingController{}
}

func (failingController) Handle(*http.Request) (*gohttp.Response, error) {
	return nil, errors.New("boom")
}

type panickingController struct{}

func newPanickingController(controller.Dependencies, view.Services) *panickingController {
	return &panickingController{}
}

func (panickingController) Handle(*http.Request) (*gohttp.Response, error) {
	panic("kaboom")
}

// ── fixture ───────────────────────────────────────────────────────────────────

func writeTemplate(t *testing.T, root, name, body string) {
	t.Helper()
	path := filepath.Join(root, "resources", "templates", "default", name+".html")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newRouter(t *testing.T, debug bool) (*routing.Router, *observer.ObservedLogs) {
	t.Helper()

	project := t.TempDir()
	writeTemplate(t, project, "home", `<p>Hello {{.Name}}</p>`)
	writeTemplate(t, project, "layouts/main", `<main data-base="{{.Common.BaseURL}}">{{.Content}}</main>`)

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	cfg := config.FromMap(map[string]string{
		controller.ConfigBaseURL:     "https://example.test",
		controller.ConfigProjectPath: project,
	})
	deps := controller.NewDependencyContainer(cfg, logger, nil)

	classes := reflection.NewRegistry()
	classes.MustRegister("home", newHomeController)
	classes.MustRegister("user", newUserController)
	classes.MustRegister("failing", newFailingController)
	classes.MustRegister("panicking", newPanickingController)

	catalog := controller.NewInstantiatorCatalog()
	catalog.Register(api.InstantiatorName, api.NewInstantiator)
	catalog.Register(web.InstantiatorName, web.NewInstantiator)
	registry := controller.MustRegistry(
		api.Entry(10),
		web.Entry(20),
		controller.For[controller.Controller](controller.DefaultInstantiatorName, 100),
	)

	instantiator := controller.NewInstantiator(
		deps,
		classes,
		controller.NewSpecificModuleInstantiator(registry, catalog, logger),
		view.NewFactoryInstantiator(),
		view.NewRendererInstantiator(),
	)

	r := routing.New(routing.NewDispatcher(instantiator, logger, debug))
	r.Register(
		route.Entry{Method: http.MethodGet, Pattern: "/", Configuration: route.ControllerView{ControllerClass: "home", ViewContainerFactoryClass: view.DefaultFactory}},
		route.Entry{Method: http.MethodGet, Pattern: "/users/{id}", Configuration: route.ControllerView{ControllerClass: "user", ViewContainerFactoryClass: view.DefaultFactory, Renderer: view.RendererJSON}},
		route.Entry{Method: http.MethodGet, Pattern: "/missing", Configuration: route.ControllerView{ControllerClass: "nope", ViewContainerFactoryClass: view.DefaultFactory}},
		route.Entry{Method: http.MethodGet, Pattern: "/old", Configuration: route.Redirect{Location: "/", Status: gohttp.StatusMovedPermanently}},
	)
	r.Get("/fail", route.ControllerView{ControllerClass: "failing", ViewContainerFactoryClass: view.DefaultFactory})
	r.Get("/bad-renderer", route.ControllerView{ControllerClass: "home", ViewContainerFactoryClass: view.DefaultFactory, Renderer: "pdf"})
	r.Get("/ptr", &route.ControllerView{ControllerClass: "home", ViewContainerFactoryClass: view.DefaultFactory})
	r.Get("/ptr-redirect", &route.Redirect{Location: "/", Status: gohttp.StatusFound})
	r.Get("/panic", route.ControllerView{ControllerClass: "panicking", ViewContainerFactoryClass: view.DefaultFactory})
	return r, logs
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// ── end to end ────────────────────────────────────────────────────────────────

func TestRouter_HTMLPageInsideLayout(t *testing.T) {
	r, _ := newRouter(t, false)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	body := `<main data-base="https://example.test"><p>Hello Ada</p></main>`
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
	assert.Equal(t, view.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.Equal(t, "62", rec.Header().Get("Content-Length"))
}

func TestRouter_JSONBody(t *testing.T) {
	r, _ := newRouter(t, false)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/users/7", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"7"}`, rec.Body.String())
	assert.Equal(t, view.ContentTypeJSON, rec.Header().Get("Content-Type"))
}

func TestRouter_NegotiatesJSONFromAccept(t *testing.T) {
	r, _ := newRouter(t, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")

	rec := serve(r, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Name":"Ada"}`, rec.Body.String())
}

func TestRouter_RedirectRoute(t *testing.T) {
	r, _ := newRouter(t, false)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/old", nil))

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.String())
}

func TestRouter_UnknownControllerIsNotFound(t *testing.T) {
	r, logs := newRouter(t, false)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusText(http.StatusNotFound), rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("request rejected").Len())
}

func TestRouter_UnknownRendererIsInternal(t *testing.T) {
	r, logs := newRouter(t, false)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/bad-renderer", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestRouter_PointerConfigurations(t *testing.T) {
	r, _ := newRouter(t, false)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/ptr", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<main data-base="https://example.test"><p>Hello Ada</p></main>`, rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/ptr-redirect", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRouter_ControllerErrorIsInternal(t *testing.T) {
	r, logs := newRouter(t, false)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), rec.Body.String())

	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal(t, rec.Header().Get(routing.HeaderRequestID), failed[0].ContextMap()["request_id"])
}

func TestRouter_DebugShowsErrorText(t *testing.T) {
	r, _ := newRouter(t, true)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", rec.Body.String())
}

func TestRouter_RecoversPanics(t *testing.T) {
	r, _ := newRouter(t, false)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_AccessLog(t *testing.T) {
	r, logs := newRouter(t, false)

	serve(r, httptest.NewRequest(http.MethodGet, "/users/7", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/users/7", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

// ── prefixes, middleware, static ──────────────────────────────────────────────

func TestRouter_PrefixWithMiddleware(t *testing.T) {
	r, _ := newRouter(t, false)
	r.Prefix("/v2", func(r *routing.Router) {
		r.Middleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("X-Area", "v2")
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/users/{id}", route.ControllerView{ControllerClass: "user", ViewContainerFactoryClass: view.DefaultFactory, Renderer: view.RendererJSON})
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/v2/users/9", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"9"}`, rec.Body.String())
	assert.Equal(t, "v2", rec.Header().Get("X-Area"))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/users/9", nil))
	assert.Empty(t, rec.Header().Get("X-Area"), "prefix middleware stays inside the prefix")
}

func TestRouter_Static(t *testing.T) {
	r, _ := newRouter(t, false)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *"), 0o644))
	r.Static("/assets", dir)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/assets/robots.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User-agent: *", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/assets/missing.txt", nil)).Code)
}

// ── request id ────────────────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	r, _ := newRouter(t, false)

	first := serve(r, httptest.NewRequest(http.MethodGet, "/old", nil)).Header().Get(routing.HeaderRequestID)
	second := serve(r, httptest.NewRequest(http.MethodGet, "/old", nil)).Header().Get(routing.HeaderRequestID)
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)

	req := httptest.NewRequest(http.MethodGet, "/old", nil)
	req.Header.Set(routing.HeaderRequestID, "upstream-id")
	assert.Equal(t, "upstream-id", serve(r, req).Header().Get(routing.HeaderRequestID))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func TestNegotiateRenderer(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	wantsJSON := httptest.NewRequest(http.MethodGet, "/", nil)
	wantsJSON.Header.Set("Accept", "application/json")

	assert.Equal(t, view.RendererHTML, routing.NegotiateRenderer(plain, route.ControllerView{}))
	assert.Equal(t, view.RendererJSON, routing.NegotiateRenderer(wantsJSON, route.ControllerView{}))
	assert.Equal(t, "pdf", routing.NegotiateRenderer(wantsJSON, route.ControllerView{Renderer: "pdf"}))
}

func TestStatusFor(t *testing.T) {
	c, err := controller.NewInstantiator(
		controller.NewDependencyContainer(config.FromMap(nil), nil, nil),
		reflection.NewRegistry(),
		controller.NewSpecificModuleInstantiator(controller.MustRegistry(), controller.NewInstantiatorCatalog(), nil),
		view.NewFactoryInstantiator(),
		view.NewRendererInstantiator(),
	).InstantiateController(route.ControllerView{ControllerClass: "x"}, view.RendererHTML)
	require.Nil(t, c)

	assert.Equal(t, http.StatusNotFound, routing.StatusFor(err))
	assert.Equal(t, http.StatusInternalServerError, routing.StatusFor(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError,
		routing.StatusFor(fmt.Errorf("%w: %w", errs.ErrInvalidRouteConfiguration, errs.ErrClassNotFound)))
}
