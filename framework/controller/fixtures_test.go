package controller_test

import (
	"net/http"
	"sync"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/controller"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/view"
)

// ── configuration ─────────────────────────────────────────────────────────────

type countingConfig struct {
	mu     sync.Mutex
	values map[string]string
	reads  map[string]int
}

func newCountingConfig(values map[string]string) *countingConfig {
	return &countingConfig{values: values, reads: make(map[string]int)}
}

func (c *countingConfig) GetString(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads[key]++
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return "", config.ErrMissingKey
}

func (c *countingConfig) Reads(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[key]
}

func newDeps(values map[string]string) (*controller.DependencyContainer, *countingConfig) {
	cfg := newCountingConfig(values)
	return controller.NewDependencyContainer(cfg, nil, nil), cfg
}

// ── controllers ───────────────────────────────────────────────────────────────

type apiController interface {
	controller.Controller
	APIVersion() string
}

type adminController interface {
	apiController
	Admin() bool
}

// plainController only implements the base capability.
type plainController struct {
	deps  controller.Dependencies
	views view.Services
}

func newPlainController(deps controller.Dependencies, views view.Services) *plainController {
	return &plainController{deps: deps, views: views}
}

func (c *plainController) Handle(r *http.Request) (*gohttp.Response, error) {
	return c.deps.ResponseFactory().CreateResponse(http.StatusNoContent), nil
}

// fooController implements Controller and apiController.
type fooController struct {
	plainController
}

func newFooController(deps controller.Dependencies, views view.Services) *fooController {
	return &fooController{plainController{deps: deps, views: views}}
}

func (c *fooController) APIVersion() string { return "v2" }

// notAController has the right constructor but no Handle.
type notAController struct{}

func newNotAController(controller.Dependencies, view.Services) *notAController {
	return &notAController{}
}

func newWrongArity(deps controller.Dependencies) *plainController {
	return &plainController{deps: deps}
}

func newWrongParameter(name string, views view.Services) *plainController {
	return &plainController{views: views}
}

func newSwappedParameters(views view.Services, deps controller.Dependencies) *plainController {
	return &plainController{deps: deps, views: views}
}

func newNilController(controller.Dependencies, view.Services) controller.Controller {
	return nil
}

func newNilPointerController(controller.Dependencies, view.Services) *plainController {
	return nil
}

func newClassRegistry() *reflection.Registry {
	reg := reflection.NewRegistry()
	reg.MustRegister("plain", newPlainController)
	reg.MustRegister("foo", newFooController)
	reg.MustRegister("not-a-controller", newNotAController)
	reg.MustRegister("wrong-arity", newWrongArity)
	reg.MustRegister("wrong-parameter", newWrongParameter)
	reg.MustRegister("swapped", newSwappedParameters)
	reg.MustRegister("nil", newNilController)
	reg.MustRegister("nil-pointer", newNilPointerController)
	return reg
}

// ── module instantiators ──────────────────────────────────────────────────────

// recordingInstantiator builds with the base algorithm and records its name.
type recordingInstantiator struct {
	controller.BaseModuleInstantiator
	name  string
	calls *[]string
}

func (r *recordingInstantiator) InstantiateModuleController(
	deps controller.Dependencies,
	class string,
	refl reflection.Service,
	views view.Services,
) (controller.Controller, error) {
	*r.calls = append(*r.calls, r.name)
	return r.Instantiate(deps, class, refl, views)
}

func recordingCatalog(calls *[]string, names ...string) *controller.InstantiatorCatalog {
	catalog := controller.NewInstantiatorCatalog()
	for _, name := range names {
		n := name
		catalog.Register(n, func() controller.ModuleInstantiator {
			return &recordingInstantiator{name: n, calls: calls}
		})
	}
	return catalog
}

// ── views ─────────────────────────────────────────────────────────────────────

// stubRenderer renders "<template>:<view>" and remembers what it rendered.
type stubRenderer struct {
	contentType string
	rendered    []view.Container
}

func (s *stubRenderer) ContentType() string { return s.contentType }

func (s *stubRenderer) Render(c view.Container) ([]byte, error) {
	s.rendered = append(s.rendered, c)
	switch v := c.View().(type) {
	case view.MainView:
		return []byte(c.Template() + "[" + v.Common.BaseURL + "|" + v.Data + "]"), nil
	case string:
		return []byte(c.Template() + ":" + v), nil
	default:
		return []byte(c.Template()), nil
	}
}

// layoutController is a minimal module base used to exercise DefaultController.
type layoutController struct {
	*controller.DefaultController
	layoutCalls int
}

func newLayoutController(deps controller.Dependencies, views view.Services, templates controller.TemplateServiceCreator) *layoutController {
	c := &layoutController{}
	c.DefaultController = controller.NewDefaultController(deps, views, c, templates)
	return c
}

func (c *layoutController) CreateMainViewContainer(r *http.Request, vc view.Container) (view.Container, error) {
	c.layoutCalls++
	return c.CreateMainViewContainerWithTemplate(r, "layouts/main", vc)
}
