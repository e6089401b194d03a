// Package api is the API framework module: JSON-first controllers that
// still get a minimal layout when rendered as HTML.
package api

import (
	"net/http"

	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/view"
)

const (
	InstantiatorName = "api"
	MainTemplate     = "api/main"
	DefaultVersion   = "v1"
)

// Controller marks API module controllers.
type Controller interface {
	controller.Controller
	APIVersion() string
}

// BaseController is embedded by API controllers.
type BaseController struct {
	*controller.DefaultController
	version string
}

// NewBaseController builds the module base. templates may be nil.
func NewBaseController(deps controller.Dependencies, views view.Services, templates controller.TemplateServiceCreator) *BaseController {
	b := &BaseController{version: DefaultVersion}
	b.DefaultController = controller.NewDefaultController(deps, views, b, templates)
	return b
}

func (b *BaseController) APIVersion() string { return b.version }

// SetAPIVersion overrides DefaultVersion.
func (b *BaseController) SetAPIVersion(v string) { b.version = v }

// CreateMainViewContainer wraps HTML output in MainTemplate. JSON output
// never reaches it.
func (b *BaseController) CreateMainViewContainer(r *http.Request, vc view.Container) (view.Container, error) {
	return b.CreateMainViewContainerWithTemplate(r, MainTemplate, vc)
}

// Instantiator builds API module controllers.
type Instantiator struct {
	controller.BaseModuleInstantiator
}

func NewInstantiator() controller.ModuleInstantiator { return &Instantiator{} }

func (i *Instantiator) InstantiateModuleController(
	deps controller.Dependencies,
	controllerClass string,
	refl reflection.Service,
	views view.Services,
) (controller.Controller, error) {
	c, err := i.Instantiate(deps, controllerClass, refl, views)
	if err != nil {
		return nil, err
	}
	return controller.RequireInterface(c, reflection.InterfaceOf[Controller](), controllerClass)
}

// Entry is the registry entry routing API controllers to this module.
func Entry(rank int) controller.Entry {
	return controller.For[Controller](InstantiatorName, rank)
}
