// Package web is the web framework module: HTML pages rendered inside a
// layout template.
package web

import (
	"net/http"

	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/view"
)

const (
	InstantiatorName = "web"
	DefaultLayout    = "layouts/main"
)

// Controller marks web module controllers.
type Controller interface {
	controller.Controller
	Layout() string
}

// BaseController is embedded by web controllers.
type BaseController struct {
	*controller.DefaultController
	layout string
}

// NewBaseController builds the module base. templates may be nil.
func NewBaseController(deps controller.Dependencies, views view.Services, templates controller.TemplateServiceCreator) *BaseController {
	b := &BaseController{layout: DefaultLayout}
	b.DefaultController = controller.NewDefaultController(deps, views, b, templates)
	return b
}

// Layout is the template of the main view.
func (b *BaseController) Layout() string { return b.layout }

func (b *BaseController) SetLayout(name string) { b.layout = name }

func (b *BaseController) CreateMainViewContainer(r *http.Request, vc view.Container) (view.Container, error) {
	return b.CreateMainViewContainerWithTemplate(r, b.layout, vc)
}

// Instantiator builds web module controllers.
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

// Entry is the registry entry routing web controllers to this module.
func Entry(rank int) controller.Entry {
	return controller.For[Controller](InstantiatorName, rank)
}
