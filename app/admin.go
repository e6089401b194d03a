package app

import (
	"net/http"

	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/errs"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/module/web"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/view"
)

const (
	AdminInstantiatorName = "admin"
	AdminLayout           = "layouts/admin"
	AdminTokenHeader      = "X-Admin-Token"
	ConfigAdminToken      = "ADMIN_TOKEN"
)

// AdminController is a web controller behind the admin gate. It embeds
// web.Controller, so the registry must rank it before web.
type AdminController interface {
	web.Controller
	RequiresAuthentication() bool
}

// AdminBaseController is embedded by admin pages. It renders inside
// AdminLayout and answers unauthenticated requests with a redirect.
type AdminBaseController struct {
	*web.BaseController
}

func NewAdminBaseController(deps controller.Dependencies, views view.Services) *AdminBaseController {
	b := &AdminBaseController{web.NewBaseController(deps, views, nil)}
	b.SetLayout(AdminLayout)
	return b
}

func (b *AdminBaseController) RequiresAuthentication() bool { return true }

// Authorize returns nil when r carries the configured admin token and a
// redirect to /login otherwise.
func (b *AdminBaseController) Authorize(r *http.Request) *gohttp.Response {
	want, err := b.Deps.Configuration().GetString(ConfigAdminToken)
	if err == nil && want != "" && gohttp.NewRequest(r).Header(AdminTokenHeader) == want {
		return nil
	}
	return b.CreateRedirect("/login")
}

// AdminInstantiator builds admin controllers and refuses any that opt out
// of authentication.
type AdminInstantiator struct {
	controller.BaseModuleInstantiator
}

func NewAdminInstantiator() controller.ModuleInstantiator { return &AdminInstantiator{} }

func (i *AdminInstantiator) InstantiateModuleController(
	deps controller.Dependencies,
	controllerClass string,
	refl reflection.Service,
	views view.Services,
) (controller.Controller, error) {
	c, err := i.Instantiate(deps, controllerClass, refl, views)
	if err != nil {
		return nil, err
	}
	c, err = controller.RequireInterface(c, reflection.InterfaceOf[AdminController](), controllerClass)
	if err != nil {
		return nil, err
	}
	if !c.(AdminController).RequiresAuthentication() {
		return nil, errs.Newf("instantiate admin controller", controllerClass, errs.ErrContractViolation,
			"admin controllers must require authentication")
	}
	return c, nil
}
