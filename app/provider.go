package app

import (
	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/module/api"
	"github.com/km-arc/go-mvc/framework/module/web"
	"github.com/km-arc/go-mvc/framework/providers"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/route"
	"github.com/km-arc/go-mvc/framework/routing"
	"github.com/km-arc/go-mvc/framework/view"
)

// AdminPrefix is where the admin area is mounted.
const AdminPrefix = "/admin"

// Controller class names, as used in routes.yaml.
const (
	HomeControllerClass      = "app.HomeController"
	UserControllerClass      = "app.UserController"
	DashboardControllerClass = "app.DashboardController"
)

// Entries is the application's interface registry: admin, api, web, then
// the default module for any other controller.
func Entries() []controller.Entry {
	return []controller.Entry{
		controller.For[AdminController](AdminInstantiatorName, 5),
		api.Entry(10),
		web.Entry(20),
		controller.For[controller.Controller](controller.DefaultInstantiatorName, 100),
	}
}

// ServiceProvider registers the application's controller classes and the
// admin module instantiator, and mounts the admin area at boot.
type ServiceProvider struct{}

func (p *ServiceProvider) Register(app *container.Container) error {
	if err := app.Extend(providers.ReflectionKey, func(instance any, _ *container.Container) (any, error) {
		reg := instance.(*reflection.Registry)
		return reg, RegisterClasses(reg)
	}); err != nil {
		return err
	}
	return app.Extend(providers.CatalogKey, func(instance any, _ *container.Container) (any, error) {
		catalog := instance.(*controller.InstantiatorCatalog)
		catalog.Register(AdminInstantiatorName, NewAdminInstantiator)
		return catalog, nil
	})
}

// Boot mounts the admin area under AdminPrefix. Admin pages are never
// cached.
func (p *ServiceProvider) Boot(app *container.Container) error {
	router, err := container.Resolve[*routing.Router](app, providers.RouterKey)
	if err != nil {
		return err
	}
	router.Prefix(AdminPrefix, func(r *routing.Router) {
		r.Middleware(middleware.NoCache)
		r.Get("/", route.ControllerView{
			ControllerClass:           DashboardControllerClass,
			ViewContainerFactoryClass: view.DefaultFactory,
		})
	})
	return nil
}

// RegisterClasses adds the application's controllers to reg.
func RegisterClasses(reg *reflection.Registry) error {
	for name, ctor := range map[string]any{
		HomeControllerClass:      NewHomeController,
		UserControllerClass:      NewUserController,
		DashboardControllerClass: NewDashboardController,
	} {
		if err := reg.Register(name, ctor); err != nil {
			return err
		}
	}
	return nil
}

// Providers returns the framework providers configured for this
// application, followed by its own.
func Providers(users Users, envFiles ...string) []container.ServiceProvider {
	return []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: envFiles},
		&providers.LoggingServiceProvider{},
		&providers.ViewServiceProvider{},
		&providers.ControllerServiceProvider{Entries: Entries(), Local: users},
		&providers.RoutingServiceProvider{},
		&ServiceProvider{},
	}
}
