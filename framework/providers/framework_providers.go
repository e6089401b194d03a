package providers

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/errs"
	"github.com/km-arc/go-mvc/framework/logging"
	"github.com/km-arc/go-mvc/framework/module/api"
	"github.com/km-arc/go-mvc/framework/module/web"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/route"
	"github.com/km-arc/go-mvc/framework/routing"
	"github.com/km-arc/go-mvc/framework/view"
)

// Container keys bound by the framework providers.
const (
	ConfigKey       = "config"
	LoggerKey       = "logger"
	FactoriesKey    = "view.factories"
	RenderersKey    = "view.renderers"
	ReflectionKey   = "reflection"
	CatalogKey      = "controller.catalog"
	RegistryKey     = "controller.registry"
	DependenciesKey = "controller.dependencies"
	InstantiatorKey = "controller.instantiator"
	DispatcherKey   = "dispatcher"
	RouterKey       = "router"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it as "config" (alias "configuration").
//
// Bound abstracts:
//   - "config"  → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
	// Config, when set, is bound as is and EnvFiles are ignored.
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	if p.Config != nil {
		app.Instance(ConfigKey, p.Config)
	} else {
		envFiles := p.EnvFiles
		app.Singleton(ConfigKey, func(c *container.Container) (any, error) {
			return config.Load(envFiles...), nil
		})
	}
	return app.Alias(ConfigKey, "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the application logger from the App and
// Log config sections.
//
// Bound abstracts:
//   - "logger"  → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	// Logger, when set, replaces the configured one (tests use an observer).
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	if p.Logger != nil {
		app.Instance(LoggerKey, p.Logger)
		return nil
	}
	app.Singleton(LoggerKey, func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, ConfigKey)
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.App, cfg.Log), nil
	})
	return nil
}

// ── ViewServiceProvider ───────────────────────────────────────────────────────

// ViewServiceProvider registers the view container factory and renderer
// instantiators. Both know the stock identifiers ("default"; "html",
// "json"); applications add their own with container.Extend.
//
// Bound abstracts:
//   - "view.factories"  → *view.FactoryInstantiator
//   - "view.renderers"  → *view.RendererInstantiator
type ViewServiceProvider struct {
	container.BaseProvider
	// Funcs are made available to every HTML template.
	Funcs template.FuncMap
}

func (p *ViewServiceProvider) Register(app *container.Container) error {
	funcs := p.Funcs
	app.Singleton(FactoriesKey, func(c *container.Container) (any, error) {
		return view.NewFactoryInstantiator(), nil
	})
	app.Singleton(RenderersKey, func(c *container.Container) (any, error) {
		ri := view.NewRendererInstantiator()
		if funcs != nil {
			ri.Register(view.RendererHTML, func() view.Renderer { return view.NewHTMLRenderer(funcs) })
		}
		return ri, nil
	})
	return nil
}

// ── ControllerServiceProvider ─────────────────────────────────────────────────

// ControllerServiceProvider wires the controller resolution chain.
//
// Bound abstracts:
//   - "reflection"               → *reflection.Registry (empty; apps extend it)
//   - "controller.catalog"       → *controller.InstantiatorCatalog (default, api, web)
//   - "controller.registry"      → *controller.Registry
//   - "controller.dependencies"  → controller.Dependencies
//   - "controller.instantiator"  → *controller.Instantiator
type ControllerServiceProvider struct {
	container.BaseProvider
	// Entries is the interface registry. Empty means DefaultEntries.
	Entries []controller.Entry
	// Local is passed to controllers through Dependencies.Local.
	Local any
}

// DefaultEntries routes api and web controllers to their modules and
// everything else to the default module instantiator.
func DefaultEntries() []controller.Entry {
	return []controller.Entry{
		api.Entry(10),
		web.Entry(20),
		controller.For[controller.Controller](controller.DefaultInstantiatorName, 100),
	}
}

func (p *ControllerServiceProvider) Register(app *container.Container) error {
	entries := p.Entries
	if len(entries) == 0 {
		entries = DefaultEntries()
	}
	local := p.Local

	app.Singleton(ReflectionKey, func(c *container.Container) (any, error) {
		return reflection.NewRegistry(), nil
	})
	app.Singleton(CatalogKey, func(c *container.Container) (any, error) {
		catalog := controller.NewInstantiatorCatalog()
		catalog.Register(api.InstantiatorName, api.NewInstantiator)
		catalog.Register(web.InstantiatorName, web.NewInstantiator)
		return catalog, nil
	})
	app.Singleton(RegistryKey, func(c *container.Container) (any, error) {
		return controller.NewRegistry(entries...)
	})
	app.Singleton(DependenciesKey, func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, ConfigKey)
		if err != nil {
			return nil, err
		}
		logger, err := container.Resolve[*zap.Logger](c, LoggerKey)
		if err != nil {
			return nil, err
		}
		return controller.NewDependencyContainer(cfg, logger, local), nil
	})
	app.Singleton(InstantiatorKey, func(c *container.Container) (any, error) {
		return newInstantiator(c)
	})
	return nil
}

// Boot checks that every registry entry names a known module instantiator,
// so a typo fails at startup instead of on the first request.
func (p *ControllerServiceProvider) Boot(app *container.Container) error {
	registry, err := container.Resolve[*controller.Registry](app, RegistryKey)
	if err != nil {
		return err
	}
	catalog, err := container.Resolve[*controller.InstantiatorCatalog](app, CatalogKey)
	if err != nil {
		return err
	}
	for _, e := range registry.Entries() {
		if !catalog.Has(e.Instantiator) {
			return fmt.Errorf("registry entry %s: module instantiator %q: %w",
				reflection.TypeName(e.Interface), e.Instantiator, errs.ErrInstantiatorNotFound)
		}
	}
	return nil
}

func newInstantiator(c *container.Container) (*controller.Instantiator, error) {
	deps, err := container.Resolve[controller.Dependencies](c, DependenciesKey)
	if err != nil {
		return nil, err
	}
	refl, err := container.Resolve[*reflection.Registry](c, ReflectionKey)
	if err != nil {
		return nil, err
	}
	registry, err := container.Resolve[*controller.Registry](c, RegistryKey)
	if err != nil {
		return nil, err
	}
	catalog, err := container.Resolve[*controller.InstantiatorCatalog](c, CatalogKey)
	if err != nil {
		return nil, err
	}
	factories, err := container.Resolve[*view.FactoryInstantiator](c, FactoriesKey)
	if err != nil {
		return nil, err
	}
	renderers, err := container.Resolve[*view.RendererInstantiator](c, RenderersKey)
	if err != nil {
		return nil, err
	}
	specific := controller.NewSpecificModuleInstantiator(registry, catalog, deps.Logger())
	return controller.NewInstantiator(deps, refl, specific, factories, renderers), nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// PublicPrefix is the URL prefix static files are served under.
const PublicPrefix = "/public"

// RoutingServiceProvider registers the dispatcher and the router, and at
// boot loads the route table named by ROUTES_FILE (relative paths are
// resolved against PROJECT_PATH). A missing file leaves the router empty.
// When PUBLIC_DIR exists its files are served under PublicPrefix.
//
// Bound abstracts:
//   - "dispatcher"  → *routing.Dispatcher
//   - "router"      → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
	// Entries are registered in addition to the route table file.
	Entries []route.Entry
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	app.Singleton(DispatcherKey, func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, ConfigKey)
		if err != nil {
			return nil, err
		}
		logger, err := container.Resolve[*zap.Logger](c, LoggerKey)
		if err != nil {
			return nil, err
		}
		inst, err := container.Resolve[*controller.Instantiator](c, InstantiatorKey)
		if err != nil {
			return nil, err
		}
		return routing.NewDispatcher(inst, logger, cfg.App.Debug), nil
	})
	app.Singleton(RouterKey, func(c *container.Container) (any, error) {
		d, err := container.Resolve[*routing.Dispatcher](c, DispatcherKey)
		if err != nil {
			return nil, err
		}
		return routing.New(d), nil
	})
	return nil
}

func (p *RoutingServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, ConfigKey)
	if err != nil {
		return err
	}
	router, err := container.Resolve[*routing.Router](app, RouterKey)
	if err != nil {
		return err
	}

	entries, err := loadRouteTable(cfg.View)
	if err != nil {
		return err
	}
	router.Register(entries...)
	router.Register(p.Entries...)

	if dir, ok := publicDir(cfg.View); ok {
		router.Static(PublicPrefix, dir)
	}
	return nil
}

// publicDir resolves PUBLIC_DIR against PROJECT_PATH and reports whether
// it is an existing directory.
func publicDir(cfg config.ViewConfig) (string, bool) {
	if cfg.PublicDir == "" {
		return "", false
	}
	dir := cfg.PublicDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectPath, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

func loadRouteTable(cfg config.ViewConfig) ([]route.Entry, error) {
	if cfg.RoutesFile == "" {
		return nil, nil
	}
	path := cfg.RoutesFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectPath, path)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return route.LoadTableFile(path)
}

// Framework returns the framework providers in boot order.
func Framework(envFiles ...string) []container.ServiceProvider {
	return []container.ServiceProvider{
		&ConfigServiceProvider{EnvFiles: envFiles},
		&LoggingServiceProvider{},
		&ViewServiceProvider{},
		&ControllerServiceProvider{},
		&RoutingServiceProvider{},
	}
}
