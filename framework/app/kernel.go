package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/providers"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/routing"
)

// Application is the top-level application container. It embeds the IoC
// Container and the ProviderRegistry, so user code calls app.Register()
// and app.Make() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates the application and registers the framework providers. The
// returned application is not booted.
func New(envFiles ...string) (*Application, error) {
	return WithProviders(providers.Framework(envFiles...)...)
}

// WithProviders creates an application from an explicit provider list,
// registered in order.
func WithProviders(list ...container.ServiceProvider) (*Application, error) {
	c := container.New()
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
	}
	for _, p := range list {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() (*config.Config, error) {
	return container.Resolve[*config.Config](a.Container, providers.ConfigKey)
}

// Logger resolves the application logger.
func (a *Application) Logger() (*zap.Logger, error) {
	return container.Resolve[*zap.Logger](a.Container, providers.LoggerKey)
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, providers.RouterKey)
}

// Classes resolves the controller class registry.
func (a *Application) Classes() (*reflection.Registry, error) {
	return container.Resolve[*reflection.Registry](a.Container, providers.ReflectionKey)
}

// Instantiator resolves the controller instantiator.
func (a *Application) Instantiator() (*controller.Instantiator, error) {
	return container.Resolve[*controller.Instantiator](a.Container, providers.InstantiatorKey)
}

// Handler boots the application if needed and returns the router.
func (a *Application) Handler() (http.Handler, error) {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return nil, err
		}
	}
	return a.Router()
}

// Run boots the application and serves HTTP on APP_PORT until ctx is
// cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	cfg, err := a.Config()
	if err != nil {
		return err
	}
	logger, err := a.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("base_url", cfg.App.BaseURL),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("server stopping")
	return srv.Shutdown(shutdownCtx)
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string {
	cfg, err := a.Config()
	if err != nil {
		return ""
	}
	return cfg.App.Env
}

func (a *Application) IsLocal() bool      { return a.Environment() == "local" }
func (a *Application) IsProduction() bool { return a.Environment() == "production" }
func (a *Application) IsTesting() bool    { return a.Environment() == "testing" }
