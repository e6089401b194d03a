// Package container provides the IoC container and service provider
// registry the application kernel boots with.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot(), after which everything resolves
//  4. Serve requests
//
// Per-request objects (controllers, view services) never go through the
// container; the controller instantiator builds those.
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("clock", func(c *container.Container) (any, error) { return time.Now, nil })
//
//	// Singleton: created once, reused
//	c.Singleton("logger", func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return logging.New(cfg.App, cfg.Log), nil
//	})
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("config", "configuration")
//
// # Resolving
//
//	raw, err := c.Make("logger")
//	logger, err := container.Resolve[*zap.Logger](c, "logger")
//
// # Extend / Decorate
//
//	c.Extend("controller.catalog", func(instance any, c *container.Container) (any, error) {
//	    catalog := instance.(*controller.InstantiatorCatalog)
//	    catalog.Register("admin", NewAdminInstantiator)
//	    return catalog, nil
//	})
package container
