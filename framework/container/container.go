package container

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrNotBound is returned by Make for an abstract with no binding.
	ErrNotBound = errors.New("container: no binding registered")
	// ErrTypeMismatch is returned by Resolve when the instance has another type.
	ErrTypeMismatch = errors.New("container: resolved instance has unexpected type")
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a value from the container.
type Factory func(c *Container) (any, error)

// Extender decorates a resolved instance.
type Extender func(instance any, c *Container) (any, error)

type binding struct {
	factory   Factory
	singleton bool
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container holds the application's boot-time services: configuration,
// logger, the class and instantiator registries, the dispatcher. Bindings
// are made while providers register; everything is read-only once the
// server starts.
type Container struct {
	mu sync.RWMutex

	bindings  map[string]*binding
	instances map[string]any
	aliases   map[string]string
	extenders map[string][]Extender
}

// New creates an empty container bound to itself as "container".
func New() *Container {
	c := &Container{
		bindings:  make(map[string]*binding),
		instances: make(map[string]any),
		aliases:   make(map[string]string),
		extenders: make(map[string][]Extender),
	}
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a factory run on every Make.
func (c *Container) Bind(abstract string, factory Factory) {
	c.bind(abstract, factory, false)
}

// Singleton registers a factory whose result is cached after the first Make.
//
//	c.Singleton("logger", func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return logging.New(cfg.App, cfg.Log), nil
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.bind(abstract, factory, true)
}

// Instance registers a pre-built value.
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.instances[key] = instance
}

func (c *Container) bind(abstract string, factory Factory, singleton bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.instances, key)
	c.bindings[key] = &binding{factory: factory, singleton: singleton}
}

// Alias registers an alternative name for an abstract.
func (c *Container) Alias(abstract, alias string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		return fmt.Errorf("container: [%s] is aliased to itself", abstract)
	}
	c.aliases[alias] = c.canonical(abstract)
	return nil
}

// Extend decorates the instance of an abstract each time it is built.
// Providers use it to add to a registry another provider binds.
//
//	c.Extend("reflection", func(instance any, c *container.Container) (any, error) {
//	    reg := instance.(*reflection.Registry)
//	    return reg, reg.Register("app.HomeController", app.NewHomeController)
//	})
func (c *Container) Extend(abstract string, fn Extender) error {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)
	inst, resolved := c.instances[key]
	c.mu.Unlock()

	// Instances already built are decorated right away.
	if resolved {
		extended, err := fn(inst, c)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.instances[key] = extended
		c.mu.Unlock()
	}
	return nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract.
func (c *Container) Make(abstract string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	inst, ok := c.instances[key]
	b, bound := c.bindings[key]
	c.mu.RUnlock()

	if ok {
		return inst, nil
	}
	if !bound {
		return nil, fmt.Errorf("%w: [%s]", ErrNotBound, abstract)
	}
	return c.build(key, b)
}

func (c *Container) build(key string, b *binding) (any, error) {
	instance, err := b.factory(c)
	if err != nil {
		return nil, fmt.Errorf("container: build [%s]: %w", key, err)
	}

	c.mu.RLock()
	exts := slices.Clone(c.extenders[key])
	c.mu.RUnlock()
	for _, ext := range exts {
		if instance, err = ext(instance, c); err != nil {
			return nil, fmt.Errorf("container: extend [%s]: %w", key, err)
		}
	}

	if b.singleton {
		c.mu.Lock()
		c.instances[key] = instance
		c.mu.Unlock()
	}
	return instance, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether an abstract has a binding or an instance.
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Resolved reports whether a singleton has been built or an instance set.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Bindings returns every registered abstract key, sorted.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// canonical resolves an alias to its canonical key. Callers hold mu.
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	logger, err := container.Resolve[*zap.Logger](c, "logger")
func Resolve[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: [%s] is %T, want %T", ErrTypeMismatch, abstract, instance, zero)
	}
	return typed, nil
}

// MustResolve is Resolve that panics. Use it only where a missing binding
// is a programming error, such as in main.
func MustResolve[T any](c *Container, abstract string) T {
	typed, err := Resolve[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return typed
}
