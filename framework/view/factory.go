package view

import (
	"sync"

	"github.com/km-arc/go-mvc/framework/errs"
)

// DefaultFactory is the identifier of the stock container factory.
const DefaultFactory = "default"

// ContainerFactory builds view containers for a route.
type ContainerFactory interface {
	CreateViewContainerFromView(view any, templateName string) Container
}

// BasicContainerFactory wraps views in plain containers.
type BasicContainerFactory struct{}

func (BasicContainerFactory) CreateViewContainerFromView(view any, templateName string) Container {
	return NewContainer(view, templateName)
}

// FactoryInstantiator builds a fresh container factory per request from the
// identifier named in the route configuration.
type FactoryInstantiator struct {
	mu       sync.RWMutex
	builders map[string]func() ContainerFactory
}

// NewFactoryInstantiator returns an instantiator that knows DefaultFactory.
func NewFactoryInstantiator() *FactoryInstantiator {
	fi := &FactoryInstantiator{builders: make(map[string]func() ContainerFactory)}
	fi.Register(DefaultFactory, func() ContainerFactory { return BasicContainerFactory{} })
	return fi
}

// Register adds or replaces a factory builder.
func (fi *FactoryInstantiator) Register(id string, build func() ContainerFactory) {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	fi.builders[id] = build
}

// InstantiateViewContainerFactory returns a new factory for id.
func (fi *FactoryInstantiator) InstantiateViewContainerFactory(id string) (ContainerFactory, error) {
	fi.mu.RLock()
	build, ok := fi.builders[id]
	fi.mu.RUnlock()
	if !ok {
		return nil, errs.New("instantiate view container factory", id, errs.ErrClassNotFound)
	}
	f := build()
	if f == nil {
		return nil, errs.New("instantiate view container factory", id, errs.ErrContractViolation)
	}
	return f, nil
}

// Services is the per-request view bundle handed to controllers.
type Services interface {
	ViewContainerFactory() ContainerFactory
	ViewRenderer() Renderer
}

// ServicesContainer pairs a container factory and a renderer.
type ServicesContainer struct {
	factory  ContainerFactory
	renderer Renderer
}

func NewServicesContainer(factory ContainerFactory, renderer Renderer) *ServicesContainer {
	return &ServicesContainer{factory: factory, renderer: renderer}
}

func (s *ServicesContainer) ViewContainerFactory() ContainerFactory { return s.factory }
func (s *ServicesContainer) ViewRenderer() Renderer                 { return s.renderer }
