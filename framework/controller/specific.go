package controller

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/errs"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/view"
)

// SpecificModuleControllerInstantiator picks the module instantiator for a
// controller from the interfaces it implements.
type SpecificModuleControllerInstantiator interface {
	// AvailableModuleInstantiators lists the registry in the order it is
	// tried. More specific interfaces come before the general ones they embed.
	AvailableModuleInstantiators() []Entry

	InstantiateSpecificModuleController(
		deps Dependencies,
		controllerClass string,
		interfaces []reflect.Type,
		refl reflection.Service,
		views view.Services,
	) (Controller, error)
}

// SpecificModuleInstantiator is the registry-driven
// SpecificModuleControllerInstantiator.
type SpecificModuleInstantiator struct {
	registry *Registry
	catalog  *InstantiatorCatalog
	logger   *zap.Logger
}

// NewSpecificModuleInstantiator creates the instantiator. A nil logger is
// replaced by a no-op one.
func NewSpecificModuleInstantiator(registry *Registry, catalog *InstantiatorCatalog, logger *zap.Logger) *SpecificModuleInstantiator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpecificModuleInstantiator{registry: registry, catalog: catalog, logger: logger}
}

func (s *SpecificModuleInstantiator) AvailableModuleInstantiators() []Entry {
	return s.registry.Entries()
}

// InstantiateSpecificModuleController delegates to the module instantiator
// of the first registry entry whose interface the controller implements.
func (s *SpecificModuleInstantiator) InstantiateSpecificModuleController(
	deps Dependencies,
	controllerClass string,
	interfaces []reflect.Type,
	refl reflection.Service,
	views view.Services,
) (Controller, error) {
	entry, ok := s.registry.Match(interfaces)
	if !ok {
		return nil, errs.New("instantiate specific module controller", controllerClass, errs.ErrUnhandledController)
	}

	mi, err := s.catalog.Instantiate(entry.Instantiator)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("module instantiator selected",
		zap.String("controller", controllerClass),
		zap.String("interface", reflection.TypeName(entry.Interface)),
		zap.String("instantiator", entry.Instantiator),
	)

	return mi.InstantiateModuleController(deps, controllerClass, refl, views)
}
