package controller

import (
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/errs"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/route"
	"github.com/km-arc/go-mvc/framework/view"
)

// Instantiator is the top of the resolution chain: it turns a route
// configuration and a renderer identifier into a controller.
type Instantiator struct {
	deps       Dependencies
	reflection reflection.Service
	specific   SpecificModuleControllerInstantiator
	factories  ViewContainerFactoryInstantiator
	renderers  ViewRendererInstantiator
	logger     *zap.Logger
}

func NewInstantiator(
	deps Dependencies,
	refl reflection.Service,
	specific SpecificModuleControllerInstantiator,
	factories ViewContainerFactoryInstantiator,
	renderers ViewRendererInstantiator,
) *Instantiator {
	return &Instantiator{
		deps:       deps,
		reflection: refl,
		specific:   specific,
		factories:  factories,
		renderers:  renderers,
		logger:     deps.Logger(),
	}
}

// InstantiateController builds the controller a route names, with a fresh
// view container factory and renderer. Nothing is cached across calls.
func (i *Instantiator) InstantiateController(cfg route.Configuration, rendererID string) (Controller, error) {
	const op = "instantiate controller"

	cv, ok := route.AsControllerView(cfg)
	if !ok {
		return nil, errs.Newf(op, "", errs.ErrInvalidRouteConfiguration, "got %T", cfg)
	}

	class, err := i.reflection.ReflectionClass(cv.ControllerClass)
	if err != nil {
		return nil, err
	}

	interfaces := class.Interfaces(i.candidateInterfaces()...)
	base := reflection.InterfaceOf[Controller]()
	if !slices.Contains(interfaces, base) {
		return nil, errs.Newf(op, cv.ControllerClass, errs.ErrContractViolation,
			"%s does not implement %s", reflection.TypeName(class.Type()), reflection.TypeName(base))
	}

	views, err := i.createViewServicesContainer(cv, rendererID)
	if err != nil {
		return nil, err
	}

	if i.logger.Core().Enabled(zap.DebugLevel) {
		names := make([]string, len(interfaces))
		for n, iface := range interfaces {
			names[n] = reflection.TypeName(iface)
		}
		i.logger.Debug("instantiating controller",
			zap.String("controller", cv.ControllerClass),
			zap.Strings("interfaces", names),
			zap.String("view_container_factory", cv.ViewContainerFactoryClass),
			zap.String("renderer", rendererID),
		)
	}

	return i.specific.InstantiateSpecificModuleController(i.deps, cv.ControllerClass, interfaces, i.reflection, views)
}

// candidateInterfaces is the closed set of interfaces a controller can be
// resolved by: the base Controller plus every registry interface.
func (i *Instantiator) candidateInterfaces() []reflect.Type {
	entries := i.specific.AvailableModuleInstantiators()
	out := make([]reflect.Type, 0, len(entries)+1)
	out = append(out, reflection.InterfaceOf[Controller]())
	for _, e := range entries {
		out = append(out, e.Interface)
	}
	return out
}

func (i *Instantiator) createViewServicesContainer(cv route.ControllerView, rendererID string) (*view.ServicesContainer, error) {
	const op = "create view services"

	factory, err := i.factories.InstantiateViewContainerFactory(cv.ViewContainerFactoryClass)
	if err != nil {
		return nil, errs.New(op, cv.ControllerClass, fmt.Errorf("%w: %w", errs.ErrInvalidRouteConfiguration, err))
	}
	renderer, err := i.renderers.InstantiateViewRenderer(rendererID)
	if err != nil {
		return nil, errs.New(op, cv.ControllerClass, fmt.Errorf("%w: %w", errs.ErrInvalidRouteConfiguration, err))
	}
	return view.NewServicesContainer(factory, renderer), nil
}
