package controller

import (
	"errors"
	"reflect"

	"github.com/km-arc/go-mvc/framework/errs"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/view"
)

// DefaultInstantiatorName is the catalog name of DefaultModuleInstantiator.
const DefaultInstantiatorName = "default"

// ModuleInstantiator builds controllers for one framework module.
type ModuleInstantiator interface {
	InstantiateModuleController(
		deps Dependencies,
		controllerClass string,
		refl reflection.Service,
		views view.Services,
	) (Controller, error)
}

// ControllerConstructorParameters is the constructor signature every
// controller class must declare, in positional order:
//
//	func NewFooController(deps controller.Dependencies, views view.Services) *FooController
func ControllerConstructorParameters() []reflect.Type {
	return []reflect.Type{
		reflection.InterfaceOf[Dependencies](),
		reflection.InterfaceOf[view.Services](),
	}
}

// BaseModuleInstantiator holds the default construction algorithm. Module
// instantiators embed it, call Instantiate and then check their own module
// interface on the result.
type BaseModuleInstantiator struct {
	// Parameters overrides ControllerConstructorParameters when set.
	Parameters []reflect.Type
}

// ConstructorParameters returns the expected constructor signature.
func (b BaseModuleInstantiator) ConstructorParameters() []reflect.Type {
	if b.Parameters != nil {
		return b.Parameters
	}
	return ControllerConstructorParameters()
}

// Instantiate validates the controller class against the expected
// constructor signature and builds it with (deps, views).
func (b BaseModuleInstantiator) Instantiate(
	deps Dependencies,
	controllerClass string,
	refl reflection.Service,
	views view.Services,
) (Controller, error) {
	const op = "instantiate module controller"

	class, err := refl.ReflectionClass(controllerClass)
	if err != nil {
		return nil, err
	}

	if err := b.validateConstructorParameters(controllerClass, class, refl); err != nil {
		return nil, err
	}

	if !class.ImplementsInterface(reflection.InterfaceOf[Controller]()) {
		return nil, errs.Newf(op, controllerClass, errs.ErrContractViolation,
			"%s does not implement %s", reflection.TypeName(class.Type()),
			reflection.TypeName(reflection.InterfaceOf[Controller]()))
	}

	obj, err := class.NewInstance(deps, views)
	if err != nil {
		if errors.Is(err, reflection.ErrArgumentMismatch) || errors.Is(err, reflection.ErrNilInstance) {
			return nil, errs.Newf(op, controllerClass, errs.ErrContractViolation, "%v", err)
		}
		return nil, errs.New(op, controllerClass, err)
	}

	c, ok := obj.(Controller)
	if !ok || c == nil {
		return nil, errs.Newf(op, controllerClass, errs.ErrContractViolation,
			"constructor returned %T", obj)
	}
	return c, nil
}

func (b BaseModuleInstantiator) validateConstructorParameters(
	controllerClass string,
	class *reflection.Class,
	refl reflection.Service,
) error {
	const op = "validate controller constructor"

	expected := b.ConstructorParameters()
	if class.NumParameters() != len(expected) {
		return errs.Newf(op, controllerClass, errs.ErrContractViolation,
			"constructor takes %d parameters, want %d", class.NumParameters(), len(expected))
	}

	for index, iface := range expected {
		if iface == nil || iface.Kind() != reflect.Interface {
			return errs.Newf(op, controllerClass, errs.ErrInterfaceNotFound,
				"expected parameter %d type %s is not an interface", index, reflection.TypeName(iface))
		}
		param, err := refl.ConstructorParameterAt(controllerClass, index)
		if err != nil {
			return errs.Newf(op, controllerClass, errs.ErrContractViolation, "%v", err)
		}
		// The declared type must satisfy the expected interface, and the
		// value we pass (typed as the expected interface) must fit it.
		if !param.Implements(iface) || !iface.AssignableTo(param) {
			return errs.Newf(op, controllerClass, errs.ErrContractViolation,
				"parameter %d is %s, want %s", index, reflection.TypeName(param), reflection.TypeName(iface))
		}
	}
	return nil
}

// DefaultModuleInstantiator builds any Controller with the base algorithm
// and no module-specific check.
type DefaultModuleInstantiator struct {
	BaseModuleInstantiator
}

func NewDefaultModuleInstantiator() *DefaultModuleInstantiator {
	return &DefaultModuleInstantiator{}
}

func (d *DefaultModuleInstantiator) InstantiateModuleController(
	deps Dependencies,
	controllerClass string,
	refl reflection.Service,
	views view.Services,
) (Controller, error) {
	return d.Instantiate(deps, controllerClass, refl, views)
}

// RequireInterface checks that c implements iface. Module instantiators
// use it after Instantiate.
func RequireInterface(c Controller, iface reflect.Type, controllerClass string) (Controller, error) {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil, errs.Newf("verify module controller", controllerClass, errs.ErrInterfaceNotFound,
			"%s is not an interface type", reflection.TypeName(iface))
	}
	if !reflect.TypeOf(c).Implements(iface) {
		return nil, errs.Newf("verify module controller", controllerClass, errs.ErrContractViolation,
			"%T does not implement %s", c, reflection.TypeName(iface))
	}
	return c, nil
}
