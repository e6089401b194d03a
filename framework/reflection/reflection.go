// Package reflection exposes constructor functions registered under a class
// name as inspectable, instantiable classes.
//
// Go cannot load a type from its name, so a class here is a constructor
// registered at boot:
//
//	reg := reflection.NewRegistry()
//	reg.MustRegister("app.HomeController", app.NewHomeController)
//
//	class, err := reg.ReflectionClass("app.HomeController")
//	param, err := reg.ConstructorParameterAt("app.HomeController", 0)
//	obj, err := class.NewInstance(deps, views)
package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/km-arc/go-mvc/framework/errs"
)

var (
	ErrNotConstructor      = errors.New("constructor must be a func returning a value, or a value and an error")
	ErrDuplicateClass      = errors.New("class already registered")
	ErrParameterOutOfRange = errors.New("constructor parameter index out of range")
	ErrArgumentMismatch    = errors.New("argument not assignable to constructor parameter")
	ErrNilInstance         = errors.New("constructor returned nil")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Service is what the controller instantiators need from reflection.
type Service interface {
	ReflectionClass(name string) (*Class, error)
	ConstructorParameterAt(name string, index int) (reflect.Type, error)
}

// Class is a registered constructor and the type it produces.
type Class struct {
	name   string
	fn     reflect.Value
	fnType reflect.Type
}

// Name returns the name the class was registered under.
func (c *Class) Name() string { return c.name }

// Type returns the type the constructor produces.
func (c *Class) Type() reflect.Type { return c.fnType.Out(0) }

// NumParameters returns the constructor arity.
func (c *Class) NumParameters() int { return c.fnType.NumIn() }

// Parameter returns the declared type of constructor parameter i.
func (c *Class) Parameter(i int) (reflect.Type, error) {
	if i < 0 || i >= c.fnType.NumIn() {
		return nil, fmt.Errorf("%w: %s has %d parameters, asked for %d",
			ErrParameterOutOfRange, c.name, c.fnType.NumIn(), i)
	}
	return c.fnType.In(i), nil
}

// ImplementsInterface reports whether the produced type implements iface.
// iface must be an interface type.
func (c *Class) ImplementsInterface(iface reflect.Type) bool {
	if iface == nil || iface.Kind() != reflect.Interface {
		return false
	}
	return c.Type().Implements(iface)
}

// Interfaces filters candidates down to those the produced type implements,
// keeping candidate order.
func (c *Class) Interfaces(candidates ...reflect.Type) []reflect.Type {
	var out []reflect.Type
	seen := make(map[reflect.Type]bool, len(candidates))
	for _, iface := range candidates {
		if seen[iface] || !c.ImplementsInterface(iface) {
			continue
		}
		seen[iface] = true
		out = append(out, iface)
	}
	return out
}

// NewInstance calls the constructor. Each argument must be assignable to
// the declared parameter type; nil stands for the parameter's zero value.
func (c *Class) NewInstance(args ...any) (any, error) {
	if len(args) != c.fnType.NumIn() {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d",
			ErrArgumentMismatch, c.name, c.fnType.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := c.fnType.In(i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			return nil, fmt.Errorf("%w: %s parameter %d wants %s, got %s",
				ErrArgumentMismatch, c.name, i, want, v.Type())
		}
		in[i] = v
	}

	out := c.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	if isNil(out[0]) {
		return nil, fmt.Errorf("%w: %s returned a nil %s", ErrNilInstance, c.name, c.fnType.Out(0))
	}
	return out[0].Interface(), nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Registry is a name → constructor table. Register at boot; lookups are
// safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Register adds a constructor under name.
func (r *Registry) Register(name string, constructor any) error {
	fn := reflect.ValueOf(constructor)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return fmt.Errorf("%w: %s", ErrNotConstructor, name)
	}
	ft := fn.Type()
	switch {
	case ft.IsVariadic():
		return fmt.Errorf("%w: %s is variadic", ErrNotConstructor, name)
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("%w: %s", ErrNotConstructor, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, name)
	}
	r.classes[name] = &Class{name: name, fn: fn, fnType: ft}
	return nil
}

// MustRegister is like Register but panics on error. Meant for boot code.
func (r *Registry) MustRegister(name string, constructor any) {
	if err := r.Register(name, constructor); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.classes[name]
	return ok
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.classes))
	for name := range r.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ReflectionClass returns the class registered under name.
func (r *Registry) ReflectionClass(name string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	if !ok {
		return nil, errs.New("reflect class", name, errs.ErrClassNotFound)
	}
	return c, nil
}

// ConstructorParameterAt returns the declared type of the constructor
// parameter at index.
func (r *Registry) ConstructorParameterAt(name string, index int) (reflect.Type, error) {
	c, err := r.ReflectionClass(name)
	if err != nil {
		return nil, err
	}
	return c.Parameter(index)
}

// InterfaceOf returns the reflect.Type of interface type T.
func InterfaceOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TypeName returns the package-qualified name of t, e.g.
// "github.com/km-arc/go-mvc/framework/controller.Controller".
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
