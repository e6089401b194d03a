package controller

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/km-arc/go-mvc/framework/errs"
	"github.com/km-arc/go-mvc/framework/reflection"
)

// ErrAmbiguousRegistry is returned by NewRegistry when entries cannot be
// ordered deterministically.
var ErrAmbiguousRegistry = errors.New("ambiguous module instantiator registry")

// Entry maps a controller interface to the module instantiator that builds
// controllers implementing it. Lower Rank is tried first.
type Entry struct {
	Interface    reflect.Type
	Instantiator string
	Rank         int
}

// For builds an Entry for interface type T.
//
//	controller.For[api.Controller](api.InstantiatorName, 20)
func For[T any](instantiator string, rank int) Entry {
	return Entry{Interface: reflect.TypeOf((*T)(nil)).Elem(), Instantiator: instantiator, Rank: rank}
}

// Registry is the ordered interface → module instantiator table.
//
// NewRegistry rejects tables whose order is not machine-checkable: ranks and
// interfaces must be unique, and an interface embedding another one (a
// method-set superset) must be ranked before it.
type Registry struct {
	entries []Entry
}

// NewRegistry validates and orders entries.
func NewRegistry(entries ...Entry) (*Registry, error) {
	sorted := slices.Clone(entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	ranks := make(map[int]Entry, len(sorted))
	ifaces := make(map[reflect.Type]bool, len(sorted))
	for _, e := range sorted {
		if e.Interface == nil || e.Interface.Kind() != reflect.Interface {
			return nil, errs.Newf("build registry", e.Instantiator, errs.ErrInterfaceNotFound,
				"%s is not an interface type", reflection.TypeName(e.Interface))
		}
		if e.Instantiator == "" {
			return nil, fmt.Errorf("%w: %s has no instantiator", ErrAmbiguousRegistry, reflection.TypeName(e.Interface))
		}
		if prev, ok := ranks[e.Rank]; ok {
			return nil, fmt.Errorf("%w: %s and %s share rank %d", ErrAmbiguousRegistry,
				reflection.TypeName(prev.Interface), reflection.TypeName(e.Interface), e.Rank)
		}
		if ifaces[e.Interface] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrAmbiguousRegistry, reflection.TypeName(e.Interface))
		}
		ranks[e.Rank] = e
		ifaces[e.Interface] = true
	}

	for i, general := range sorted {
		for _, specific := range sorted[i+1:] {
			if specific.Interface.Implements(general.Interface) {
				return nil, fmt.Errorf("%w: %s (rank %d) embeds %s (rank %d) and must be ranked before it",
					ErrAmbiguousRegistry,
					reflection.TypeName(specific.Interface), specific.Rank,
					reflection.TypeName(general.Interface), general.Rank)
			}
		}
	}

	return &Registry{entries: sorted}, nil
}

// MustRegistry is like NewRegistry but panics on error. Meant for boot code.
func MustRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Entries returns the entries in rank order.
func (r *Registry) Entries() []Entry { return slices.Clone(r.entries) }

// Match returns the first entry whose interface is in interfaces.
func (r *Registry) Match(interfaces []reflect.Type) (Entry, bool) {
	for _, e := range r.entries {
		if slices.Contains(interfaces, e.Interface) {
			return e, true
		}
	}
	return Entry{}, false
}

// InstantiatorCatalog maps module instantiator names to factories.
// Populate at boot; lookups are safe for concurrent use.
type InstantiatorCatalog struct {
	mu       sync.RWMutex
	builders map[string]func() ModuleInstantiator
}

// NewInstantiatorCatalog returns a catalog that knows DefaultInstantiatorName.
func NewInstantiatorCatalog() *InstantiatorCatalog {
	c := &InstantiatorCatalog{builders: make(map[string]func() ModuleInstantiator)}
	c.Register(DefaultInstantiatorName, func() ModuleInstantiator { return NewDefaultModuleInstantiator() })
	return c
}

// Register adds or replaces a module instantiator factory.
func (c *InstantiatorCatalog) Register(name string, build func() ModuleInstantiator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = build
}

// Has reports whether name is registered.
func (c *InstantiatorCatalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.builders[name]
	return ok
}

// Instantiate builds the module instantiator registered under name.
func (c *InstantiatorCatalog) Instantiate(name string) (ModuleInstantiator, error) {
	c.mu.RLock()
	build, ok := c.builders[name]
	c.mu.RUnlock()
	if !ok {
		return nil, errs.New("instantiate module instantiator", name, errs.ErrInstantiatorNotFound)
	}
	mi := build()
	if mi == nil {
		return nil, errs.New("instantiate module instantiator", name, errs.ErrContractViolation)
	}
	return mi, nil
}
