package reflection_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/errs"
	"github.com/km-arc/go-mvc/framework/reflection"
)

type greeter interface{ Greet() string }

type namer interface{ Name() string }

type english struct{ name string }

func (e *english) Greet() string { return "hello " + e.name }

func newEnglish(name string) *english { return &english{name: name} }

func newFailing(name string) (*english, error) {
	if name == "" {
		return nil, errors.New("name required")
	}
	return &english{name: name}, nil
}

func TestRegister_RejectsNonConstructors(t *testing.T) {
	reg := reflection.NewRegistry()

	assert.ErrorIs(t, reg.Register("nil", nil), reflection.ErrNotConstructor)
	assert.ErrorIs(t, reg.Register("value", 42), reflection.ErrNotConstructor)
	assert.ErrorIs(t, reg.Register("void", func() {}), reflection.ErrNotConstructor)
	assert.ErrorIs(t, reg.Register("variadic", func(...int) int { return 0 }), reflection.ErrNotConstructor)
	assert.ErrorIs(t, reg.Register("two", func() (int, int) { return 0, 0 }), reflection.ErrNotConstructor)
}

func TestRegister_Duplicate(t *testing.T) {
	reg := reflection.NewRegistry()
	require.NoError(t, reg.Register("english", newEnglish))

	assert.ErrorIs(t, reg.Register("english", newEnglish), reflection.ErrDuplicateClass)
	assert.True(t, reg.Has("english"))
	assert.Equal(t, []string{"english"}, reg.Names())
}

func TestReflectionClass_NotFound(t *testing.T) {
	reg := reflection.NewRegistry()

	_, err := reg.ReflectionClass("missing")
	assert.ErrorIs(t, err, errs.ErrClassNotFound)

	_, err = reg.ConstructorParameterAt("missing", 0)
	assert.ErrorIs(t, err, errs.ErrClassNotFound)
}

func TestClass_Introspection(t *testing.T) {
	reg := reflection.NewRegistry()
	reg.MustRegister("english", newEnglish)

	class, err := reg.ReflectionClass("english")
	require.NoError(t, err)

	assert.Equal(t, "english", class.Name())
	assert.Equal(t, reflect.TypeOf((**english)(nil)).Elem(), class.Type())
	assert.Equal(t, 1, class.NumParameters())

	param, err := reg.ConstructorParameterAt("english", 0)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf((*string)(nil)).Elem(), param)

	_, err = class.Parameter(1)
	assert.ErrorIs(t, err, reflection.ErrParameterOutOfRange)

	assert.True(t, class.ImplementsInterface(reflection.InterfaceOf[greeter]()))
	assert.False(t, class.ImplementsInterface(reflection.InterfaceOf[namer]()))
	assert.False(t, class.ImplementsInterface(reflect.TypeOf((*string)(nil)).Elem()), "non-interface types never match")
	assert.False(t, class.ImplementsInterface(nil))
}

func TestClass_Interfaces_KeepsCandidateOrder(t *testing.T) {
	reg := reflection.NewRegistry()
	reg.MustRegister("english", newEnglish)
	class, _ := reg.ReflectionClass("english")

	stringer := reflection.InterfaceOf[fmt.Stringer]()
	g := reflection.InterfaceOf[greeter]()
	got := class.Interfaces(stringer, g, reflection.InterfaceOf[namer](), g)

	assert.Equal(t, []reflect.Type{g}, got)
}

func TestClass_NewInstance(t *testing.T) {
	reg := reflection.NewRegistry()
	reg.MustRegister("english", newEnglish)
	reg.MustRegister("failing", newFailing)

	class, _ := reg.ReflectionClass("english")
	obj, err := class.NewInstance("ada")
	require.NoError(t, err)
	assert.Equal(t, "hello ada", obj.(greeter).Greet())

	_, err = class.NewInstance(7)
	assert.ErrorIs(t, err, reflection.ErrArgumentMismatch)

	_, err = class.NewInstance()
	assert.ErrorIs(t, err, reflection.ErrArgumentMismatch)

	failing, _ := reg.ReflectionClass("failing")
	_, err = failing.NewInstance(nil)
	assert.EqualError(t, err, "name required")
}

func TestClass_NewInstanceRejectsNil(t *testing.T) {
	reg := reflection.NewRegistry()
	reg.MustRegister("nil-pointer", func(string) *english { return nil })
	reg.MustRegister("nil-interface", func(string) greeter { return nil })
	reg.MustRegister("zero-value", func(string) int { return 0 })

	for _, name := range []string{"nil-pointer", "nil-interface"} {
		class, _ := reg.ReflectionClass(name)
		obj, err := class.NewInstance("ada")
		assert.ErrorIs(t, err, reflection.ErrNilInstance, name)
		assert.Nil(t, obj, name)
	}

	class, _ := reg.ReflectionClass("zero-value")
	obj, err := class.NewInstance("ada")
	require.NoError(t, err)
	assert.Equal(t, 0, obj)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "github.com/km-arc/go-mvc/framework/reflection_test.english", reflection.TypeName(reflect.TypeOf((**english)(nil)).Elem()))
	assert.Equal(t, "fmt.Stringer", reflection.TypeName(reflection.InterfaceOf[fmt.Stringer]()))
	assert.Equal(t, "int", reflection.TypeName(reflect.TypeOf((*int)(nil)).Elem()))
	assert.Equal(t, "<nil>", reflection.TypeName(nil))
}
