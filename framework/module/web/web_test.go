package web_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/controller"
	"github.com/km-arc/go-mvc/framework/errs"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/module/web"
	"github.com/km-arc/go-mvc/framework/reflection"
	"github.com/km-arc/go-mvc/framework/view"
)

type pageController struct {
	*web.BaseController
}

func newPageController(deps controller.Dependencies, views view.Services) *pageController {
	return &pageController{web.NewBaseController(deps, views, controller.TemplateGroup("site"))}
}

func (c *pageController) Handle(r *http.Request) (*gohttp.Response, error) {
	return c.CreateResponse(r, c.Views.ViewContainerFactory().CreateViewContainerFromView("body", "page"))
}

type apiOnlyController struct{}

func newAPIOnlyController(controller.Dependencies, view.Services) *apiOnlyController {
	return &apiOnlyController{}
}

func (apiOnlyController) Handle(*http.Request) (*gohttp.Response, error) { return nil, nil }
func (apiOnlyController) APIVersion() string                             { return "v1" }

type layoutRenderer struct{ seen []view.Container }

func (r *layoutRenderer) ContentType() string { return view.ContentTypeHTML }

func (r *layoutRenderer) Render(c view.Container) ([]byte, error) {
	r.seen = append(r.seen, c)
	if mv, ok := c.View().(view.MainView); ok {
		return []byte(c.Template() + "(" + mv.Data + ")"), nil
	}
	return []byte(c.Template()), nil
}

func newDeps() controller.Dependencies {
	return controller.NewDependencyContainer(config.FromMap(map[string]string{"PROJECT_PATH": "/p"}), nil, nil)
}

func TestInstantiator(t *testing.T) {
	reg := reflection.NewRegistry()
	reg.MustRegister("page", newPageController)
	reg.MustRegister("api-only", newAPIOnlyController)
	views := view.NewServicesContainer(view.BasicContainerFactory{}, &layoutRenderer{})

	c, err := web.NewInstantiator().InstantiateModuleController(newDeps(), "page", reg, views)
	require.NoError(t, err)
	assert.Equal(t, web.DefaultLayout, c.(web.Controller).Layout())

	_, err = web.NewInstantiator().InstantiateModuleController(newDeps(), "api-only", reg, views)
	assert.ErrorIs(t, err, errs.ErrContractViolation)
}

func TestBaseController_RendersInsideLayout(t *testing.T) {
	renderer := &layoutRenderer{}
	c := newPageController(newDeps(), view.NewServicesContainer(view.BasicContainerFactory{}, renderer))

	res, err := c.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "layouts/main(page)", string(res.Body()))
	assert.Equal(t, "site", renderer.seen[1].TemplateService().Group())

	c.SetLayout("layouts/wide")
	renderer.seen = nil
	res, err = c.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "layouts/wide(page)", string(res.Body()))
}

func TestEntry(t *testing.T) {
	e := web.Entry(3)
	assert.Equal(t, web.InstantiatorName, e.Instantiator)
	assert.Equal(t, reflection.InterfaceOf[web.Controller](), e.Interface)
}
