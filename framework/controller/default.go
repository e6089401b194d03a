package controller

import (
	"net/http"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/errs"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/logging"
	"github.com/km-arc/go-mvc/framework/view"
)

const (
	ConfigBaseURL       = "BASE_URL"
	ConfigProjectPath   = "PROJECT_PATH"
	ConfigTemplateGroup = "TEMPLATE_GROUP"

	DefaultTemplateGroup = "default"
)

// LayoutBuilder creates the main (layout) view container around a page's
// view container. Each module customizes it; an API module could put
// global response data in the main view.
type LayoutBuilder interface {
	CreateMainViewContainer(r *http.Request, vc view.Container) (view.Container, error)
}

// TemplateServiceCreator picks the template group for a response. It is
// the application-level hook; a project might choose the group from a
// user preference set by middleware.
type TemplateServiceCreator interface {
	CreateTemplateService(projectPath string) view.TemplateService
}

// TemplateServiceFunc adapts a func to TemplateServiceCreator.
type TemplateServiceFunc func(projectPath string) view.TemplateService

func (f TemplateServiceFunc) CreateTemplateService(projectPath string) view.TemplateService {
	return f(projectPath)
}

// TemplateGroup returns a creator that always uses group.
func TemplateGroup(group string) TemplateServiceFunc {
	return func(projectPath string) view.TemplateService {
		return view.NewTemplateService(projectPath, group)
	}
}

// DefaultController is the response-building base every module base
// controller embeds.
type DefaultController struct {
	Deps  Dependencies
	Views view.Services

	layout     LayoutBuilder
	templates  TemplateServiceCreator
	commonView *view.CommonView
	timer      *logging.LapTimer
}

// ConfiguredTemplateGroup returns a creator that uses the TEMPLATE_GROUP
// setting, or DefaultTemplateGroup when it is not set.
func ConfiguredTemplateGroup(cfg config.Getter) TemplateServiceFunc {
	return func(projectPath string) view.TemplateService {
		group, err := cfg.GetString(ConfigTemplateGroup)
		if err != nil || group == "" {
			group = DefaultTemplateGroup
		}
		return view.NewTemplateService(projectPath, group)
	}
}

// NewDefaultController wires the base. layout is usually the embedding
// module controller itself; a nil templates uses ConfiguredTemplateGroup.
func NewDefaultController(deps Dependencies, views view.Services, layout LayoutBuilder, templates TemplateServiceCreator) *DefaultController {
	if templates == nil {
		templates = ConfiguredTemplateGroup(deps.Configuration())
	}
	return &DefaultController{
		Deps:      deps,
		Views:     views,
		layout:    layout,
		templates: templates,
	}
}

// LapTimer returns the controller's timer, started on first use.
func (c *DefaultController) LapTimer() *logging.LapTimer {
	if c.timer == nil {
		c.timer = logging.NewLapTimer(c.Deps.Logger())
	}
	return c.timer
}

// CommonView returns the request-independent page data. It is computed on
// the first call and the same value is returned afterwards.
func (c *DefaultController) CommonView(r *http.Request) (view.CommonView, error) {
	if c.commonView == nil {
		baseURL, err := c.Deps.Configuration().GetString(ConfigBaseURL)
		if err != nil {
			return view.CommonView{}, err
		}
		c.commonView = &view.CommonView{
			BaseURL:    baseURL,
			RequestURI: gohttp.NewRequest(r).URI(),
		}
	}
	return *c.commonView, nil
}

// CreateMainViewContainerWithTemplate renders vc and wraps the result in a
// MainView container using templateName. Module LayoutBuilders call it.
func (c *DefaultController) CreateMainViewContainerWithTemplate(
	r *http.Request,
	templateName string,
	vc view.Container,
) (view.Container, error) {
	common, err := c.CommonView(r)
	if err != nil {
		return nil, err
	}
	data, err := c.Views.ViewRenderer().Render(vc)
	if err != nil {
		return nil, err
	}
	return c.Views.ViewContainerFactory().CreateViewContainerFromView(
		view.MainView{Common: common, Data: string(data)},
		templateName,
	), nil
}

// CreateResponse renders vc into a response. The default status is 200.
// Controllers call it from Handle.
func (c *DefaultController) CreateResponse(r *http.Request, vc view.Container, code ...int) (*gohttp.Response, error) {
	c.LapTimer().Lap("createResponse: start")

	status := http.StatusOK
	if len(code) > 0 {
		status = code[0]
	}
	// net/http panics on codes outside the three-digit range.
	if status < 100 || status > 999 {
		return nil, errs.Newf("create response", "", errs.ErrInvalidArgument, "status code %d", status)
	}

	body, err := c.CreateResponseBody(r, vc)
	if err != nil {
		return nil, err
	}

	res := c.Deps.ResponseFactory().CreateBodyResponse(status, c.Views.ViewRenderer().ContentType(), body)

	c.LapTimer().Lap("createResponse: end")
	return res, nil
}

// CreateResponseBody renders the body alone: the main view container for
// HTML, vc itself for every other content type.
func (c *DefaultController) CreateResponseBody(r *http.Request, vc view.Container) ([]byte, error) {
	main, err := c.createAndSetupMainViewContainer(r, vc)
	if err != nil {
		return nil, err
	}
	return c.Views.ViewRenderer().Render(main)
}

// CreateRedirectResponse returns a response carrying only a Location
// header. code must be a redirect status.
func (c *DefaultController) CreateRedirectResponse(location string, code int) (*gohttp.Response, error) {
	return c.Deps.ResponseFactory().CreateRedirectResponse(location, code)
}

// CreateRedirect is CreateRedirectResponse with 303 See Other.
func (c *DefaultController) CreateRedirect(location string) *gohttp.Response {
	res, _ := c.CreateRedirectResponse(location, int(gohttp.StatusSeeOther))
	return res
}

func (c *DefaultController) createAndSetupMainViewContainer(r *http.Request, vc view.Container) (view.Container, error) {
	// JSON, PDF, media and so on are rendered as they are. Only HTML is
	// placed inside the layout.
	if c.Views.ViewRenderer().ContentType() != view.ContentTypeHTML {
		return vc, nil
	}

	projectPath, err := c.Deps.Configuration().GetString(ConfigProjectPath)
	if err != nil {
		return nil, err
	}
	ts := c.templates.CreateTemplateService(projectPath)
	if ts == nil {
		return nil, errs.Newf("create response", "", errs.ErrContractViolation, "template service creator returned nil")
	}
	vc.SetTemplateService(ts)

	if c.layout == nil {
		return nil, errs.Newf("create response", "", errs.ErrContractViolation, "no layout builder")
	}
	main, err := c.layout.CreateMainViewContainer(r, vc)
	if err != nil {
		return nil, err
	}
	if main == nil {
		return nil, errs.Newf("create response", "", errs.ErrContractViolation, "layout builder returned no container")
	}
	main.SetTemplateService(ts)
	return main, nil
}
