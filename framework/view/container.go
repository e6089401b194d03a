// Package view holds the view side of a request: view containers, the
// template service attached to them, renderers, container factories and the
// per-request services bundle handed to controllers.
package view

import (
	"html/template"
	"path/filepath"
)

// Container holds page data, the template that renders it and, once
// response assembly reaches it, the template service.
type Container interface {
	View() any
	Template() string
	TemplateService() TemplateService
	SetTemplateService(ts TemplateService)
}

type container struct {
	view     any
	template string
	ts       TemplateService
}

// NewContainer wraps view data and a template name.
func NewContainer(view any, templateName string) Container {
	return &container{view: view, template: templateName}
}

func (c *container) View() any                             { return c.view }
func (c *container) Template() string                      { return c.template }
func (c *container) TemplateService() TemplateService      { return c.ts }
func (c *container) SetTemplateService(ts TemplateService) { c.ts = ts }

// TemplateService identifies the template group a container renders with.
type TemplateService interface {
	Path() string
	Group() string
	TemplatePath(name string) string
}

type templateService struct {
	projectPath string
	group       string
}

// NewTemplateService returns a template service rooted at
// <projectPath>/resources/templates/<group>.
func NewTemplateService(projectPath, group string) TemplateService {
	return &templateService{projectPath: projectPath, group: group}
}

func (t *templateService) Group() string { return t.group }

func (t *templateService) Path() string {
	return filepath.Join(t.projectPath, "resources", "templates", t.group)
}

func (t *templateService) TemplatePath(name string) string {
	return filepath.Join(t.Path(), name+".html")
}

// CommonView is request data shared by every page.
type CommonView struct {
	BaseURL    string `json:"baseUrl"`
	RequestURI string `json:"requestUri"`
}

// MainView is the layout-level view. Data is the already rendered page.
type MainView struct {
	Common CommonView `json:"common"`
	Data   string     `json:"data"`
}

// Content returns Data for embedding in an HTML layout without escaping.
func (m MainView) Content() template.HTML {
	return template.HTML(m.Data) //nolint:gosec // Data is our own rendered output
}
