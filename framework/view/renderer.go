package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/km-arc/go-mvc/framework/errs"
)

const (
	// ContentTypeHTML is the sentinel content type that triggers layout wrapping.
	ContentTypeHTML = "text/html"
	ContentTypeJSON = "application/json"

	RendererHTML = "html"
	RendererJSON = "json"
)

// ErrTemplateServiceMissing is returned by HTMLRenderer for a container
// that reached rendering without a template service.
var ErrTemplateServiceMissing = errors.New("view container has no template service")

// Renderer turns a view container into response body bytes.
type Renderer interface {
	ContentType() string
	Render(c Container) ([]byte, error)
}

// HTMLRenderer executes the container's template from its template service.
type HTMLRenderer struct {
	funcs template.FuncMap
}

// NewHTMLRenderer creates an HTML renderer. funcs are made available to
// every template.
func NewHTMLRenderer(funcs template.FuncMap) *HTMLRenderer {
	return &HTMLRenderer{funcs: funcs}
}

func (r *HTMLRenderer) ContentType() string { return ContentTypeHTML }

func (r *HTMLRenderer) Render(c Container) ([]byte, error) {
	ts := c.TemplateService()
	if ts == nil {
		return nil, fmt.Errorf("render %q: %w", c.Template(), ErrTemplateServiceMissing)
	}
	path := ts.TemplatePath(c.Template())
	tmpl, err := template.New(filepath.Base(path)).Funcs(r.funcs).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, c.View()); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// JSONRenderer encodes the container's view as JSON. The template is ignored.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) ContentType() string { return ContentTypeJSON }

func (r *JSONRenderer) Render(c Container) ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(c.View())
}

// RendererInstantiator builds a fresh renderer per request from its identifier.
type RendererInstantiator struct {
	mu       sync.RWMutex
	builders map[string]func() Renderer
}

// NewRendererInstantiator returns an instantiator that knows RendererHTML
// and RendererJSON.
func NewRendererInstantiator() *RendererInstantiator {
	ri := &RendererInstantiator{builders: make(map[string]func() Renderer)}
	ri.Register(RendererHTML, func() Renderer { return NewHTMLRenderer(nil) })
	ri.Register(RendererJSON, func() Renderer { return NewJSONRenderer() })
	return ri
}

// Register adds or replaces a renderer builder.
func (ri *RendererInstantiator) Register(id string, build func() Renderer) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.builders[id] = build
}

// InstantiateViewRenderer returns a new renderer for id.
func (ri *RendererInstantiator) InstantiateViewRenderer(id string) (Renderer, error) {
	ri.mu.RLock()
	build, ok := ri.builders[id]
	ri.mu.RUnlock()
	if !ok {
		return nil, errs.New("instantiate view renderer", id, errs.ErrClassNotFound)
	}
	r := build()
	if r == nil {
		return nil, errs.New("instantiate view renderer", id, errs.ErrContractViolation)
	}
	return r, nil
}
