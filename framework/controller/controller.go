// Package controller resolves the controller for a matched route and
// assembles its HTTP response.
//
// Resolution runs through three instantiators:
//
//	Instantiator                  route configuration → controller class + interfaces + view services
//	SpecificModuleInstantiator    interfaces → first matching registry entry → module instantiator
//	ModuleInstantiator            constructor signature check → instance → capability check
//
// Controllers embed a module base controller, which embeds DefaultController
// for response assembly.
package controller

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/config"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/view"
)

// Controller handles one request. A controller is built fresh for every
// request and dropped after it.
type Controller interface {
	Handle(r *http.Request) (*gohttp.Response, error)
}

// Dependencies is the framework-level bundle every controller constructor
// receives as its first parameter. Local carries project collaborators the
// framework passes through without inspecting.
type Dependencies interface {
	Configuration() config.Getter
	Logger() *zap.Logger
	ResponseFactory() *gohttp.ResponseFactory
	Local() any
}

// DependencyContainer is the stock Dependencies implementation.
type DependencyContainer struct {
	config    config.Getter
	logger    *zap.Logger
	responses *gohttp.ResponseFactory
	local     any
}

// NewDependencyContainer bundles controller dependencies. A nil logger is
// replaced by a no-op one.
func NewDependencyContainer(cfg config.Getter, logger *zap.Logger, local any) *DependencyContainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DependencyContainer{
		config:    cfg,
		logger:    logger,
		responses: gohttp.NewResponseFactory(),
		local:     local,
	}
}

func (d *DependencyContainer) Configuration() config.Getter             { return d.config }
func (d *DependencyContainer) Logger() *zap.Logger                      { return d.logger }
func (d *DependencyContainer) ResponseFactory() *gohttp.ResponseFactory { return d.responses }
func (d *DependencyContainer) Local() any                               { return d.local }

// ViewContainerFactoryInstantiator builds the view container factory a
// route names.
type ViewContainerFactoryInstantiator interface {
	InstantiateViewContainerFactory(id string) (view.ContainerFactory, error)
}

// ViewRendererInstantiator builds the view renderer the dispatcher asks for.
type ViewRendererInstantiator interface {
	InstantiateViewRenderer(id string) (view.Renderer, error)
}
