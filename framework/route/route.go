// Package route holds the configuration a matched route hands to the
// dispatcher, and the YAML route table it is loaded from.
package route

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/view"
)

// Configuration is what a matched route resolves to. The variants are
// ControllerView and Redirect.
type Configuration interface {
	routeConfiguration()
}

// ControllerView routes to a controller class and names the view container
// factory it is built with. Renderer optionally pins the view renderer;
// empty means the dispatcher negotiates one.
type ControllerView struct {
	ControllerClass           string
	ViewContainerFactoryClass string
	Renderer                  string
}

func (ControllerView) routeConfiguration() {}

// Redirect answers the route with a redirect and no controller.
type Redirect struct {
	Location string
	Status   gohttp.RedirectStatus
}

func (Redirect) routeConfiguration() {}

// AsControllerView returns cfg as a ControllerView, accepting the value and
// the non-nil pointer form.
func AsControllerView(cfg Configuration) (ControllerView, bool) {
	switch v := cfg.(type) {
	case ControllerView:
		return v, true
	case *ControllerView:
		if v != nil {
			return *v, true
		}
	}
	return ControllerView{}, false
}

// AsRedirect returns cfg as a Redirect, accepting the value and the non-nil
// pointer form.
func AsRedirect(cfg Configuration) (Redirect, bool) {
	switch v := cfg.(type) {
	case Redirect:
		return v, true
	case *Redirect:
		if v != nil {
			return *v, true
		}
	}
	return Redirect{}, false
}

// Entry is one method/pattern pair and its configuration.
type Entry struct {
	Method        string
	Pattern       string
	Configuration Configuration
}

var ErrInvalidEntry = errors.New("invalid route entry")

type fileEntry struct {
	Method     string `yaml:"method"`
	Path       string `yaml:"path"`
	Controller string `yaml:"controller"`
	Factory    string `yaml:"view_container_factory"`
	Renderer   string `yaml:"renderer"`
	Redirect   *struct {
		Location string `yaml:"location"`
		Status   int    `yaml:"status"`
	} `yaml:"redirect"`
}

type file struct {
	Routes []fileEntry `yaml:"routes"`
}

// LoadTable parses a route table:
//
//	routes:
//	  - method: GET
//	    path: /
//	    controller: app.HomeController
//	  - method: GET
//	    path: /api/users/{id}
//	    controller: app.UserController
//	    renderer: json
//	  - method: GET
//	    path: /old-home
//	    redirect: {location: /, status: 301}
//
// view_container_factory defaults to view.DefaultFactory; method defaults to GET.
func LoadTable(r io.Reader) ([]Entry, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode route table: %w", err)
	}

	entries := make([]Entry, 0, len(f.Routes))
	for i, fe := range f.Routes {
		e, err := fe.entry()
		if err != nil {
			return nil, fmt.Errorf("route %d (%s): %w", i, fe.Path, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadTableFile opens path and calls LoadTable.
func LoadTableFile(path string) ([]Entry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadTable(fh)
}

func (fe fileEntry) entry() (Entry, error) {
	method := strings.ToUpper(fe.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(fe.Path, "/") {
		return Entry{}, fmt.Errorf("%w: path must start with /", ErrInvalidEntry)
	}

	switch {
	case fe.Redirect != nil && fe.Controller != "":
		return Entry{}, fmt.Errorf("%w: both controller and redirect set", ErrInvalidEntry)
	case fe.Redirect != nil:
		status := gohttp.StatusSeeOther
		if fe.Redirect.Status != 0 {
			s, err := gohttp.ParseRedirectStatus(fe.Redirect.Status)
			if err != nil {
				return Entry{}, err
			}
			status = s
		}
		return Entry{Method: method, Pattern: fe.Path, Configuration: Redirect{
			Location: fe.Redirect.Location,
			Status:   status,
		}}, nil
	case fe.Controller != "":
		factory := fe.Factory
		if factory == "" {
			factory = view.DefaultFactory
		}
		return Entry{Method: method, Pattern: fe.Path, Configuration: ControllerView{
			ControllerClass:           fe.Controller,
			ViewContainerFactoryClass: factory,
			Renderer:                  fe.Renderer,
		}}, nil
	default:
		return Entry{}, fmt.Errorf("%w: neither controller nor redirect set", ErrInvalidEntry)
	}
}
