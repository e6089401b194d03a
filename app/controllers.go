// Package app is an example application: a home page, a small users API
// and an admin dashboard, each resolved through its own module.
package app

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/km-arc/go-mvc/framework/controller"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/module/api"
	"github.com/km-arc/go-mvc/framework/module/web"
	"github.com/km-arc/go-mvc/framework/view"
)

// User is the API's resource.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Users is the data the example controllers read. It travels to them
// through Dependencies.Local.
type Users interface {
	All() []User
	Find(id int) (User, bool)
}

type memoryUsers []User

// NewMemoryUsers returns a fixed in-memory Users.
func NewMemoryUsers(users ...User) Users { return memoryUsers(users) }

func (m memoryUsers) All() []User { return append([]User(nil), m...) }

func (m memoryUsers) Find(id int) (User, bool) {
	for _, u := range m {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func usersFrom(deps controller.Dependencies) Users {
	if u, ok := deps.Local().(Users); ok {
		return u
	}
	return NewMemoryUsers()
}

// ── web ───────────────────────────────────────────────────────────────────────

// HomeController renders the landing page.
type HomeController struct {
	*web.BaseController
}

func NewHomeController(deps controller.Dependencies, views view.Services) *HomeController {
	return &HomeController{web.NewBaseController(deps, views, nil)}
}

type homeView struct {
	Title string
	Users int
}

func (c *HomeController) Handle(r *http.Request) (*gohttp.Response, error) {
	vc := c.Views.ViewContainerFactory().CreateViewContainerFromView(
		homeView{Title: "Welcome", Users: len(usersFrom(c.Deps).All())},
		"home",
	)
	return c.CreateResponse(r, vc)
}

// ── api ───────────────────────────────────────────────────────────────────────

// UserController serves /api/users and /api/users/{id}. The list takes an
// optional ?name= filter.
type UserController struct {
	*api.BaseController
}

func NewUserController(deps controller.Dependencies, views view.Services) *UserController {
	return &UserController{api.NewBaseController(deps, views, nil)}
}

func (c *UserController) Handle(r *http.Request) (*gohttp.Response, error) {
	users := usersFrom(c.Deps)
	factory := c.Views.ViewContainerFactory()
	req := gohttp.NewRequest(r)

	raw := req.RouteParam("id")
	if raw == "" {
		list := filterByName(users.All(), req.Query("name"))
		return c.CreateResponse(r, factory.CreateViewContainerFromView(list, "users/index"))
	}

	id, err := strconv.Atoi(raw)
	if err != nil {
		return c.Deps.ResponseFactory().CreateErrorResponse(http.StatusBadRequest, "invalid user id"), nil
	}
	user, ok := users.Find(id)
	if !ok {
		return c.Deps.ResponseFactory().CreateErrorResponse(http.StatusNotFound), nil
	}
	return c.CreateResponse(r, factory.CreateViewContainerFromView(user, "users/show"))
}

func filterByName(users []User, name string) []User {
	if name == "" {
		return users
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(name)) {
			out = append(out, u)
		}
	}
	return out
}

// ── admin ─────────────────────────────────────────────────────────────────────

// DashboardController is the admin landing page.
type DashboardController struct {
	*AdminBaseController
}

func NewDashboardController(deps controller.Dependencies, views view.Services) *DashboardController {
	return &DashboardController{NewAdminBaseController(deps, views)}
}

func (c *DashboardController) Handle(r *http.Request) (*gohttp.Response, error) {
	if res := c.Authorize(r); res != nil {
		return res, nil
	}
	vc := c.Views.ViewContainerFactory().CreateViewContainerFromView(usersFrom(c.Deps).All(), "admin/dashboard")
	return c.CreateResponse(r, vc)
}
