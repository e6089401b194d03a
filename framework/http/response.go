package http

import (
	"net/http"
	"strconv"

	"github.com/km-arc/go-mvc/framework/errs"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response is an outgoing HTTP response built by a controller before
// anything is written to the client.
type Response struct {
	StatusCode int
	header     http.Header
	body       []byte
}

// Header returns the response headers.
func (res *Response) Header() http.Header { return res.header }

// Body returns the response body.
func (res *Response) Body() []byte { return res.body }

// WithHeader sets a header and returns the same response.
func (res *Response) WithHeader(key, value string) *Response {
	res.header.Set(key, value)
	return res
}

// WithBody sets the body and returns the same response.
func (res *Response) WithBody(body []byte) *Response {
	res.body = body
	return res
}

// Send writes the response to w.
func (res *Response) Send(w http.ResponseWriter) error {
	dst := w.Header()
	for k, vs := range res.header {
		dst[k] = append([]string(nil), vs...)
	}
	w.WriteHeader(res.StatusCode)
	if len(res.body) == 0 {
		return nil
	}
	_, err := w.Write(res.body)
	return err
}

// ── Factory ──────────────────────────────────────────────────────────────────

// ResponseFactory creates responses.
type ResponseFactory struct{}

func NewResponseFactory() *ResponseFactory { return &ResponseFactory{} }

// CreateResponse returns an empty response with the given status.
func (f *ResponseFactory) CreateResponse(code int) *Response {
	return &Response{StatusCode: code, header: make(http.Header)}
}

// CreateBodyResponse returns a response carrying body, its Content-Type
// and its Content-Length.
//
//	res := factory.CreateBodyResponse(http.StatusOK, "application/json", []byte(`{}`))
func (f *ResponseFactory) CreateBodyResponse(code int, contentType string, body []byte) *Response {
	return f.CreateResponse(code).
		WithHeader("Content-Type", contentType).
		WithHeader("Content-Length", strconv.Itoa(len(body))).
		WithBody(body)
}

// CreateRedirectResponse returns a response carrying only a Location header.
// code must be a RedirectStatus.
//
//	res, err := factory.CreateRedirectResponse("/dashboard", http.StatusSeeOther)
func (f *ResponseFactory) CreateRedirectResponse(location string, code int) (*Response, error) {
	status, err := ParseRedirectStatus(code)
	if err != nil {
		return nil, err
	}
	return f.CreateResponse(int(status)).WithHeader("Location", location), nil
}

// CreateErrorResponse returns a plain-text error response.
func (f *ResponseFactory) CreateErrorResponse(code int, message ...string) *Response {
	msg := first(message, http.StatusText(code))
	return f.CreateBodyResponse(code, "text/plain; charset=utf-8", []byte(msg))
}

// ── Redirects ────────────────────────────────────────────────────────────────

// RedirectStatus is the closed set of status codes accepted for redirects.
type RedirectStatus int

const (
	StatusMovedPermanently  RedirectStatus = http.StatusMovedPermanently  // 301
	StatusFound             RedirectStatus = http.StatusFound             // 302
	StatusSeeOther          RedirectStatus = http.StatusSeeOther          // 303
	StatusTemporaryRedirect RedirectStatus = http.StatusTemporaryRedirect // 307
	StatusPermanentRedirect RedirectStatus = http.StatusPermanentRedirect // 308
)

// RedirectStatuses lists every RedirectStatus.
var RedirectStatuses = []RedirectStatus{
	StatusMovedPermanently,
	StatusFound,
	StatusSeeOther,
	StatusTemporaryRedirect,
	StatusPermanentRedirect,
}

// Valid reports whether s is one of RedirectStatuses.
func (s RedirectStatus) Valid() bool {
	switch s {
	case StatusMovedPermanently, StatusFound, StatusSeeOther, StatusTemporaryRedirect, StatusPermanentRedirect:
		return true
	}
	return false
}

// ParseRedirectStatus converts a status code, failing with
// errs.ErrInvalidArgument for anything that is not a redirect status.
func ParseRedirectStatus(code int) (RedirectStatus, error) {
	s := RedirectStatus(code)
	if !s.Valid() {
		return 0, errs.Newf("redirect", "", errs.ErrInvalidArgument, "status code %d is not of redirect type", code)
	}
	return s, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
