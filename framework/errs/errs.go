// Package errs holds the error taxonomy shared by the controller resolution
// and response assembly packages.
//
// Every failure is a sentinel wrapped in a *ResolutionError, so callers can
// match with errors.Is and still get a message naming the operation and the
// class involved:
//
//	_, err := instantiator.InstantiateController(cfg, view.RendererHTML)
//	if errors.Is(err, errs.ErrClassNotFound) { ... }
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrClassNotFound means a named class (controller, view container
	// factory, renderer) is not registered.
	ErrClassNotFound = errors.New("class not found")

	// ErrInterfaceNotFound means an expected interface type cannot be resolved.
	ErrInterfaceNotFound = errors.New("interface not found")

	// ErrContractViolation means a resolved type or object does not satisfy
	// a required interface.
	ErrContractViolation = errors.New("class does not implement the required interface")

	// ErrInstantiatorNotFound means a registry entry names a module
	// instantiator that is not in the catalog.
	ErrInstantiatorNotFound = errors.New("instantiator not found")

	// ErrUnhandledController means no registry entry matches any interface
	// implemented by the controller.
	ErrUnhandledController = errors.New("controller not handled")

	// ErrInvalidRouteConfiguration means the route configuration is not of
	// the controller/view variant.
	ErrInvalidRouteConfiguration = errors.New("route configuration is not of controller/view type")

	// ErrInvalidArgument is returned for arguments outside the accepted set,
	// e.g. a non-redirect status code passed to a redirect builder.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ResolutionError wraps a sentinel with the operation and subject it
// happened on.
type ResolutionError struct {
	Op      string
	Subject string
	Err     error
}

func (e *ResolutionError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Subject, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// New builds a *ResolutionError.
func New(op, subject string, err error) *ResolutionError {
	return &ResolutionError{Op: op, Subject: subject, Err: err}
}

// Newf builds a *ResolutionError whose cause is err annotated with a
// formatted detail message. errors.Is still matches err.
func Newf(op, subject string, err error, format string, args ...any) *ResolutionError {
	return &ResolutionError{
		Op:      op,
		Subject: subject,
		Err:     fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)),
	}
}
