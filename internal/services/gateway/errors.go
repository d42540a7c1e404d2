package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindAuthentication means the backend rejected the bearer token (401).
	KindAuthentication Kind = iota + 1
	// KindValidation covers the remaining 4xx responses.
	KindValidation
	// KindServiceUnavailable covers 5xx, transport failures and timeouts.
	KindServiceUnavailable
	// KindCanceled means the caller abandoned the request.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by *Error through errors.Is.
var (
	ErrAuthentication     = errors.New("authentication required")
	ErrValidation         = errors.New("request rejected")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrCanceled           = errors.New("request canceled")
)

// Error is returned by every Client call that does not produce a 2xx.
type Error struct {
	Err     error
	Method  string
	Path    string
	Message string
	Status  int
	Kind    Kind
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrServiceUnavailable:
		return e.Kind == KindServiceUnavailable
	case ErrCanceled:
		return e.Kind == KindCanceled
	}
	return false
}

// KindOf returns the kind of a gateway error, or 0 for anything else.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}

// UserMessage renders err for display in the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var gerr *Error
	if !errors.As(err, &gerr) {
		return err.Error()
	}
	switch gerr.Kind {
	case KindAuthentication:
		return "Your session has expired. Please log in again."
	case KindValidation:
		if gerr.Message != "" {
			return gerr.Message
		}
		return "The request was rejected."
	case KindServiceUnavailable:
		return "Service is currently unavailable. Please try again later."
	case KindCanceled:
		return "Request canceled."
	}
	return err.Error()
}

// classifyStatus builds the error for a non-2xx response.
func classifyStatus(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, Status: status}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuthentication
		e.Message = serverMessage(body, "")
	case status >= 400 && status < 500:
		e.Kind = KindValidation
		e.Message = serverMessage(body, http.StatusText(status))
	default:
		e.Kind = KindServiceUnavailable
		e.Message = http.StatusText(status)
	}
	return e
}

// classifyTransport maps a failed round trip. Cancellation of the caller's
// context is distinguished from the per-request deadline.
func classifyTransport(caller context.Context, method, path string, err error) *Error {
	e := &Error{Method: method, Path: path, Err: err, Kind: KindServiceUnavailable}
	if errors.Is(caller.Err(), context.Canceled) {
		e.Kind = KindCanceled
	}
	return e
}

// serverMessage extracts "message", then "error", from a JSON error body.
func serverMessage(body []byte, fallback string) string {
	var doc struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(doc.Message); msg != "" {
		return msg
	}
	var errText string
	if len(doc.Error) > 0 && json.Unmarshal(doc.Error, &errText) == nil {
		if msg := strings.TrimSpace(errText); msg != "" {
			return msg
		}
	}
	return fallback
}
