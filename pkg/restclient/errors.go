package restclient

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies errors raised by the REST helpers.
type Kind int

const (
	// KindInvalidArgument covers missing required input and unclassified non-2xx responses.
	KindInvalidArgument Kind = iota
	// KindBusiness covers failures the remote service reported as meaningful messages.
	KindBusiness
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindBusiness:
		return "business"
	default:
		return "unknown"
	}
}

// ErrNilParameters is wrapped by the error Get returns when the parameter map is nil.
var ErrNilParameters = errors.New("parameters must not be nil")

// Error is a classified REST failure.
type Error struct {
	Kind Kind
	// URL is the base address the call was made against.
	URL string
	// RequestURL is the full URL including path segments and query string.
	RequestURL string
	// StatusCode is 0 when no response was involved.
	StatusCode int
	// Content is the raw response body.
	Content string
	// Messages are the human readable messages reported by the service.
	Messages []string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("restclient: %s: %s", e.Kind, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("restclient: %s: %s", e.Kind, diagnostic(e.URL, e.StatusCode, e.Content, e.RequestURL))
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// diagnostic renders the comma separated url,status,content,requestURL line.
func diagnostic(url string, status int, content, requestURL string) string {
	return fmt.Sprintf("%s,%d,%s,%s", url, status, content, requestURL)
}

func newNilParameters(baseURL string) *Error {
	return &Error{
		Kind:     KindInvalidArgument,
		URL:      baseURL,
		Messages: []string{ErrNilParameters.Error()},
		Err:      ErrNilParameters,
	}
}

// newUnsafeQuery reports a raw query parameter that cannot travel unescaped.
func newUnsafeQuery(baseURL, key, value string) *Error {
	return &Error{
		Kind: KindInvalidArgument,
		URL:  baseURL,
		Messages: []string{fmt.Sprintf(
			"query parameter %q=%q contains a space, control character or '#' and must be escaped", key, value)},
	}
}

func newInvalidArgument(baseURL, requestURL string, status int, body []byte) *Error {
	return &Error{
		Kind:       KindInvalidArgument,
		URL:        baseURL,
		RequestURL: requestURL,
		StatusCode: status,
		Content:    string(body),
	}
}

func newBusiness(requestURL string, status int, body []byte, messages []string) *Error {
	return &Error{
		Kind:       KindBusiness,
		URL:        requestURL,
		RequestURL: requestURL,
		StatusCode: status,
		Content:    string(body),
		Messages:   messages,
	}
}

// IsInvalidArgument reports whether err is an invalid argument error.
func IsInvalidArgument(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInvalidArgument
}

// IsBusiness reports whether err is a business error.
func IsBusiness(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindBusiness
}

// Messages returns the messages carried by err, or nil.
func Messages(err error) []string {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}
	return e.Messages
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	return e.StatusCode
}
