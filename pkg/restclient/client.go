package restclient

import (
	"strings"
	"time"

	"github.com/samvad-hq/samvad-restkit/pkg/httpclient"
)

const (
	headerAccept      = "Accept"
	headerContentType = "Content-Type"
	mediaTypeJSON     = "application/json"
	contentTypeJSON   = "application/json; charset=utf-8"
)

// Settings supplies configuration read at call time.
type Settings interface {
	// RestTimeout bounds POST-with-body calls. Zero or negative disables the bound.
	RestTimeout() time.Duration
}

// FixedTimeout is a Settings that always returns the same timeout.
type FixedTimeout time.Duration

func (f FixedTimeout) RestTimeout() time.Duration { return time.Duration(f) }

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// Client issues REST calls over a shared transport. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	http            httpclient.Client
	settings        Settings
	codec           Codec
	log             Logger
	escapeQuery     bool
	requestIDHeader string
}

// Option customizes a Client.
type Option func(*Client)

// WithCodec replaces the JSON codec.
func WithCodec(codec Codec) Option {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLogger sets the logger used for failures on the POST-with-body path.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithQueryEscape URL-encodes query keys and values. Off by default, which
// sends them exactly as given.
func WithQueryEscape() Option {
	return func(c *Client) { c.escapeQuery = true }
}

// WithRequestIDHeader stamps every request with a random id under name,
// unless the caller already supplied that header.
func WithRequestIDHeader(name string) Option {
	return func(c *Client) { c.requestIDHeader = strings.TrimSpace(name) }
}

// New builds a Client. A nil settings value disables the POST timeout.
func New(transport httpclient.Client, settings Settings, opts ...Option) *Client {
	if settings == nil {
		settings = FixedTimeout(0)
	}
	c := &Client{
		http:     transport,
		settings: settings,
		codec:    JSONCodec{},
		log:      noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
