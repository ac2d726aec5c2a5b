package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/samvad-restkit/internal/config"
	"github.com/samvad-hq/samvad-restkit/internal/logger"
	"github.com/samvad-hq/samvad-restkit/pkg/httpclient"
	"github.com/samvad-hq/samvad-restkit/pkg/restclient"
	"github.com/samvad-hq/samvad-restkit/pkg/services"
)

// Supported call verbs.
const (
	VerbGet        = "get"
	VerbGetList    = "get-list"
	VerbPost       = "post"
	VerbPostParams = "post-params"
)

// Call describes one invocation against a registered service.
type Call struct {
	Service    string
	Verb       string
	Controller string
	Method     string
	Params     map[string][]string
	Headers    map[string]string
	Body       json.RawMessage
}

// Caller resolves services from the registry and dispatches calls through a
// shared REST client.
type Caller struct {
	registry *services.Registry
	client   *restclient.Client
	log      logger.Logger
}

// NewCaller builds a caller runtime from config files.
func NewCaller(cfg *config.Config, log logger.Logger) (*Caller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	reg, err := services.LoadRegistry(cfg.ServicesFile)
	if err != nil {
		return nil, fmt.Errorf("load services registry: %w", err)
	}
	enabled := reg.Enabled()
	ids := make([]string, 0, len(enabled))
	for _, svc := range enabled {
		ids = append(ids, svc.ID)
	}
	log.InfoObj("services registry loaded", "services_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
	})

	var restyLog resty.Logger
	if rl, ok := log.(resty.Logger); ok {
		restyLog = rl
	}
	transport := httpclient.NewRestyClient(cfg.TransportTimeout, restyLog)

	opts := []restclient.Option{restclient.WithLogger(log)}
	if cfg.RequestIDHeader != "" {
		opts = append(opts, restclient.WithRequestIDHeader(cfg.RequestIDHeader))
	}
	if cfg.EscapeQuery {
		opts = append(opts, restclient.WithQueryEscape())
	}

	return NewCallerWith(reg, restclient.New(transport, cfg, opts...), log), nil
}

// NewCallerWith assembles a caller from already built parts.
func NewCallerWith(reg *services.Registry, client *restclient.Client, log logger.Logger) *Caller {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Caller{registry: reg, client: client, log: log}
}

// Invoke performs the call and returns the raw JSON result.
func (c *Caller) Invoke(ctx context.Context, call Call) (json.RawMessage, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("caller is not initialized")
	}

	svc, ok := c.registry.ByID(call.Service)
	if !ok {
		return nil, fmt.Errorf("unknown service %q", call.Service)
	}
	if !svc.EnabledValue() {
		return nil, fmt.Errorf("service %q is disabled", svc.ID)
	}

	ep := restclient.Endpoint{BaseURL: svc.BaseURL, Controller: call.Controller, Method: call.Method}
	headers := mergeHeaders(svc.Headers, call.Headers)

	c.log.DebugObj("invoking service", "call", map[string]any{
		"service":    svc.ID,
		"verb":       call.Verb,
		"controller": call.Controller,
		"method":     call.Method,
	})

	switch strings.ToLower(strings.TrimSpace(call.Verb)) {
	case VerbGet, "":
		return restclient.Get[json.RawMessage](ctx, c.client, ep, flatten(call.Params), headers)
	case VerbGetList:
		return restclient.GetList[json.RawMessage](ctx, c.client, ep, call.Params, headers)
	case VerbPost:
		var body any
		if len(call.Body) > 0 {
			body = call.Body
		}
		return restclient.Post[json.RawMessage](ctx, c.client, ep, body, headers)
	case VerbPostParams:
		return restclient.PostParams[json.RawMessage](ctx, c.client, ep, flatten(call.Params), headers)
	default:
		return nil, fmt.Errorf("unsupported verb %q", call.Verb)
	}
}

// flatten keeps the last value of every key; the result is never nil.
func flatten(params map[string][]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, values := range params {
		if len(values) == 0 {
			out[k] = ""
			continue
		}
		out[k] = values[len(values)-1]
	}
	return out
}

// mergeHeaders layers per-call headers over the service defaults.
func mergeHeaders(defaults, overrides map[string]string) map[string]string {
	if len(defaults) == 0 && len(overrides) == 0 {
		return nil
	}
	out := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
