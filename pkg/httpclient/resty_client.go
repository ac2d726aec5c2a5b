package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
// A single pooled resty.Client is shared by every call; headers are set per request.
// The resty client itself carries no timeout: a request whose context already
// has a deadline is bounded by that deadline alone, any other request by the
// default timeout.
type RestyClient struct {
	client         *resty.Client
	defaultTimeout time.Duration
}

// NewRestyClient creates a new RestyClient. timeout bounds requests whose
// context has no deadline; zero leaves them unbounded.
// A nil logger keeps resty's default logger.
func NewRestyClient(timeout time.Duration, log resty.Logger) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(log), defaultTimeout: timeout}
}

// NewRestyClientFrom wraps an already configured resty.Client.
func NewRestyClientFrom(c *resty.Client) *RestyClient {
	if c == nil {
		c = resty.New()
	}
	return &RestyClient{client: c}
}

// newRestyBaseClient creates a new resty.Client.
func newRestyBaseClient(log resty.Logger) *resty.Client {
	c := resty.New()
	if log != nil {
		c.SetLogger(log)
	}
	return c
}

// Do performs the request and returns the fully read response.
func (r *RestyClient) Do(ctx context.Context, in Request) (Response, error) {
	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && r.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.defaultTimeout)
		defer cancel()
	}

	req := r.client.R().SetContext(ctx)
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}
	if in.Body != nil {
		req.SetBody(in.Body)
	}

	resp, err := req.Execute(method, in.URL)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, in.URL, err)
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
