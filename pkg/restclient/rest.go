package restclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-restkit/pkg/httpclient"
)

var errNotInitialized = errors.New("restclient: client is not initialized")

// Get issues GET base/controller/method?k=v&... and decodes a 2xx body into T.
// A 400 response is read as a ResponseModel and returned as a business error
// carrying its messages; any other non-2xx is an invalid argument error.
//
// Parameters are sent unescaped unless the client was built WithQueryEscape.
// Unescaped, a key or value containing a space, a control character or '#'
// is rejected with an invalid argument error before any request is made.
// A caller supplied Accept header is added after application/json, not in place of it.
func Get[T any](ctx context.Context, c *Client, ep Endpoint, params map[string]string, headers map[string]string) (T, error) {
	var zero T
	if params == nil {
		return zero, newNilParameters(ep.BaseURL)
	}
	if c == nil || c.http == nil {
		return zero, errNotInitialized
	}
	if !c.escapeQuery {
		if k, v, ok := checkRawParams(params); !ok {
			return zero, newUnsafeQuery(ep.BaseURL, k, v)
		}
	}

	reqURL := withQuery(ep.URL(), buildQuery(params, c.escapeQuery))
	return classified[T](ctx, c, http.MethodGet, ep.BaseURL, reqURL, headers, http.StatusBadRequest)
}

// GetList is Get for multi-valued parameters; every value becomes its own
// key=value token. A nil map is treated as empty.
func GetList[T any](ctx context.Context, c *Client, ep Endpoint, params map[string][]string, headers map[string]string) (T, error) {
	var zero T
	if c == nil || c.http == nil {
		return zero, errNotInitialized
	}
	if !c.escapeQuery {
		if k, v, ok := checkRawListParams(params); !ok {
			return zero, newUnsafeQuery(ep.BaseURL, k, v)
		}
	}

	reqURL := withQuery(ep.URL(), buildListQuery(params, c.escapeQuery))
	return classified[T](ctx, c, http.MethodGet, ep.BaseURL, reqURL, headers, http.StatusBadRequest)
}

// PostParams issues POST base/controller/method?k=v&... with an empty body.
// A 404 response is read as a ResponseModel and returned as a business error;
// any other non-2xx is an invalid argument error. Parameters follow the same
// escaping rules as Get.
func PostParams[T any](ctx context.Context, c *Client, ep Endpoint, params map[string]string, headers map[string]string) (T, error) {
	var zero T
	if c == nil || c.http == nil {
		return zero, errNotInitialized
	}
	if !c.escapeQuery {
		if k, v, ok := checkRawParams(params); !ok {
			return zero, newUnsafeQuery(ep.BaseURL, k, v)
		}
	}

	reqURL := withQuery(ep.URL(), buildQuery(params, c.escapeQuery))
	return classified[T](ctx, c, http.MethodPost, ep.BaseURL, reqURL, headers, http.StatusNotFound)
}

// Post serializes body as JSON and posts it to ep.PostURL(). The call is bounded
// by the client's RestTimeout, read on every call. Every non-2xx response is a
// business error whose single message is the diagnostic line
// "url,status,content,url". Failures are logged before being returned.
// The RestTimeout deadline alone bounds the call; the transport default does
// not shorten it.
func Post[T any](ctx context.Context, c *Client, ep Endpoint, body any, headers map[string]string) (T, error) {
	var zero T
	if c == nil || c.http == nil {
		return zero, errNotInitialized
	}

	reqURL := ep.PostURL()
	out, err := post[T](ctx, c, reqURL, body, headers)
	if err != nil {
		c.log.ErrorObj("rest post failed", "rest_error", map[string]any{
			"url":   reqURL,
			"error": err.Error(),
		})
		return zero, err
	}
	return out, nil
}

func post[T any](ctx context.Context, c *Client, reqURL string, body any, headers map[string]string) (T, error) {
	var zero T

	payload, err := c.codec.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("restclient: encode request body: %w", err)
	}

	if timeout := c.settings.RestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := c.send(ctx, http.MethodPost, reqURL, headers, payload)
	if err != nil {
		return zero, err
	}
	if httpclient.IsSuccess(resp) {
		return decode[T](c, resp.Body())
	}

	status := resp.StatusCode()
	msg := diagnostic(reqURL, status, string(resp.Body()), reqURL)
	return zero, newBusiness(reqURL, status, resp.Body(), []string{msg})
}

// classified runs a body-less request and maps the response: 2xx decodes into T,
// envelopeStatus decodes a ResponseModel into a business error, anything else
// is an invalid argument error.
func classified[T any](ctx context.Context, c *Client, method, baseURL, reqURL string, headers map[string]string, envelopeStatus int) (T, error) {
	var zero T

	resp, err := c.send(ctx, method, reqURL, headers, nil)
	if err != nil {
		return zero, err
	}
	if httpclient.IsSuccess(resp) {
		return decode[T](c, resp.Body())
	}
	if resp.StatusCode() == envelopeStatus {
		return zero, envelopeError(c, reqURL, resp)
	}
	return zero, newInvalidArgument(baseURL, reqURL, resp.StatusCode(), resp.Body())
}

// send attaches the standard and caller headers and performs the exchange.
func (c *Client) send(ctx context.Context, method, reqURL string, headers map[string]string, body []byte) (httpclient.Response, error) {
	h := make(map[string]string, len(headers)+3)
	for k, v := range headers {
		h[http.CanonicalHeaderKey(k)] = v
	}
	if accept, ok := h[headerAccept]; ok && accept != "" {
		h[headerAccept] = mediaTypeJSON + ", " + accept
	} else {
		h[headerAccept] = mediaTypeJSON
	}
	if body != nil {
		h[headerContentType] = contentTypeJSON
	}
	if c.requestIDHeader != "" {
		key := http.CanonicalHeaderKey(c.requestIDHeader)
		if _, ok := h[key]; !ok {
			h[key] = uuid.NewString()
		}
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:  method,
		URL:     reqURL,
		Headers: h,
		Body:    body,
	})
	if err != nil {
		return nil, err
	}

	c.log.DebugObj("rest call completed", "rest_call", map[string]any{
		"method":     method,
		"url":        reqURL,
		"status":     resp.StatusCode(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return resp, nil
}

func decode[T any](c *Client, data []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := c.codec.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("restclient: decode response: %w", err)
	}
	return out, nil
}

func envelopeError(c *Client, reqURL string, resp httpclient.Response) error {
	var env ResponseModel[any]
	if err := c.codec.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("restclient: decode error envelope (HTTP %d): %w", resp.StatusCode(), err)
	}
	return newBusiness(reqURL, resp.StatusCode(), resp.Body(), env.Messages)
}
