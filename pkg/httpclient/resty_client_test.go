package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientDoSendsMethodHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Fatalf("missing header, got %s", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"a":1}` {
			t.Fatalf("unexpected body %q", body)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c := NewRestyClient(2*time.Second, nil)
	resp, err := c.Do(context.Background(), Request{
		Method:  "post",
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "1", "Content-Type": "application/json"},
		Body:    []byte(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusAccepted || string(resp.Body()) != "ok" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode(), resp.Body())
	}
	if !IsSuccess(resp) {
		t.Fatalf("expected success")
	}
}

func TestRestyClientDoDefaultsToGetAndKeepsRawQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		if r.URL.RawQuery != "a=1&b=2" {
			t.Fatalf("unexpected query %q", r.URL.RawQuery)
		}
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(time.Second, nil).Do(context.Background(), Request{URL: srv.URL + "/c/m?a=1&b=2"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if IsSuccess(resp) {
		t.Fatalf("expected non-2xx response to be returned without error")
	}
	if resp.StatusCode() != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.StatusCode())
	}
}

func TestRestyClientDoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewRestyClient(time.Second, nil).Do(context.Background(), Request{URL: url}); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestIsSuccessNil(t *testing.T) {
	if IsSuccess(nil) {
		t.Fatalf("nil response must not be a success")
	}
}

func slowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
			_, _ = io.WriteString(w, "done")
		case <-r.Context().Done():
		}
	}))
}

func TestRestyClientDefaultTimeoutAppliesWithoutDeadline(t *testing.T) {
	srv := slowServer(t, 500*time.Millisecond)
	defer srv.Close()

	_, err := NewRestyClient(100*time.Millisecond, nil).Do(context.Background(), Request{URL: srv.URL})
	if err == nil {
		t.Fatalf("expected default timeout to cut the request")
	}
}

func TestRestyClientContextDeadlineOverridesDefaultTimeout(t *testing.T) {
	srv := slowServer(t, 300*time.Millisecond)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := NewRestyClient(100*time.Millisecond, nil).Do(ctx, Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("expected the longer context deadline to govern, got %v", err)
	}
	if string(resp.Body()) != "done" {
		t.Fatalf("unexpected body %q", resp.Body())
	}
}
