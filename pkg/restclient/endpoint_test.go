package restclient

import "testing"

func TestEndpointURL(t *testing.T) {
	ep := Endpoint{BaseURL: "http://h", Controller: "c", Method: "m"}
	if got := ep.URL(); got != "http://h/c/m" {
		t.Fatalf("URL() = %q", got)
	}
	if got := ep.PostURL(); got != "http://h/c/m" {
		t.Fatalf("PostURL() = %q", got)
	}

	ep.Method = ""
	if got := ep.PostURL(); got != "http://h/c" {
		t.Fatalf("PostURL() without method = %q", got)
	}
	if got := ep.URL(); got != "http://h/c/" {
		t.Fatalf("URL() without method = %q", got)
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		escape bool
		want   string
	}{
		{name: "empty", params: map[string]string{}, want: ""},
		{name: "single", params: map[string]string{"id": "7"}, want: "id=7"},
		{name: "sorted keys", params: map[string]string{"b": "2", "a": "1", "c": "3"}, want: "a=1&b=2&c=3"},
		{name: "raw values", params: map[string]string{"q": "x&y=z", "n": "é"}, want: "n=é&q=x&y=z"},
		{name: "escaped values", params: map[string]string{"q": "x&y=z", "s": "a b"}, escape: true, want: "q=x%26y%3Dz&s=a+b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQuery(tt.params, tt.escape); got != tt.want {
				t.Fatalf("buildQuery = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildListQueryExpandsValues(t *testing.T) {
	got := buildListQuery(map[string][]string{
		"ids":  {"1", "2", "3"},
		"kind": {"a"},
		"none": nil,
	}, false)
	want := "ids=1&ids=2&ids=3&kind=a&none="
	if got != want {
		t.Fatalf("buildListQuery = %q, want %q", got, want)
	}

	if got := buildListQuery(nil, false); got != "" {
		t.Fatalf("buildListQuery(nil) = %q", got)
	}
}

func TestWithQuery(t *testing.T) {
	if got := withQuery("http://h/c/m", ""); got != "http://h/c/m" {
		t.Fatalf("withQuery empty = %q", got)
	}
	if got := withQuery("http://h/c/m", "a=1"); got != "http://h/c/m?a=1" {
		t.Fatalf("withQuery = %q", got)
	}
}
