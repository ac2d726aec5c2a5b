package restclient

import (
	"net/url"
	"sort"
	"strings"
)

// Endpoint identifies a REST action as base address + controller + method segments.
type Endpoint struct {
	BaseURL    string `json:"base_url" yaml:"base_url"`
	Controller string `json:"controller" yaml:"controller"`
	Method     string `json:"method" yaml:"method"`
}

// URL joins the three segments as base/controller/method.
func (e Endpoint) URL() string {
	return e.BaseURL + "/" + e.Controller + "/" + e.Method
}

// PostURL is URL, except that an empty method yields base/controller.
func (e Endpoint) PostURL() string {
	if e.Method == "" {
		return e.BaseURL + "/" + e.Controller
	}
	return e.URL()
}

// queryToken renders one key=value pair, escaping both sides when asked to.
func queryToken(key, value string, escape bool) string {
	if escape {
		return url.QueryEscape(key) + "=" + url.QueryEscape(value)
	}
	return key + "=" + value
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildQuery renders params as k1=v1&k2=v2 in key order.
func buildQuery(params map[string]string, escape bool) string {
	if len(params) == 0 {
		return ""
	}
	tokens := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		tokens = append(tokens, queryToken(k, params[k], escape))
	}
	return strings.Join(tokens, "&")
}

// buildListQuery expands every value of a key into its own key=value token.
// A key with no values still contributes a bare "key=" token.
func buildListQuery(params map[string][]string, escape bool) string {
	if len(params) == 0 {
		return ""
	}
	tokens := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		values := params[k]
		if len(values) == 0 {
			tokens = append(tokens, queryToken(k, "", escape))
			continue
		}
		for _, v := range values {
			tokens = append(tokens, queryToken(k, v, escape))
		}
	}
	return strings.Join(tokens, "&")
}

// unsafeForRawQuery reports whether s contains a byte that breaks an unescaped
// query string: ASCII controls, space, DEL or the fragment marker '#'.
func unsafeForRawQuery(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; b <= ' ' || b == 0x7f || b == '#' {
			return true
		}
	}
	return false
}

// checkRawParams returns the first key/value pair that cannot be sent unescaped.
func checkRawParams(params map[string]string) (string, string, bool) {
	for _, k := range sortedKeys(params) {
		if unsafeForRawQuery(k) || unsafeForRawQuery(params[k]) {
			return k, params[k], false
		}
	}
	return "", "", true
}

func checkRawListParams(params map[string][]string) (string, string, bool) {
	for _, k := range sortedKeys(params) {
		if unsafeForRawQuery(k) {
			return k, "", false
		}
		for _, v := range params[k] {
			if unsafeForRawQuery(v) {
				return k, v, false
			}
		}
	}
	return "", "", true
}

// withQuery appends ?query to base when query is non-empty.
func withQuery(base, query string) string {
	if query == "" {
		return base
	}
	return base + "?" + query
}
