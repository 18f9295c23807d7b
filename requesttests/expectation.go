package requesttests

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Properties of the echoed request, in the order Expectation.Verify checks them.
const (
	PropertyMethod   = "method"
	PropertyPath     = "path"
	PropertyQuery    = "query"
	PropertyHeader   = "header"
	PropertyBodyJSON = "body-json"
	PropertyBody     = "body"
)

// PolicyViolation describes the first property of an echoed request that did not match the
// expectation. Each property points at a different area of the client: URL templating, query
// encoding, header propagation or payload serialization.
type PolicyViolation struct {
	Property string
	Name     string
	Expected string
	Actual   string
}

func (v *PolicyViolation) Error() string {
	switch v.Property {
	case PropertyMethod:
		return fmt.Sprintf("unexpected method: expected %s, got %s", v.Expected, v.Actual)
	case PropertyPath:
		return fmt.Sprintf("unexpected path: expected %q, got %q", v.Expected, v.Actual)
	case PropertyQuery:
		return fmt.Sprintf("unexpected query: expected %s=%s, got %s", v.Name, v.Expected, v.Actual)
	case PropertyHeader:
		return fmt.Sprintf("missing or incorrect header %s: expected %q, got %s", v.Name, v.Expected, v.Actual)
	case PropertyBodyJSON:
		return fmt.Sprintf("body is not valid JSON: %q", v.Actual)
	default:
		return fmt.Sprintf("unexpected body: expected %s, got %s", v.Expected, v.Actual)
	}
}

// QueryExpectation is the exact sequence of values expected for one query parameter name.
type QueryExpectation struct {
	Name   string
	Values []string
}

// Expectation is what the echo server must have seen for a given client configuration.
//
// Only the query parameters and headers named here are checked; the client may send others.
type Expectation struct {
	Method     string
	Path       string
	Query      []QueryExpectation
	Headers    clientdef.Params
	HasPayload bool
	Payload    ldvalue.Value
}

// ExpectationFor derives the expected request from a configuration.
//
// Every {name} placeholder in the URL's path is replaced by its path parameter, and the path is
// compared after URL decoding. Query parameters already present in the URL come before the
// configured ones. The configured payload, if any, must arrive as a structurally equal JSON
// document. A payload_file payload cannot be known from the configuration alone; callers
// set Payload themselves in that case.
func ExpectationFor(config clientdef.RequestConfig) Expectation {
	path, rawQuery := splitURL(config.URL)
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	for _, p := range config.PathParams.Pairs {
		path = strings.ReplaceAll(path, "{"+p.Name+"}", p.Value)
	}

	values := make(map[string][]string)
	var names []string
	templateQuery, _ := url.ParseQuery(rawQuery)
	for name := range templateQuery {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		values[name] = templateQuery[name]
	}
	for _, p := range config.QueryParams.Pairs {
		if _, ok := values[p.Name]; !ok {
			names = append(names, p.Name)
		}
		values[p.Name] = append(values[p.Name], p.Value)
	}
	var query []QueryExpectation
	for _, name := range names {
		query = append(query, QueryExpectation{Name: name, Values: values[name]})
	}

	return Expectation{
		Method:     config.EffectiveMethod(),
		Path:       path,
		Query:      query,
		Headers:    config.Headers,
		HasPayload: config.HasPayload(),
		Payload:    config.Payload,
	}
}

// splitURL returns the path and raw query of a URL template. The template is not parsed as a
// URL, since placeholders are not valid URL syntax in every position.
func splitURL(template string) (string, string) {
	rest := template
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
		if j := strings.IndexAny(rest, "/?"); j >= 0 {
			rest = rest[j:]
		} else {
			rest = ""
		}
	}
	rest, _, _ = strings.Cut(rest, "#")
	path, rawQuery, _ := strings.Cut(rest, "?")
	if path == "" {
		path = "/"
	}
	return path, rawQuery
}

// Verify compares an echoed request against the expectation and returns a *PolicyViolation
// for the first property that does not match, or nil.
func (e Expectation) Verify(snapshot clientdef.RequestSnapshot) error {
	if snapshot.Method != e.Method {
		return &PolicyViolation{Property: PropertyMethod, Expected: e.Method, Actual: snapshot.Method}
	}
	if snapshot.Path != e.Path {
		return &PolicyViolation{Property: PropertyPath, Expected: e.Path, Actual: snapshot.Path}
	}
	for _, q := range e.Query {
		actual := snapshot.Query[q.Name]
		if !equalStrings(q.Values, actual) {
			return &PolicyViolation{Property: PropertyQuery, Name: q.Name,
				Expected: jsonText(q.Values), Actual: jsonText(actual)}
		}
	}
	for _, name := range e.Headers.Names() {
		expected := strings.Join(e.Headers.Values(name), ", ")
		actual, ok := snapshot.Header(name)
		if !ok || actual != expected {
			v := &PolicyViolation{Property: PropertyHeader, Name: name, Expected: expected, Actual: "no such header"}
			if ok {
				v.Actual = fmt.Sprintf("%q", actual)
			}
			return v
		}
	}
	return e.verifyBody(snapshot.Body)
}

func (e Expectation) verifyBody(body string) error {
	if !e.HasPayload {
		if body != "" {
			return &PolicyViolation{Property: PropertyBody, Expected: "an empty body", Actual: fmt.Sprintf("%q", body)}
		}
		return nil
	}
	if !json.Valid([]byte(body)) {
		return &PolicyViolation{Property: PropertyBodyJSON, Actual: body}
	}
	var parsed ldvalue.Value
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return &PolicyViolation{Property: PropertyBodyJSON, Actual: body}
	}
	if !parsed.Equal(e.Payload) {
		return &PolicyViolation{Property: PropertyBody, Expected: e.Payload.JSONString(), Actual: parsed.JSONString()}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func jsonText(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}
