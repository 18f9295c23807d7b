package requesttests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
)

func baselineSnapshot() clientdef.RequestSnapshot {
	return clientdef.RequestSnapshot{
		Method: "POST",
		Path:   "/users/99",
		Query:  map[string][]string{"debug": {"1"}},
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"X-Test":         "true",
			"Content-Length": "27",
			"Host":           "127.0.0.1:54321",
		},
		Body: `{"count":3,"hello":"pinga"}`,
	}
}

func requireViolation(t *testing.T, err error, property string) *PolicyViolation {
	var v *PolicyViolation
	require.True(t, errors.As(err, &v), "expected a policy violation, got %v", err)
	assert.Equal(t, property, v.Property)
	return v
}

func TestExpectationForBaseline(t *testing.T) {
	e := ExpectationFor(baselineConfig())
	assert.Equal(t, "POST", e.Method)
	assert.Equal(t, "/users/99", e.Path)
	assert.Equal(t, []QueryExpectation{{Name: "debug", Values: []string{"1"}}}, e.Query)
	assert.True(t, e.HasPayload)

	assert.NoError(t, e.Verify(baselineSnapshot()))
}

func TestExpectationIgnoresAbsoluteURLPrefix(t *testing.T) {
	config := baselineConfig().WithBaseURL("http://127.0.0.1:54321")
	assert.Equal(t, "/users/99", ExpectationFor(config).Path)

	assert.Equal(t, "/", ExpectationFor(getConfig("http://127.0.0.1:54321")).Path)
}

func TestExpectationQueryOrder(t *testing.T) {
	config := getConfig("/search?b=2&a=1&b=3")
	config.QueryParams = clientdef.ParamList(
		clientdef.Param{Name: "z", Value: "last"},
		clientdef.Param{Name: "b", Value: "4"},
	)
	e := ExpectationFor(config)
	assert.Equal(t, "/search", e.Path)
	assert.Equal(t, []QueryExpectation{
		{Name: "a", Values: []string{"1"}},
		{Name: "b", Values: []string{"2", "3", "4"}},
		{Name: "z", Values: []string{"last"}},
	}, e.Query)
}

func TestExpectationDecodesTemplatePath(t *testing.T) {
	config := getConfig("/files/{name}%2Fcopy")
	config.PathParams = clientdef.ParamMap(map[string]string{"name": "a b"})
	assert.Equal(t, "/files/a b/copy", ExpectationFor(config).Path)
}

func TestMethodViolation(t *testing.T) {
	s := baselineSnapshot()
	s.Method = "PUT"
	err := ExpectationFor(baselineConfig()).Verify(s)
	requireViolation(t, err, PropertyMethod)
	assert.Equal(t, "unexpected method: expected POST, got PUT", err.Error())
}

func TestPathViolation(t *testing.T) {
	s := baselineSnapshot()
	s.Path = "/users/{id}"
	err := ExpectationFor(baselineConfig()).Verify(s)
	requireViolation(t, err, PropertyPath)
	assert.Equal(t, `unexpected path: expected "/users/99", got "/users/{id}"`, err.Error())
}

func TestQueryViolation(t *testing.T) {
	s := baselineSnapshot()
	s.Query = map[string][]string{}
	err := ExpectationFor(baselineConfig()).Verify(s)
	v := requireViolation(t, err, PropertyQuery)
	assert.Equal(t, "debug", v.Name)
	assert.Equal(t, `unexpected query: expected debug=["1"], got []`, err.Error())

	s.Query = map[string][]string{"debug": {"1", "1"}}
	requireViolation(t, ExpectationFor(baselineConfig()).Verify(s), PropertyQuery)
}

func TestExtraQueryParametersAreAllowed(t *testing.T) {
	s := baselineSnapshot()
	s.Query["extra"] = []string{"x"}
	assert.NoError(t, ExpectationFor(baselineConfig()).Verify(s))
}

func TestHeaderViolation(t *testing.T) {
	s := baselineSnapshot()
	delete(s.Headers, "X-Test")
	err := ExpectationFor(baselineConfig()).Verify(s)
	v := requireViolation(t, err, PropertyHeader)
	assert.Equal(t, "X-Test", v.Name)
	assert.Equal(t, `missing or incorrect header X-Test: expected "true", got no such header`, err.Error())

	s.Headers["X-Test"] = "false"
	err = ExpectationFor(baselineConfig()).Verify(s)
	requireViolation(t, err, PropertyHeader)
	assert.Contains(t, err.Error(), `got "false"`)
}

func TestHeaderNamesAreNotCaseSensitive(t *testing.T) {
	s := baselineSnapshot()
	s.Headers = map[string]string{"content-type": "application/json", "x-test": "true"}
	assert.NoError(t, ExpectationFor(baselineConfig()).Verify(s))
}

func TestRepeatedHeaderValuesAreJoined(t *testing.T) {
	config := getConfig("/headers")
	config.Headers = clientdef.ParamList(
		clientdef.Param{Name: "X-Multi", Value: "a"},
		clientdef.Param{Name: "X-Multi", Value: "b"},
	)
	s := clientdef.RequestSnapshot{Method: "GET", Path: "/headers", Headers: map[string]string{"X-Multi": "a, b"}}
	assert.NoError(t, ExpectationFor(config).Verify(s))
}

func TestBodyNotJSONViolation(t *testing.T) {
	s := baselineSnapshot()
	s.Body = `{"count":3,"hello":"pinga"`
	err := ExpectationFor(baselineConfig()).Verify(s)
	requireViolation(t, err, PropertyBodyJSON)
	assert.Contains(t, err.Error(), "body is not valid JSON")
}

func TestBodyViolation(t *testing.T) {
	s := baselineSnapshot()
	s.Body = `{"count":"3","hello":"pinga"}`
	err := ExpectationFor(baselineConfig()).Verify(s)
	v := requireViolation(t, err, PropertyBody)
	assert.Contains(t, err.Error(), "unexpected body: expected ")
	assert.JSONEq(t, `{"count":3,"hello":"pinga"}`, v.Expected)
	assert.JSONEq(t, `{"count":"3","hello":"pinga"}`, v.Actual)
}

func TestBodyComparisonIgnoresKeyOrderAndWhitespace(t *testing.T) {
	s := baselineSnapshot()
	s.Body = "{\n  \"hello\": \"pinga\",\n  \"count\": 3.0\n}"
	assert.NoError(t, ExpectationFor(baselineConfig()).Verify(s))
}

func TestNoPayloadMeansEmptyBody(t *testing.T) {
	config := getConfig("/ping")
	s := clientdef.RequestSnapshot{Method: "GET", Path: "/ping"}
	assert.NoError(t, ExpectationFor(config).Verify(s))

	s.Body = "{}"
	err := ExpectationFor(config).Verify(s)
	requireViolation(t, err, PropertyBody)
	assert.Equal(t, `unexpected body: expected an empty body, got "{}"`, err.Error())
}

func TestFirstViolationWins(t *testing.T) {
	s := clientdef.RequestSnapshot{Method: "GET", Path: "/wrong", Body: "nope"}
	requireViolation(t, ExpectationFor(baselineConfig()).Verify(s), PropertyMethod)
}

func TestPayloadFileExpectationIsSetByCaller(t *testing.T) {
	config := clientdef.RequestConfig{URL: "/payload", PayloadFile: "/tmp/payload.json"}
	e := ExpectationFor(config)
	assert.Equal(t, "POST", e.Method)
	assert.True(t, e.HasPayload)
	assert.True(t, e.Payload.IsNull())

	e.Payload = ldvalue.ArrayOf(ldvalue.Int(1))
	assert.NoError(t, e.Verify(clientdef.RequestSnapshot{Method: "POST", Path: "/payload", Body: "[1]"}))
}
