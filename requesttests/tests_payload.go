package requesttests

import (
	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
	"github.com/launchdarkly/http-cli-contract-tests/framework/harness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func jsonPostConfig(payload ldvalue.Value) clientdef.RequestConfig {
	return clientdef.RequestConfig{
		URL:     "/payload",
		Method:  "POST",
		Headers: clientdef.ParamMap(map[string]string{"Content-Type": "application/json"}),
		Payload: payload,
	}
}

func DoPayloadTests(t *T) {
	t.Run("flat object", func(t *T) {
		t.RequireConformance(jsonPostConfig(basicPayload()))
	})

	t.Run("number and string types are preserved", func(t *T) {
		payload := ldvalue.ObjectBuild().
			Set("integer", ldvalue.Int(3)).
			Set("negative", ldvalue.Int(-7)).
			Set("fraction", ldvalue.Float64(0.25)).
			Set("numericString", ldvalue.String("3")).
			Build()
		t.RequireConformance(jsonPostConfig(payload))
	})

	t.Run("nested values", func(t *T) {
		payload := ldvalue.ObjectBuild().
			Set("user", ldvalue.ObjectBuild().
				Set("name", ldvalue.String("Ada")).
				Set("admin", ldvalue.Bool(true)).
				Set("manager", ldvalue.Null()).
				Build()).
			Set("tags", ldvalue.ArrayOf(ldvalue.String("a"), ldvalue.String("b"))).
			Set("unicode", ldvalue.String("café ☃")).
			Build()
		t.RequireConformance(jsonPostConfig(payload))
	})

	t.Run("method defaults to POST when there is a payload", func(t *T) {
		config := jsonPostConfig(basicPayload())
		config.Method = ""
		snapshot := t.RequireConformance(config)

		assert.Equal(t, "POST", snapshot.Method)
	})

	t.Run("method defaults to GET when there is no payload", func(t *T) {
		snapshot := t.RequireConformance(clientdef.RequestConfig{URL: "/payload"})

		assert.Equal(t, "GET", snapshot.Method)
		assert.Empty(t, snapshot.Body)
	})

	t.Run("PUT request with payload", func(t *T) {
		config := jsonPostConfig(basicPayload())
		config.Method = "PUT"
		t.RequireConformance(config)
	})

	t.Run("payload read from a file", func(t *T) {
		payload := ldvalue.ObjectBuild().
			Set("source", ldvalue.String("file")).
			Set("count", ldvalue.Int(12)).
			Build()
		data, err := clientdef.CanonicalJSON(payload)
		require.NoError(t, err)
		path, remove, err := harness.WriteTempFile("payload-*.json", data)
		require.NoError(t, err)
		t.Defer(remove)

		config := jsonPostConfig(ldvalue.Null())
		config.PayloadFile = path
		expectation := ExpectationFor(config)
		expectation.Payload = payload
		t.RequireExpectation(config, expectation)
	})
}
