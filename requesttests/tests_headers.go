package requesttests

import (
	"github.com/launchdarkly/http-cli-contract-tests/clientdef"

	"github.com/stretchr/testify/assert"
)

func DoHeaderTests(t *T) {
	t.Run("configured headers are sent", func(t *T) {
		snapshot := t.RequireConformance(baselineConfig())

		contentType, _ := snapshot.Header("Content-Type")
		assert.Equal(t, "application/json", contentType, "missing or incorrect Content-Type header")
		xTest, _ := snapshot.Header("X-Test")
		assert.Equal(t, "true", xTest, "missing or incorrect X-Test header")
	})

	t.Run("header value is sent byte for byte", func(t *T) {
		config := getConfig("/headers")
		config.Headers = clientdef.ParamMap(map[string]string{
			"X-Custom-Value": `a=1; b="two, three"; c=/path?x`,
		})
		t.RequireConformance(config)
	})

	t.Run("header names are not case-sensitive", func(t *T) {
		config := getConfig("/headers")
		config.Headers = clientdef.ParamMap(map[string]string{
			"x-lower-case": "lower",
			"X-UPPER-CASE": "upper",
		})
		t.RequireConformance(config)
	})

	t.Run("header names are sent as configured", func(t *T) {
		config := getConfig("/headers")
		config.Headers = clientdef.ParamMap(map[string]string{
			"x-lower-case": "lower",
			"X-UPPER-CASE": "upper",
		})
		snapshot := t.RequireConformance(config)

		for _, name := range config.Headers.Names() {
			_, ok := snapshot.Headers[name]
			assert.True(t, ok, "header %q was not received with that exact name; received %v", name, snapshot.Headers)
		}
	})

	t.Run("headers as a list", func(t *T) {
		config := getConfig("/headers")
		config.Headers = clientdef.ParamList(
			clientdef.Param{Name: "Accept", Value: "application/json"},
			clientdef.Param{Name: "X-Request-Id", Value: "abc-123"},
		)
		t.RequireConformance(config)
	})
}
