package requesttests

import (
	"strings"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"

	"github.com/stretchr/testify/assert"
)

func DoURLTemplatingTests(t *T) {
	t.Run("baseline request", func(t *T) {
		snapshot := t.RequireConformance(baselineConfig())

		assert.Equal(t, "/users/99", snapshot.Path, "placeholder was not substituted")
		assert.Equal(t, []string{"1"}, snapshot.Query["debug"], "query parameter was not sent")
	})

	t.Run("placeholder is replaced and no braces remain", func(t *T) {
		config := getConfig("/users/{id}")
		config.PathParams = clientdef.ParamMap(map[string]string{"id": "42"})
		snapshot := t.RequireConformance(config)

		assert.False(t, strings.ContainsAny(snapshot.Path, "{}"), "path still contains braces: %s", snapshot.Path)
	})

	t.Run("multiple placeholders", func(t *T) {
		config := getConfig("/orgs/{org}/teams/{team}/members")
		config.PathParams = clientdef.ParamMap(map[string]string{
			"org":  "acme",
			"team": "core",
		})
		t.RequireConformance(config)
	})

	t.Run("placeholder used more than once", func(t *T) {
		config := getConfig("/mirror/{name}/of/{name}")
		config.PathParams = clientdef.ParamMap(map[string]string{"name": "echo"})
		t.RequireConformance(config)
	})

	t.Run("path parameter value is URL-encoded", func(t *T) {
		config := getConfig("/files/{name}")
		config.PathParams = clientdef.ParamMap(map[string]string{"name": "annual report.pdf"})
		t.RequireConformance(config)
	})

	t.Run("path parameters as a list", func(t *T) {
		config := getConfig("/users/{id}/posts/{post}")
		config.PathParams = clientdef.ParamList(
			clientdef.Param{Name: "id", Value: "7"},
			clientdef.Param{Name: "post", Value: "first"},
		)
		t.RequireConformance(config)
	})

	t.Run("query string does not leak into path", func(t *T) {
		config := getConfig("/users/{id}")
		config.PathParams = clientdef.ParamMap(map[string]string{"id": "99"})
		config.QueryParams = clientdef.ParamMap(map[string]string{"debug": "1"})
		snapshot := t.RequireConformance(config)

		assert.NotContains(t, snapshot.Path, "?")
		assert.NotContains(t, snapshot.Path, "debug")
	})
}
