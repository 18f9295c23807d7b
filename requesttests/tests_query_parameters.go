package requesttests

import (
	"github.com/launchdarkly/http-cli-contract-tests/clientdef"

	"github.com/stretchr/testify/assert"
)

func DoQueryParameterTests(t *T) {
	t.Run("single value", func(t *T) {
		config := getConfig("/search")
		config.QueryParams = clientdef.ParamMap(map[string]string{"debug": "1"})
		snapshot := t.RequireConformance(config)

		assert.Equal(t, []string{"1"}, snapshot.Query["debug"])
	})

	t.Run("several parameters", func(t *T) {
		config := getConfig("/search")
		config.QueryParams = clientdef.ParamMap(map[string]string{
			"page":  "2",
			"limit": "50",
			"sort":  "name",
		})
		t.RequireConformance(config)
	})

	t.Run("repeated name keeps every value in order", func(t *T) {
		config := getConfig("/search")
		config.QueryParams = clientdef.ParamList(
			clientdef.Param{Name: "tag", Value: "red"},
			clientdef.Param{Name: "tag", Value: "green"},
			clientdef.Param{Name: "tag", Value: "blue"},
		)
		snapshot := t.RequireConformance(config)

		assert.Equal(t, []string{"red", "green", "blue"}, snapshot.Query["tag"])
	})

	t.Run("appended to a query already in the URL", func(t *T) {
		config := getConfig("/search?q=contract")
		config.QueryParams = clientdef.ParamMap(map[string]string{"page": "3"})
		snapshot := t.RequireConformance(config)

		assert.Equal(t, []string{"contract"}, snapshot.Query["q"])
	})

	t.Run("reserved characters are encoded", func(t *T) {
		config := getConfig("/search")
		config.QueryParams = clientdef.ParamMap(map[string]string{
			"filter": "name=a&b",
			"text":   "hello world?",
		})
		t.RequireConformance(config)
	})
}
