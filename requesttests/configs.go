package requesttests

import (
	"github.com/launchdarkly/http-cli-contract-tests/clientdef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// basicPayload has a string field and a numeric one, so that a client that gets JSON types
// wrong is caught.
func basicPayload() ldvalue.Value {
	return ldvalue.ObjectBuild().
		Set("hello", ldvalue.String("pinga")).
		Set("count", ldvalue.Int(3)).
		Build()
}

// baselineConfig exercises every part of the configuration file at once: a path template,
// a method, headers, a path parameter, a query parameter and a JSON payload.
func baselineConfig() clientdef.RequestConfig {
	return clientdef.RequestConfig{
		URL:    "/users/{id}",
		Method: "POST",
		Headers: clientdef.ParamMap(map[string]string{
			"Content-Type": "application/json",
			"X-Test":       "true",
		}),
		PathParams:  clientdef.ParamMap(map[string]string{"id": "99"}),
		QueryParams: clientdef.ParamMap(map[string]string{"debug": "1"}),
		Payload:     basicPayload(),
	}
}

// getConfig has no payload, so that only the part of the request under test varies.
func getConfig(urlTemplate string) clientdef.RequestConfig {
	return clientdef.RequestConfig{
		URL:    urlTemplate,
		Method: "GET",
	}
}
