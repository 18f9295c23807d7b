package requesttests

import (
	"context"

	"github.com/launchdarkly/http-cli-contract-tests/framework"
	"github.com/launchdarkly/http-cli-contract-tests/framework/harness"
)

// RunTestSuite runs every contract test, followed by one test for each of the given
// scenarios.
func RunTestSuite(
	client *harness.Client,
	scenarios []Scenario,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	env := &environment{client: client, ctx: context.Background()}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.Run("URL templating", DoURLTemplatingTests)
		t.Run("query parameters", DoQueryParameterTests)
		t.Run("headers", DoHeaderTests)
		t.Run("payload", DoPayloadTests)
		t.Run("output", DoOutputTests)
		if len(scenarios) > 0 {
			t.Run("scenario files", func(t *T) {
				DoScenarioTests(t, scenarios)
			})
		}
	})
}
