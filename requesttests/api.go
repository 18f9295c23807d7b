package requesttests

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
	"github.com/launchdarkly/http-cli-contract-tests/framework"
	"github.com/launchdarkly/http-cli-contract-tests/framework/harness"
)

type environment struct {
	client *harness.Client
	ctx    context.Context
}

// T represents a test or subtest in the client contract test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner, and with some extra features such as debug logging that are
// convenient for our use case. Those features are provided by our lower-level framework
// package.
//
// It also has methods for running the client under test. Each run gets its own echo server
// and configuration file, which are gone again by the time the method returns.
//
// To make test assertions, you can use the assert and require packages, passing the *T as if
// it were a *testing.T.
type T struct {
	context *framework.Context
	env     *environment
}

func newTestScope(context *framework.Context, env *environment) *T {
	return &T{context: context, env: env}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// Defer schedules a function to run when the test finishes.
func (t *T) Defer(cleanup func()) {
	t.context.Defer(cleanup)
}

// RunClient runs the client once, as described by harness.Client.Exchange. The client and
// the echo server log to this test's debug output.
func (t *T) RunClient(ex harness.Exchange) (harness.ExchangeResult, error) {
	if ex.ServerLogger == nil {
		ex.ServerLogger = framework.PrefixedLogger(t.DebugLogger(), "[echo server] ")
	}
	client := *t.env.client
	client.Logger = t.DebugLogger()
	if data, err := json.Marshal(ex.Config); err == nil {
		t.Debug("Client configuration: %s", string(data))
	}
	result, err := client.Exchange(t.env.ctx, ex)
	if result.Output.Stdout != "" {
		t.Debug("Client output: %s", result.Output.Stdout)
	}
	return result, err
}

// RequireSuccessfulRun is like RunClient, but fails the test and immediately exits if the
// harness could not run the client or the client did not exit successfully.
func (t *T) RequireSuccessfulRun(ex harness.Exchange) harness.ExchangeResult {
	result, err := t.RunClient(ex)
	if err != nil {
		var harnessErr *harness.HarnessError
		if errors.As(err, &harnessErr) {
			t.Errorf("%s", err)
		} else {
			t.Errorf("client failed: %s", err)
		}
		t.FailNow()
	}
	return result
}

// RequireSnapshot runs the client with response headers excluded, and returns the echo
// server's description of the request it sent. The test fails and immediately exits if the
// client fails or prints anything other than a JSON document.
func (t *T) RequireSnapshot(config clientdef.RequestConfig) clientdef.RequestSnapshot {
	result := t.RequireSuccessfulRun(harness.Exchange{Config: config})
	snapshot, err := harness.ParseSnapshot(result.Output)
	if err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
	return snapshot
}

// RequireExpectation runs the client and fails the test, naming the property that was wrong,
// if the echoed request does not meet the expectation.
func (t *T) RequireExpectation(config clientdef.RequestConfig, expectation Expectation) clientdef.RequestSnapshot {
	snapshot := t.RequireSnapshot(config)
	if err := expectation.Verify(snapshot); err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
	return snapshot
}

// RequireConformance runs the client and checks the echoed request against everything the
// configuration implies. See ExpectationFor.
func (t *T) RequireConformance(config clientdef.RequestConfig) clientdef.RequestSnapshot {
	return t.RequireExpectation(config, ExpectationFor(config))
}
