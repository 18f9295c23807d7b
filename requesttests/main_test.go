package requesttests

import (
	"os"
	"testing"
	"time"

	"github.com/launchdarkly/http-cli-contract-tests/framework"
	"github.com/launchdarkly/http-cli-contract-tests/framework/harness"
	"github.com/launchdarkly/http-cli-contract-tests/internal/fakeclient"
)

func TestMain(m *testing.M) {
	fakeclient.MainIfRequested()
	os.Exit(m.Run())
}

func fakeClient(fault fakeclient.Fault) *harness.Client {
	return &harness.Client{
		Path:    os.Args[0],
		Env:     fakeclient.Env(fault),
		Timeout: 10 * time.Second,
	}
}

func failureIDs(results framework.Results) []string {
	var ret []string
	for _, f := range results.Failures {
		ret = append(ret, f.TestID.String())
	}
	return ret
}
