package harness

import (
	"os"
	"testing"
	"time"

	"github.com/launchdarkly/http-cli-contract-tests/internal/fakeclient"
)

func TestMain(m *testing.M) {
	fakeclient.MainIfRequested()
	os.Exit(m.Run())
}

// fakeClient runs this test binary as the client under test.
func fakeClient(fault fakeclient.Fault) *Client {
	return &Client{
		Path:    os.Args[0],
		Env:     fakeclient.Env(fault),
		Timeout: 10 * time.Second,
	}
}
