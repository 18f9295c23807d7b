package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/http-cli-contract-tests/internal/fakeclient"
)

func TestMain(m *testing.M) {
	fakeclient.MainIfRequested()
	os.Exit(m.Run())
}

func useFakeClient(t *testing.T, fault fakeclient.Fault) {
	for _, kv := range fakeclient.Env(fault) {
		name, value, _ := strings.Cut(kv, "=")
		t.Setenv(name, value)
	}
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClientFlagIsRequired(t *testing.T) {
	_, err := execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"client" not set`)
}

func TestRunPassingSuite(t *testing.T) {
	useFakeClient(t, fakeclient.NoFault)
	out, err := execute("--client", os.Args[0], "--run", "^headers$", "--scenarios", "requesttests/testdata/scenarios")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Testing "+fakeclient.Version)
	assert.Contains(t, out, "Loaded 3 scenario(s)")
	assert.Contains(t, out, `skip any not matching "^headers$"`)
	assert.Contains(t, out, "[headers/configured headers are sent]")
	assert.Contains(t, out, "SKIPPED: payload")
	assert.Contains(t, out, "All tests passed")
}

func TestRunFailingSuite(t *testing.T) {
	useFakeClient(t, fakeclient.DropHeaders)
	out, err := execute("--client", os.Args[0], "--run", "^headers$/list", "--debug")
	assert.ErrorIs(t, err, errTestsFailed)
	assert.Contains(t, out, "FAILED: headers/headers as a list")
	assert.Contains(t, out, "missing or incorrect header Accept")
	assert.Contains(t, out, "DEBUG ")
	assert.Contains(t, out, "Running client: ")
	assert.Contains(t, out, "FAILED TESTS (1 of 2):")
}

func TestRunWithMissingClient(t *testing.T) {
	out, err := execute("--client", filepath.Join(t.TempDir(), "nothing-here"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client error: harness error: could not launch client")
	assert.NotContains(t, out, "Running test suite")
}

func TestRunWithInvalidScenarioDir(t *testing.T) {
	useFakeClient(t, fakeclient.NoFault)
	_, err := execute("--client", os.Args[0], "--scenarios", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario files")
}
