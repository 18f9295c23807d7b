package harness

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
	"github.com/launchdarkly/http-cli-contract-tests/framework"
)

// Exchange describes one run of the client against a server owned by that run.
type Exchange struct {
	// Config is the client configuration. A URL beginning with "/" is resolved against the
	// server's base URL.
	Config clientdef.RequestConfig

	// Flags go on the command line before the configuration file path. If nil, the client is
	// told to exclude response headers, so that it prints only the response body.
	Flags []string

	// Handler answers the client's request. If nil, the server is an echo server.
	Handler http.Handler

	// ServerLogger is given to the echo server. If nil, the server is silent.
	ServerLogger framework.Logger
}

// ExchangeResult records what happened during an Exchange.
type ExchangeResult struct {
	Config     clientdef.RequestConfig
	ServerURL  string
	ConfigPath string
	Output     ClientOutput
}

// Exchange runs one complete test cycle: start the server, write the configuration, run the
// client, and collect its output.
//
// The error is a *HarnessError if the cycle could not be carried out, or a *ClientFailure if
// the client exited unsuccessfully. Whatever happens, the configuration file has been deleted
// and the server stopped by the time Exchange returns.
func (c *Client) Exchange(ctx context.Context, ex Exchange) (ExchangeResult, error) {
	var result ExchangeResult

	server, err := ex.startServer()
	if err != nil {
		return result, err
	}
	defer func() {
		_ = server.Close()
	}()
	result.ServerURL = server.BaseURL()
	result.Config = ex.Config.WithBaseURL(server.BaseURL())

	path, remove, err := WriteTempConfig(result.Config)
	if err != nil {
		return result, err
	}
	defer remove()
	result.ConfigPath = path

	flags := ex.Flags
	if flags == nil {
		flags = []string{clientdef.FlagExcludeResponseHeaders}
	}
	args := append(append([]string(nil), flags...), path)
	result.Output, err = c.Invoke(ctx, args...)
	if err != nil {
		return result, err
	}
	return result, result.Output.Failure()
}

func (ex Exchange) startServer() (*MockServer, error) {
	if ex.Handler != nil {
		return StartMockServer(ex.Handler)
	}
	echo, err := StartEchoServer(EchoServerOptions{Logger: ex.ServerLogger})
	if err != nil {
		return nil, err
	}
	return echo.MockServer, nil
}

// ParseSnapshot interprets the client's standard output as the echo server's description of
// the request. The error is an *OutputError if the output is not JSON, or is JSON that does
// not have the shape of a snapshot.
func ParseSnapshot(out ClientOutput) (clientdef.RequestSnapshot, error) {
	var snapshot clientdef.RequestSnapshot
	if err := parseOutput(out, "a request description", &snapshot); err != nil {
		return clientdef.RequestSnapshot{}, err
	}
	return snapshot, nil
}

// ParseEnvelope interprets the client's standard output as the document it prints when
// response headers are included.
func ParseEnvelope(out ClientOutput) (clientdef.ResponseEnvelope, error) {
	var envelope clientdef.ResponseEnvelope
	if err := parseOutput(out, "a response envelope", &envelope); err != nil {
		return clientdef.ResponseEnvelope{}, err
	}
	return envelope, nil
}

func parseOutput(out ClientOutput, expected string, target interface{}) error {
	trimmed := strings.TrimSpace(out.Stdout)
	if err := json.Unmarshal([]byte(trimmed), target); err != nil {
		return &OutputError{Output: out.Stdout, Expected: expected, Err: err}
	}
	return nil
}
