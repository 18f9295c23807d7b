package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const maxQuotedOutput = 500

// HarnessError means the test harness itself could not do something, such as binding a port
// or launching the client. It says nothing about whether the client is correct.
type HarnessError struct {
	Op  string
	Err error
}

func (e *HarnessError) Error() string {
	return fmt.Sprintf("harness error: could not %s: %s", e.Op, e.Err)
}

func (e *HarnessError) Unwrap() error {
	return e.Err
}

// ClientFailure means the client ran but exited with a non-zero status, or had to be
// stopped because it did not exit in time.
type ClientFailure struct {
	ExitCode int
	Stderr   string
	TimedOut bool
	Timeout  time.Duration
}

func (e *ClientFailure) Error() string {
	message := strings.TrimSpace(e.Stderr)
	if e.TimedOut {
		if message != "" {
			return fmt.Sprintf("client did not exit within %s (error output: %s)", e.Timeout, message)
		}
		return fmt.Sprintf("client did not exit within %s", e.Timeout)
	}
	if message != "" {
		return message
	}
	return fmt.Sprintf("client failed with exit status %d", e.ExitCode)
}

// OutputError means the client succeeded but what it printed was not the JSON document it
// should have printed. Expected describes that document, such as "a request description".
type OutputError struct {
	Output   string
	Expected string
	Err      error
}

// IsWrongShape is true if the output was valid JSON of the wrong type or structure.
func (e *OutputError) IsWrongShape() bool {
	var typeErr *json.UnmarshalTypeError
	return errors.As(e.Err, &typeErr)
}

func (e *OutputError) Error() string {
	output := e.Output
	if len(output) > maxQuotedOutput {
		output = output[:maxQuotedOutput] + "..."
	}
	if e.IsWrongShape() && e.Expected != "" {
		return fmt.Sprintf("client output is not %s (%s): %q", e.Expected, e.Err, output)
	}
	return fmt.Sprintf("client produced non-JSON output (%s): %q", e.Err, output)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}
