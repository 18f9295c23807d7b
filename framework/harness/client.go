package harness

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
	"github.com/launchdarkly/http-cli-contract-tests/framework"
)

// clientWaitDelay bounds how long the harness waits for the client's output streams to close
// after the client has exited or been killed.
const clientWaitDelay = time.Second

// Client runs the client under test as a subprocess.
type Client struct {
	// Path is the client executable.
	Path string
	// Env is added to the harness's own environment for the subprocess.
	Env []string
	// Timeout limits how long the harness waits for the client to exit. Zero means no limit.
	Timeout time.Duration
	// Logger receives the command line and exit status of each run. It may be nil.
	Logger framework.Logger
}

// ClientOutput is the result of one run of the client.
type ClientOutput struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Timeout  time.Duration
}

// Failure returns a *ClientFailure if the client exited unsuccessfully, or nil.
func (o ClientOutput) Failure() error {
	if o.ExitCode == 0 && !o.TimedOut {
		return nil
	}
	return &ClientFailure{
		ExitCode: o.ExitCode,
		Stderr:   o.Stderr,
		TimedOut: o.TimedOut,
		Timeout:  o.Timeout,
	}
}

func (c *Client) logger() framework.Logger {
	if c.Logger == nil {
		return framework.NullLogger()
	}
	return c.Logger
}

// Invoke runs the client with the given arguments and waits for it to exit, capturing its
// output streams.
//
// A non-zero exit status is not an error here; callers decide what it means, usually with
// ClientOutput.Failure. The error is a *HarnessError if the client could not be started.
func (c *Client) Invoke(ctx context.Context, args ...string) (ClientOutput, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.WaitDelay = clientWaitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger().Printf("Running client: %s", CommandLine(c.Path, args...))
	err := cmd.Run()
	out := ClientOutput{
		Args:   args,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			out.ExitCode = exitErr.ExitCode()
		case cmd.ProcessState == nil:
			return out, &HarnessError{Op: "launch client " + c.Path, Err: err}
		default:
			// Wait gave up on output streams still held open by a process the client started.
			out.ExitCode = cmd.ProcessState.ExitCode()
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			out.TimedOut = true
			out.Timeout = c.Timeout
		}
	}
	c.logger().Printf("Client exited with status %d", out.ExitCode)
	if out.Stderr != "" {
		c.logger().Printf("Client error output: %s", strings.TrimSpace(out.Stderr))
	}
	return out, nil
}

// Version asks the client to report its version. This also verifies that the client can be
// launched at all.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.Invoke(ctx, clientdef.FlagVersion)
	if err != nil {
		return "", err
	}
	if err := out.Failure(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Stdout), nil
}
