package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/launchdarkly/http-cli-contract-tests/framework"

	"github.com/fatih/color"
)

type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		fmt.Fprintf(c.Out, "  %s\n", color.RedString("FAILED: %s", id))
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Out, "  %s\n", color.YellowString("SKIPPED: %s", id))
	} else {
		fmt.Fprintf(c.Out, "  %s\n", color.YellowString("SKIPPED: %s (%s)", id, reason))
	}
}
