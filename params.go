package main

import (
	"time"

	"github.com/launchdarkly/http-cli-contract-tests/framework"

	"github.com/spf13/pflag"
)

const defaultClientTimeout = time.Second * 30

type commandParams struct {
	clientPath  string
	filters     framework.RegexFilters
	timeout     time.Duration
	scenarioDir string
	debug       bool
	debugAll    bool
}

func (c *commandParams) bind(fs *pflag.FlagSet) {
	fs.StringVar(&c.clientPath, "client", "", "path of the client executable to test")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.DurationVar(&c.timeout, "timeout", defaultClientTimeout, "how long to wait for each client run (0 to wait forever)")
	fs.StringVar(&c.scenarioDir, "scenarios", "", "directory of additional YAML test scenarios")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
}
