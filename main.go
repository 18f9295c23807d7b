package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/launchdarkly/http-cli-contract-tests/framework"
	"github.com/launchdarkly/http-cli-contract-tests/framework/harness"
	"github.com/launchdarkly/http-cli-contract-tests/requesttests"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errTestsFailed = errors.New("some tests failed")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	params := &commandParams{}
	cmd := &cobra.Command{
		Use:           "http-cli-contract-tests --client <path> [flags]",
		Short:         "Contract tests for a command-line HTTP request tool",
		Long:          "Runs the client against a local echo server with crafted configurations and checks the requests it sends.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(params, cmd.OutOrStdout())
		},
	}
	params.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func run(params *commandParams, out io.Writer) error {
	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = newDebugLogger(out)
	}

	client := &harness.Client{
		Path:    params.clientPath,
		Timeout: params.timeout,
		Logger:  mainDebugLogger,
	}
	version, err := client.Version(context.Background())
	if err != nil {
		return fmt.Errorf("client error: %w", err)
	}
	fmt.Fprintf(out, "Testing %s (%s)\n", version, params.clientPath)

	var scenarios []requesttests.Scenario
	if params.scenarioDir != "" {
		scenarios, err = requesttests.LoadScenarioDir(params.scenarioDir)
		if err != nil {
			return fmt.Errorf("invalid scenario files: %w", err)
		}
		fmt.Fprintf(out, "Loaded %d scenario(s) from %s\n", len(scenarios), params.scenarioDir)
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)

	fmt.Fprintln(out, "Running test suite")

	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := requesttests.RunTestSuite(client, scenarios, params.filters.AsFilter, testLogger)

	fmt.Fprintln(out)
	framework.PrintResults(out, results)
	if !results.OK() {
		return errTestsFailed
	}
	return nil
}

func newDebugLogger(out io.Writer) framework.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return logger
}
