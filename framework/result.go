package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

func (r Results) SkippedCount() int {
	n := 0
	for _, t := range r.Tests {
		if t.Skipped {
			n++
		}
	}
	return n
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// PrintResults writes a summary of the test run, listing every failed test with its errors.
func PrintResults(out io.Writer, results Results) {
	if results.OK() {
		fmt.Fprintln(out, color.GreenString("All tests passed"))
		return
	}
	fmt.Fprintln(out, color.RedString("FAILED TESTS (%d of %d):", len(results.Failures), len(results.Tests)))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "      %s\n", line)
			}
		}
	}
}
