package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the state of a single test or subtest. It implements the TestingT interfaces
// of testify's assert and require packages.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()
}

// Run executes a root test action and returns the accumulated results of it and all of its
// subtests.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil && !c.skipped {
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.testLogger.TestError(c.id, addError)
			}
		}
		c.runCleanups()
		c.recordResult()
	}()

	action(c)
}

func (c *Context) recordResult() {
	if len(c.id.Path) == 0 {
		return // the root context is not a test
	}
	result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
	c.env.results.Tests = append(c.env.results.Tests, result)
	if c.failed {
		c.env.results.Failures = append(c.env.results.Failures, result)
	}
}

func (c *Context) runCleanups() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.failed = true
					err := fmt.Errorf("unexpected panic in cleanup: %+v", r)
					c.errors = append(c.errors, err)
					c.env.testLogger.TestError(c.id, err)
				}
			}()
			c.cleanups[i]()
		}()
	}
	c.cleanups = nil
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest. It is skipped without being called if the filter excludes it.
func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c.env.testLogger.TestStarted(id)
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := reformatError(fmt.Errorf(format, args...))
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to run when the test finishes, whether it passed, failed or
// was skipped. Deferred functions run in reverse order.
func (c *Context) Defer(cleanup func()) {
	c.cleanups = append(c.cleanups, cleanup)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// testify's assertion messages start with a blank line and a tab-indented block.
func reformatError(err error) error {
	s := strings.TrimLeft(err.Error(), "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "\t")
	}
	return errors.New(strings.Join(lines, "\n"))
}
