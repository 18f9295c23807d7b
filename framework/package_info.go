// Package framework contains the low-level implementation of test harness infrastructure
// that does not depend on what the client under test actually does.
//
// The general model is:
//
// 1. The client under test is an external program. The test harness runs it as a
// subprocess, handing it a configuration file and flags, and inspects its exit status and
// output (see the harness subpackage).
//
// 2. The test harness exposes short-lived local HTTP endpoints for the client to talk to. The
// main one is an echo server that describes each request it receives as JSON.
//
// 3. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results.
//
// The domain-specific code that knows what is being tested is responsible for building the
// client configurations and deciding what the client's output must look like.
package framework
