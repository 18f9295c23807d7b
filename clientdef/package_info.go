// Package clientdef defines the contracts between the test harness and the HTTP client under
// test: the JSON configuration file the client reads, the command-line flags it accepts, and
// the JSON documents it prints.
package clientdef
