// Package requesttests contains the client contract tests themselves and their supporting
// API.
//
// Each test builds a client configuration, runs the client once against an echo server, and
// checks that the request the server saw is the one the configuration describes. Harness
// infrastructure that does not depend on what is being checked, such as running the client
// and serving its request, is in the lower-level framework packages.
package requesttests
