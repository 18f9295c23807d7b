// Package harness runs the client under test against local HTTP servers.
//
// One test cycle is an Exchange: the harness starts a server on an OS-assigned loopback port,
// writes a client configuration that points at it to a new temporary file, runs the client as
// a subprocess with that file, and collects the client's output. The server and the file
// belong to that one cycle and are released before Exchange returns.
package harness
