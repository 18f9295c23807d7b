package harness

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

const loopbackListenAddress = "127.0.0.1:0"
const serverShutdownTimeout = time.Second * 5

// MockServer is an HTTP server listening on an OS-assigned port of the loopback interface.
// It serves requests on its own goroutine until Close is called.
//
// The server never writes anything to the process's standard output or error streams.
type MockServer struct {
	server   *http.Server
	listener net.Listener
	baseURL  string
	done     chan struct{}
	serveErr error
	closing  sync.Once
	closeErr error
}

// StartMockServer binds a new loopback port and starts serving requests with the handler.
//
// The port is listening when StartMockServer returns, so there is no need to wait for it.
func StartMockServer(handler http.Handler) (*MockServer, error) {
	listener, err := net.Listen("tcp", loopbackListenAddress)
	if err != nil {
		return nil, &HarnessError{Op: "bind a loopback port", Err: err}
	}
	s := &MockServer{
		server: &http.Server{
			Handler:     handler,
			ErrorLog:    log.New(io.Discard, "", 0),
			ConnContext: recordConnContext,
		},
		listener: recordingListener{Listener: listener},
		baseURL:  "http://" + listener.Addr().String(),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveErr = err
		}
	}()
	return s, nil
}

// BaseURL returns the server's URL, such as "http://127.0.0.1:54321", with no trailing slash.
func (s *MockServer) BaseURL() string {
	return s.baseURL
}

func (s *MockServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Close stops the server and waits for its goroutine to exit. Active requests are given a
// short time to finish before their connections are closed. It is safe to call Close more
// than once.
func (s *MockServer) Close() error {
	s.closing.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			_ = s.server.Close()
		}
		<-s.done
		s.closeErr = s.serveErr
	})
	return s.closeErr
}
