package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
	"github.com/launchdarkly/http-cli-contract-tests/framework"
)

var errBodyNotText = errors.New("request body is not valid UTF-8 text")

// EchoServerOptions configures StartEchoServer.
type EchoServerOptions struct {
	// Logger receives one line for each request. If it is nil, the server is silent.
	Logger framework.Logger
}

// EchoServer responds to every request, with any method and path, with a JSON
// clientdef.RequestSnapshot describing that request.
type EchoServer struct {
	*MockServer
}

func StartEchoServer(opts EchoServerOptions) (*EchoServer, error) {
	s, err := StartMockServer(EchoHandler(opts.Logger))
	if err != nil {
		return nil, err
	}
	return &EchoServer{MockServer: s}, nil
}

// EchoHandler returns the handler used by EchoServer.
//
// The response is always status 200. If the request body is not valid UTF-8, the handler
// closes the connection without responding; the client will see that as a connection error.
func EchoHandler(logger framework.Logger) http.Handler {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := SnapshotRequest(r)
		if err != nil {
			logger.Printf("Dropping connection for %s %s: %s", r.Method, r.URL.RequestURI(), err)
			panic(http.ErrAbortHandler)
		}
		data, _ := json.Marshal(snapshot)
		logger.Printf("<< %s %s, echoing %s", r.Method, r.URL.RequestURI(), string(data))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}

// SnapshotRequest captures everything about a request that the echo server reflects.
//
// Only as many body bytes as the declared Content-Length are read; a request without a
// Content-Length has an empty body. Query values keep their order and repeated names.
// Header names are reflected as the client wrote them when the request arrived through a
// MockServer; values that appear more than once are joined with ", ".
func SnapshotRequest(r *http.Request) (clientdef.RequestSnapshot, error) {
	var body []byte
	if r.ContentLength > 0 && r.Body != nil {
		data, err := io.ReadAll(io.LimitReader(r.Body, r.ContentLength))
		if err != nil {
			return clientdef.RequestSnapshot{}, fmt.Errorf("could not read request body: %w", err)
		}
		body = data
	}
	if !utf8.Valid(body) {
		return clientdef.RequestSnapshot{}, errBodyNotText
	}

	// A malformed query still yields whatever pairs could be parsed.
	query, _ := url.ParseQuery(r.URL.RawQuery)

	received := receivedHeaderNames(r)
	nameAsReceived := func(key string) string {
		if name, ok := received[key]; ok {
			return name
		}
		return key
	}
	headers := make(map[string]string, len(r.Header)+1)
	for key, values := range r.Header {
		headers[nameAsReceived(key)] = strings.Join(values, ", ")
	}
	if r.Host != "" {
		headers[nameAsReceived("Host")] = r.Host
	}

	return clientdef.RequestSnapshot{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   query,
		Headers: headers,
		Body:    string(body),
	}, nil
}
