package harness

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
)

// Recording stops once this much unclaimed data has been read from a connection. The head of
// the request that caused it is still available, since heads are recorded before bodies.
const maxRecordedBytes = 1 << 20

type recordingConnKey struct{}

// recordingListener hands out connections that keep a copy of what the client sent, so
// that a handler can see the request head as it was written rather than as net/http
// normalized it.
type recordingListener struct {
	net.Listener
}

func (l recordingListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &recordingConn{Conn: c}, nil
}

type recordingConn struct {
	net.Conn
	lock     sync.Mutex
	recorded []byte
}

func (c *recordingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.lock.Lock()
		if len(c.recorded) < maxRecordedBytes {
			c.recorded = append(c.recorded, p[:n]...)
		}
		c.lock.Unlock()
	}
	return n, err
}

// takeHead finds the head of the request whose request line starts with the given method
// and target, and discards everything recorded up to the end of it. Leftover body bytes of
// earlier requests on the same connection are skipped over.
func (c *recordingConn) takeHead(method, target string) ([]byte, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	requestLine := []byte(method + " " + target + " ")
	for from := 0; from < len(c.recorded); {
		i := bytes.Index(c.recorded[from:], requestLine)
		if i < 0 {
			return nil, false
		}
		start := from + i
		if start > 0 && c.recorded[start-1] != '\n' {
			from = start + 1
			continue
		}
		end, sepLen := headEnd(c.recorded[start:])
		if end < 0 {
			return nil, false
		}
		head := append([]byte(nil), c.recorded[start:start+end]...)
		c.recorded = append([]byte(nil), c.recorded[start+end+sepLen:]...)
		return head, true
	}
	return nil, false
}

func headEnd(data []byte) (int, int) {
	crlf := bytes.Index(data, []byte("\r\n\r\n"))
	lf := bytes.Index(data, []byte("\n\n"))
	switch {
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return crlf, 4
	case lf >= 0:
		return lf, 2
	default:
		return -1, 0
	}
}

func recordConnContext(ctx context.Context, c net.Conn) context.Context {
	if rc, ok := c.(*recordingConn); ok {
		return context.WithValue(ctx, recordingConnKey{}, rc)
	}
	return ctx
}

// receivedHeaderNames maps each canonical header name of the request to the name the
// client actually wrote, when the connection was recorded. If names differing only in case
// were sent, the first one wins.
func receivedHeaderNames(r *http.Request) map[string]string {
	rc, ok := r.Context().Value(recordingConnKey{}).(*recordingConn)
	if !ok {
		return nil
	}
	head, ok := rc.takeHead(r.Method, r.RequestURI)
	if !ok {
		return nil
	}
	return parseHeaderNames(head)
}

func parseHeaderNames(head []byte) map[string]string {
	reader := textproto.NewReader(bufio.NewReader(bytes.NewReader(append(head, "\r\n\r\n"...))))
	if _, err := reader.ReadLine(); err != nil {
		return nil
	}
	names := make(map[string]string)
	for {
		line, err := reader.ReadContinuedLine()
		if err != nil || line == "" {
			break
		}
		name, _, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		key := textproto.CanonicalMIMEHeaderKey(name)
		if _, seen := names[key]; !seen {
			names[key] = name
		}
	}
	return names
}
