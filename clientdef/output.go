package clientdef

import (
	"encoding/json"
	"strings"
)

// RequestSnapshot is the echo server's description of one request it received. With
// response headers excluded, it is exactly what the client prints.
type RequestSnapshot struct {
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Query   map[string][]string `json:"query"`
	Headers map[string]string   `json:"headers"`
	Body    string              `json:"body"`
}

// Header looks up a reflected header without regard to case.
func (s RequestSnapshot) Header(name string) (string, bool) {
	if value, ok := s.Headers[name]; ok {
		return value, true
	}
	for k, v := range s.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// ResponseEnvelope is what the client prints when response headers are not excluded. Body
// holds the response body itself if it was valid JSON, or a JSON string otherwise.
type ResponseEnvelope struct {
	Status     int             `json:"status"`
	StatusText string          `json:"status_text"`
	Headers    []Param         `json:"headers"`
	Body       json.RawMessage `json:"body"`
}

// Header looks up a response header without regard to case.
func (e ResponseEnvelope) Header(name string) (string, bool) {
	return Params{Pairs: e.Headers}.GetFold(name)
}
