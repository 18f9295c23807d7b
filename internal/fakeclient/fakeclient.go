// Package fakeclient is a Go implementation of the client contract, used by this repository's
// own tests as the subprocess under test. It can be told to misbehave in specific ways, so
// that tests can check that the harness notices.
//
// A test package enables it by calling MainIfRequested from TestMain and then running its own
// test binary with the environment returned by Env.
package fakeclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
)

const (
	envActivate = "HTTP_CLI_CONTRACT_TESTS_FAKE_CLIENT"
	envFault    = "HTTP_CLI_CONTRACT_TESTS_FAKE_CLIENT_FAULT"
)

// Version is what the fake client prints for --version.
const Version = "fakeclient 1.0.0"

// Fault names a deliberate defect in the fake client.
type Fault string

const (
	NoFault Fault = ""
	// FailWithMessage exits with status 1 and an error message, without sending a request.
	FailWithMessage Fault = "fail-with-message"
	// FailSilently exits with status 1 and no error output.
	FailSilently Fault = "fail-silently"
	// NonJSONOutput prints HTML instead of the response body.
	NonJSONOutput Fault = "non-json-output"
	// WrongMethod always sends PUT.
	WrongMethod Fault = "wrong-method"
	// IgnorePathParams leaves placeholders in the URL.
	IgnorePathParams Fault = "ignore-path-params"
	// QueryInPath escapes the "?" so that the query becomes part of the path.
	QueryInPath Fault = "query-in-path"
	// DropQuery sends no query parameters.
	DropQuery Fault = "drop-query"
	// DropHeaders sends none of the configured headers.
	DropHeaders Fault = "drop-headers"
	// CanonicalHeaders sends header names in canonical form instead of as configured.
	CanonicalHeaders Fault = "canonical-headers"
	// TruncateBody cuts the last byte off the payload.
	TruncateBody Fault = "truncate-body"
	// StringifyNumbers turns numbers in an object payload into strings.
	StringifyNumbers Fault = "stringify-numbers"
	// Hang never exits on its own.
	Hang Fault = "hang"
	// LeaveChildRunning starts a process that keeps the output streams open for a few seconds,
	// and then hangs.
	LeaveChildRunning Fault = "leave-child-running"
	// HangBriefly waits a few seconds and then fails.
	HangBriefly Fault = "hang-briefly"
)

const briefHang = 5 * time.Second

type config struct {
	URL         *string          `json:"url"`
	Method      *string          `json:"method"`
	Headers     clientdef.Params `json:"headers"`
	PathParams  clientdef.Params `json:"path_params"`
	QueryParams clientdef.Params `json:"query_params"`
	Payload     json.RawMessage  `json:"payload"`
	PayloadFile *string          `json:"payload_file"`
}

// Env returns the environment variables that make a test binary act as the fake client.
func Env(fault Fault) []string {
	env := []string{envActivate + "=1"}
	if fault != NoFault {
		env = append(env, envFault+"="+string(fault))
	}
	return env
}

// MainIfRequested runs the fake client and exits, if the environment asks for it. Otherwise
// it does nothing.
func MainIfRequested() {
	if os.Getenv(envActivate) == "" {
		return
	}
	os.Exit(Main(os.Args[1:], os.Stdout, os.Stderr, Fault(os.Getenv(envFault))))
}

func usage(stderr io.Writer) int {
	fmt.Fprintln(stderr, "Usage: fakeclient [--silent] [--exclude-response-headers] [--version] <config.json>")
	return clientdef.ExitFailure
}

// Main behaves like the client's entry point and returns its exit status.
func Main(args []string, stdout, stderr io.Writer, fault Fault) int {
	silent, includeHeaders := false, true
	configPath := ""
	for _, arg := range args {
		switch {
		case arg == clientdef.FlagVersion:
			fmt.Fprintln(stdout, Version)
			return clientdef.ExitOK
		case arg == clientdef.FlagSilent:
			silent = true
		case arg == clientdef.FlagExcludeResponseHeaders:
			includeHeaders = false
		case strings.HasPrefix(arg, "-"), configPath != "":
			return usage(stderr)
		default:
			configPath = arg
		}
	}
	if configPath == "" {
		return usage(stderr)
	}

	switch fault {
	case FailWithMessage:
		fmt.Fprintln(stderr, "simulated client failure")
		return clientdef.ExitFailure
	case FailSilently:
		return clientdef.ExitFailure
	case Hang:
		time.Sleep(time.Hour)
		return clientdef.ExitFailure
	case HangBriefly:
		time.Sleep(briefHang)
		return clientdef.ExitFailure
	case LeaveChildRunning:
		child := exec.Command(os.Args[0], configPath)
		child.Env = append(os.Environ(), Env(HangBriefly)...)
		child.Stdout = stdout
		child.Stderr = stderr
		if err := child.Start(); err != nil {
			fmt.Fprintln(stderr, err)
			return clientdef.ExitFailure
		}
		time.Sleep(time.Hour)
		return clientdef.ExitFailure
	}

	req, err := buildRequest(configPath, fault)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return clientdef.ExitFailure
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(stderr, "\nRequest failed: %s\n", err)
		if silent {
			return clientdef.ExitTransportError
		}
		return clientdef.ExitFailure
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		fmt.Fprintf(stderr, "\nRequest failed: %s\n", err)
		if silent {
			return clientdef.ExitTransportError
		}
		return clientdef.ExitFailure
	}

	switch {
	case silent:
		if resp.StatusCode >= 400 {
			return clientdef.ExitHTTPError
		}
	case fault == NonJSONOutput:
		fmt.Fprintln(stdout, "<html><body>not what you expected</body></html>")
	case !includeHeaders:
		_, _ = stdout.Write(body)
	default:
		writeEnvelope(stdout, resp, body)
	}
	return clientdef.ExitOK
}

func buildRequest(configPath string, fault Fault) (*http.Request, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("Failed to read file: %s", configPath)
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("Invalid JSON structure: %s", err)
	}
	if cfg.URL == nil {
		return nil, errors.New("Missing required field: url")
	}

	var payload []byte
	hasPayload := len(cfg.Payload) != 0
	if hasPayload {
		payload, err = payloadBytes(cfg.Payload)
		if err != nil {
			return nil, err
		}
	}
	if cfg.PayloadFile != nil {
		if hasPayload {
			return nil, errors.New("Use only one of payload or payload_file.")
		}
		payload, err = os.ReadFile(*cfg.PayloadFile)
		if err != nil {
			return nil, fmt.Errorf("Failed to read payload_file: %s", *cfg.PayloadFile)
		}
		hasPayload = true
	}

	method := "GET"
	if cfg.Method != nil {
		method = *cfg.Method
	} else if hasPayload {
		method = "POST"
	}
	if fault == WrongMethod {
		method = "PUT"
	}

	target := *cfg.URL
	if fault != IgnorePathParams {
		for _, p := range cfg.PathParams.Pairs {
			target = strings.ReplaceAll(target, "{"+p.Name+"}", escape(p.Value))
		}
	}
	hasQuery := strings.Contains(target, "?")
	if fault != DropQuery {
		for _, p := range cfg.QueryParams.Pairs {
			separator := "?"
			if hasQuery {
				separator = "&"
			}
			target += separator + escape(p.Name) + "=" + escape(p.Value)
			hasQuery = true
		}
	}
	if fault == QueryInPath {
		target = strings.Replace(target, "?", "%3F", 1)
	}

	if hasPayload {
		switch fault {
		case TruncateBody:
			if len(payload) > 0 {
				payload = payload[:len(payload)-1]
			}
		case StringifyNumbers:
			payload = stringifyNumbers(payload)
		}
	}

	var body io.Reader
	if hasPayload {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return nil, fmt.Errorf("Invalid url value: %s", err)
	}
	if fault != DropHeaders {
		for _, h := range cfg.Headers.Pairs {
			if fault == CanonicalHeaders {
				req.Header.Add(h.Name, h.Value)
			} else {
				req.Header[h.Name] = append(req.Header[h.Name], h.Value)
			}
		}
	}
	return req, nil
}

// A string payload is sent as its contents; anything else is sent as the JSON text itself.
func payloadBytes(raw json.RawMessage) ([]byte, error) {
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.New("Invalid payload value.")
		}
		return []byte(s), nil
	}
	return raw, nil
}

// escape percent-encodes everything except unreserved characters.
func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func stringifyNumbers(payload []byte) []byte {
	var m map[string]interface{}
	if err := json.Unmarshal(payload, &m); err != nil {
		return payload
	}
	for k, v := range m {
		if n, ok := v.(float64); ok {
			m[k] = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	data, _ := json.Marshal(m)
	return data
}

func writeEnvelope(stdout io.Writer, resp *http.Response, body []byte) {
	envelope := clientdef.ResponseEnvelope{
		Status:     resp.StatusCode,
		StatusText: resp.Proto + " " + resp.Status,
		Headers:    []clientdef.Param{},
	}
	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range resp.Header[name] {
			envelope.Headers = append(envelope.Headers, clientdef.Param{Name: name, Value: value})
		}
	}
	if len(body) > 0 && json.Valid(body) {
		envelope.Body = body
	} else {
		envelope.Body, _ = json.Marshal(string(body))
	}
	data, _ := json.Marshal(envelope)
	fmt.Fprintf(stdout, "%s\n", data)
}
