package requesttests

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
	"github.com/launchdarkly/http-cli-contract-tests/framework/harness"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoOutputTests(t *T) {
	t.Run("only the response body is printed when headers are excluded", func(t *T) {
		result := t.RequireSuccessfulRun(harness.Exchange{Config: baselineConfig()})

		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(result.Output.Stdout)), &doc),
			"output was not a single JSON document")
		assert.NotContains(t, doc, "status", "output should not include the response status")
	})

	t.Run("response status and headers are printed by default", func(t *T) {
		result := t.RequireSuccessfulRun(harness.Exchange{
			Config: baselineConfig(),
			Flags:  []string{},
		})
		envelope, err := harness.ParseEnvelope(result.Output)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, envelope.Status)
		assert.Contains(t, envelope.StatusText, "200")
		contentType, _ := envelope.Header("Content-Type")
		assert.Equal(t, "application/json", contentType, "missing or incorrect response Content-Type")

		var snapshot clientdef.RequestSnapshot
		require.NoError(t, json.Unmarshal(envelope.Body, &snapshot), "response body was not embedded as JSON")
		require.NoError(t, ExpectationFor(result.Config).Verify(snapshot))
	})

	t.Run("response body that is not JSON is printed as a string", func(t *T) {
		headers := make(http.Header)
		headers.Set("Content-Type", "text/plain")
		result := t.RequireSuccessfulRun(harness.Exchange{
			Config:  getConfig("/text"),
			Flags:   []string{},
			Handler: httphelpers.HandlerWithResponse(http.StatusOK, headers, []byte("plain text")),
		})
		envelope, err := harness.ParseEnvelope(result.Output)
		require.NoError(t, err)

		var body string
		require.NoError(t, json.Unmarshal(envelope.Body, &body), "body should have been a JSON string")
		assert.Equal(t, "plain text", body)
	})

	t.Run("silent mode prints nothing", func(t *T) {
		result := t.RequireSuccessfulRun(harness.Exchange{
			Config: baselineConfig(),
			Flags:  []string{clientdef.FlagSilent},
		})
		assert.Empty(t, strings.TrimSpace(result.Output.Stdout))
	})

	t.Run("silent mode reports an HTTP error status", func(t *T) {
		handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(http.StatusNotFound))
		_, err := t.RunClient(harness.Exchange{
			Config:  getConfig("/missing"),
			Flags:   []string{clientdef.FlagSilent},
			Handler: handler,
		})

		var failure *harness.ClientFailure
		require.True(t, errors.As(err, &failure), "expected the client to fail, got: %v", err)
		assert.Equal(t, clientdef.ExitHTTPError, failure.ExitCode)
		assert.Len(t, requests, 1, "client should have sent exactly one request")
	})
}
