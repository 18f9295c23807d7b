package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(path ...string) TestID { return TestID{Path: path} }

func makeFilters(t *testing.T, run, skip []string) RegexFilters {
	var f RegexFilters
	for _, s := range run {
		require.NoError(t, f.MustMatch.Set(s))
	}
	for _, s := range skip {
		require.NoError(t, f.MustNotMatch.Set(s))
	}
	return f
}

func TestNoFiltersAllowsEverything(t *testing.T) {
	f := makeFilters(t, nil, nil)
	assert.True(t, f.AsFilter(id("headers")))
	assert.True(t, f.AsFilter(id("headers", "configured headers")))
}

func TestRunFilterMatchesByLevel(t *testing.T) {
	f := makeFilters(t, []string{"headers/list"}, nil)
	assert.True(t, f.AsFilter(id("headers")))
	assert.True(t, f.AsFilter(id("headers", "list form")))
	assert.False(t, f.AsFilter(id("headers", "configured headers")))
	assert.False(t, f.AsFilter(id("payload")))
	assert.False(t, f.AsFilter(id("payload", "list form")))
}

func TestSkipFilterOnlyMatchesFullPattern(t *testing.T) {
	f := makeFilters(t, nil, []string{"payload/file"})
	assert.True(t, f.AsFilter(id("payload")))
	assert.False(t, f.AsFilter(id("payload", "payload_file")))
	assert.True(t, f.AsFilter(id("payload", "flat object")))

	g := makeFilters(t, nil, []string{"output"})
	assert.False(t, g.AsFilter(id("output")))
	assert.True(t, g.AsFilter(id("headers")))
}

func TestRepeatedFlagsAreAlternatives(t *testing.T) {
	f := makeFilters(t, []string{"^headers$", "^payload$"}, nil)
	assert.True(t, f.AsFilter(id("headers")))
	assert.True(t, f.AsFilter(id("payload")))
	assert.False(t, f.AsFilter(id("output")))
}

func TestInvalidRegex(t *testing.T) {
	var r RegexList
	assert.Error(t, r.Set("headers/("))
	assert.False(t, r.IsDefined())
}

func TestPrintFilterDescription(t *testing.T) {
	var buf bytes.Buffer
	PrintFilterDescription(&buf, makeFilters(t, nil, nil))
	assert.Empty(t, buf.String())

	PrintFilterDescription(&buf, makeFilters(t, []string{"a", "b"}, []string{"c"}))
	assert.Contains(t, buf.String(), `skip any not matching "a" or "b"`)
	assert.Contains(t, buf.String(), `skip any matching "c"`)
}
