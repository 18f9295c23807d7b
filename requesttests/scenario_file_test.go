package requesttests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"
)

const scenarioDir = "testdata/scenarios"

func writeScenarioFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadScenarioDir(t *testing.T) {
	scenarios, err := LoadScenarioDir(scenarioDir)
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"search with template query", "lookup by email", "create user"}, names)
	assert.Equal(t, filepath.Join(scenarioDir, "users.yaml"), scenarios[1].Source)
}

func TestScenarioConfig(t *testing.T) {
	scenarios, err := LoadScenarioFile(filepath.Join(scenarioDir, "users.yaml"))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	lookup := scenarios[0].Config()
	assert.Equal(t, "/users/{email}", lookup.URL)
	assert.Equal(t, "GET", lookup.Method)
	assert.Equal(t, []string{"name", "roles"}, lookup.QueryParams.Values("field"))
	assert.True(t, lookup.QueryParams.AsList)
	assert.True(t, lookup.Payload.IsNull())

	create := scenarios[1].Config()
	assert.Equal(t, "POST", create.EffectiveMethod())
	expected := ldvalue.ObjectBuild().
		Set("name", ldvalue.String("Ada")).
		Set("admin", ldvalue.Bool(true)).
		Set("logins", ldvalue.Int(12)).
		Set("tags", ldvalue.ArrayOf(ldvalue.String("math"), ldvalue.String("engines"))).
		Build()
	assert.True(t, expected.Equal(create.Payload), "payload was %s", create.Payload.JSONString())
}

func TestScenarioExpectationOverrides(t *testing.T) {
	scenarios, err := LoadScenarioFile(filepath.Join(scenarioDir, "users.yaml"))
	require.NoError(t, err)
	e := scenarios[0].Expectation()
	assert.Equal(t, "/users/ada@example.com", e.Path)
	assert.Equal(t, []QueryExpectation{{Name: "field", Values: []string{"name", "roles"}}}, e.Query)

	search, err := LoadScenarioFile(filepath.Join(scenarioDir, "search.yml"))
	require.NoError(t, err)
	e = search[0].Expectation()
	assert.Equal(t, []QueryExpectation{
		{Name: "q", Values: []string{"engines"}},
		{Name: "page", Values: []string{"2"}},
	}, e.Query)
}

func TestScenarioExpectationAddsQueryChecks(t *testing.T) {
	s := Scenario{
		Name:    "extra",
		Request: ScenarioRequest{URL: "/x"},
		Expect:  &ScenarioExpect{Query: map[string][]string{"trace": {"on"}}},
	}
	assert.Equal(t, []QueryExpectation{{Name: "trace", Values: []string{"on"}}}, s.Expectation().Query)
	assert.NoError(t, s.Expectation().Verify(clientdef.RequestSnapshot{
		Method: "GET",
		Path:   "/x",
		Query:  map[string][]string{"trace": {"on"}},
	}))
}

func TestLoadScenarioFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadScenarioFile(writeScenarioFile(t, dir, "unknown.yaml", "scenarios:\n  - name: x\n    reqest: {url: /x}\n"))
	assert.Error(t, err)

	_, err = LoadScenarioFile(writeScenarioFile(t, dir, "noname.yaml", "scenarios:\n  - request: {url: /x}\n"))
	assert.EqualError(t, err, filepath.Join(dir, "noname.yaml")+": scenario 1 has no name")

	_, err = LoadScenarioFile(writeScenarioFile(t, dir, "nourl.yaml", "scenarios:\n  - name: x\n    request: {method: GET}\n"))
	assert.EqualError(t, err, filepath.Join(dir, "nourl.yaml")+`: scenario "x" has no request url`)

	_, err = LoadScenarioFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioDirRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "a.yaml", "scenarios:\n  - name: same\n    request: {url: /a}\n")
	writeScenarioFile(t, dir, "b.yml", "scenarios:\n  - name: same\n    request: {url: /b}\n")

	_, err := LoadScenarioDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario "same" is defined in both`)
}
