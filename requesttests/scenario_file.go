package requesttests

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/launchdarkly/http-cli-contract-tests/clientdef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// Scenario is an extra contract test defined in a YAML file rather than in code.
//
//	scenarios:
//	  - name: lookup by email
//	    request:
//	      url: /users/{email}
//	      method: GET
//	      path_params:
//	        email: ada@example.com
//	      query_params:
//	        - {name: field, value: name}
//	        - {name: field, value: roles}
//	    expect:
//	      path: /users/ada@example.com
//
// The expected request is derived from the request section as with ExpectationFor; the
// optional expect section overrides the expected path and adds query checks.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Request     ScenarioRequest `yaml:"request"`
	Expect      *ScenarioExpect `yaml:"expect,omitempty"`

	// Source is the file the scenario was loaded from.
	Source string `yaml:"-"`
}

// ScenarioRequest mirrors the client configuration file. A url beginning with "/" is
// relative to the echo server.
type ScenarioRequest struct {
	URL         string           `yaml:"url"`
	Method      string           `yaml:"method,omitempty"`
	Headers     clientdef.Params `yaml:"headers,omitempty"`
	PathParams  clientdef.Params `yaml:"path_params,omitempty"`
	QueryParams clientdef.Params `yaml:"query_params,omitempty"`
	Payload     interface{}      `yaml:"payload,omitempty"`
}

type ScenarioExpect struct {
	Path  string              `yaml:"path,omitempty"`
	Query map[string][]string `yaml:"query,omitempty"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Config returns the client configuration for the scenario.
func (s Scenario) Config() clientdef.RequestConfig {
	return clientdef.RequestConfig{
		URL:         s.Request.URL,
		Method:      s.Request.Method,
		Headers:     s.Request.Headers,
		PathParams:  s.Request.PathParams,
		QueryParams: s.Request.QueryParams,
		Payload:     ldvalue.CopyArbitraryValue(s.Request.Payload),
	}
}

// Expectation returns what the echo server must see for the scenario.
func (s Scenario) Expectation() Expectation {
	e := ExpectationFor(s.Config())
	if s.Expect == nil {
		return e
	}
	if s.Expect.Path != "" {
		e.Path = s.Expect.Path
	}
	names := make([]string, 0, len(s.Expect.Query))
	for name := range s.Expect.Query {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		replaced := false
		for i := range e.Query {
			if e.Query[i].Name == name {
				e.Query[i].Values = s.Expect.Query[name]
				replaced = true
			}
		}
		if !replaced {
			e.Query = append(e.Query, QueryExpectation{Name: name, Values: s.Expect.Query[name]})
		}
	}
	return e
}

// LoadScenarioFile reads the scenarios defined in a YAML file.
func LoadScenarioFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file scenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range file.Scenarios {
		s := &file.Scenarios[i]
		s.Source = path
		if s.Name == "" {
			return nil, fmt.Errorf("%s: scenario %d has no name", path, i+1)
		}
		if s.Request.URL == "" {
			return nil, fmt.Errorf("%s: scenario %q has no request url", path, s.Name)
		}
	}
	return file.Scenarios, nil
}

// LoadScenarioDir reads every .yaml or .yml file in a directory, in name order. Scenario
// names must be unique across all of the files.
func LoadScenarioDir(dir string) ([]Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ret []Scenario
	seen := make(map[string]string)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		scenarios, err := LoadScenarioFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		for _, s := range scenarios {
			if other, ok := seen[s.Name]; ok {
				return nil, fmt.Errorf("scenario %q is defined in both %s and %s", s.Name, other, s.Source)
			}
			seen[s.Name] = s.Source
		}
		ret = append(ret, scenarios...)
	}
	return ret, nil
}

func DoScenarioTests(t *T, scenarios []Scenario) {
	for _, s := range scenarios {
		scenario := s
		t.Run(scenario.Name, func(t *T) {
			if scenario.Description != "" {
				t.Debug("%s (from %s)", scenario.Description, scenario.Source)
			}
			t.RequireExpectation(scenario.Config(), scenario.Expectation())
		})
	}
}
