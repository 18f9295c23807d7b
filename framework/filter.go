package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests in the same way as the -run and -skip flags of "go test": each
// pattern is split on "/" and each element is matched against the corresponding level of the
// test identifier.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatchPartial(id)) &&
		!r.MustNotMatch.AnyMatch(id)
}

// RegexList is a list of patterns that can be built up from repeated command-line flags.
type RegexList struct {
	sources  []string
	patterns [][]*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, s := range r.sources {
		ss = append(ss, `"`+s+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	var levels []*regexp.Regexp
	for _, part := range strings.Split(value, "/") {
		rx, err := regexp.Compile(part)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		levels = append(levels, rx)
	}
	r.sources = append(r.sources, value)
	r.patterns = append(r.patterns, levels)
	return nil
}

// Type is called by the command line parser when printing usage
func (r *RegexList) Type() string {
	return "regex"
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// AnyMatch is true if some pattern matches every one of its levels against the identifier.
// A group whose identifier is shorter than the pattern does not match.
func (r RegexList) AnyMatch(id TestID) bool {
	for _, levels := range r.patterns {
		if len(id.Path) >= len(levels) && matchLevels(levels, id.Path) {
			return true
		}
	}
	return false
}

// AnyMatchPartial is like AnyMatch, but a group matches if its identifier matches the leading
// levels of a pattern, since tests inside it might match the rest.
func (r RegexList) AnyMatchPartial(id TestID) bool {
	for _, levels := range r.patterns {
		if matchLevels(levels, id.Path) {
			return true
		}
	}
	return false
}

func matchLevels(levels []*regexp.Regexp, path []string) bool {
	for i, rx := range levels {
		if i >= len(path) {
			break
		}
		if !rx.MatchString(path[i]) {
			return false
		}
	}
	return true
}

func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}
}
