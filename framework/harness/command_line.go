package harness

import (
	"strings"

	"github.com/alessio/shellescape"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// CommandLine renders a command and its arguments as a shell would need them to be typed,
// for logging.
func CommandLine(path string, args ...string) string {
	var b commandBuilder
	b.add(path)
	b.add(args...)
	return b.String()
}
