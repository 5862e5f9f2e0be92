package conventional

import (
	"regexp"
	"strings"
)

var (
	bulletRE    = regexp.MustCompile(`^(\s*[-*+]\s+)(.*)$`)
	typeTokenRE = regexp.MustCompile(`^([a-z]+)(\([^)]+\))?(!)?:\s*`)
)

// SanitizeBody strips commit-type prefixes that models sometimes echo
// into body bullets, e.g. `- feat: did X` becomes `- did X`. Only the
// body section is touched: the header stays as-is and processing stops
// at the first footer line. Repeated prefixes are stripped to a fixed
// point, so running the sanitizer twice changes nothing.
func SanitizeBody(msg string) string {
	lines := strings.Split(msg, "\n")
	for i := 1; i < len(lines); i++ {
		if IsFooterLine(lines[i]) {
			break
		}
		m := bulletRE.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		rest := m[2]
		for {
			tm := typeTokenRE.FindStringSubmatch(rest)
			if tm == nil || !KnownType(tm[1]) {
				break
			}
			rest = rest[len(tm[0]):]
		}
		lines[i] = m[1] + rest
	}
	return strings.Join(lines, "\n")
}
