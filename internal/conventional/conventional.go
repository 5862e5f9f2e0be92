// Package conventional implements the commit message grammar this tool
// emits: a `type(scope)!: description` header, optional body, optional
// footers. The exact formatting is a hard contract since the output
// lands verbatim in version control.
package conventional

import (
	"fmt"
	"regexp"
	"strings"
)

// HeaderMaxLen is the hard cap for the first line of a commit message.
const HeaderMaxLen = 72

// BreakingToken is the footer token announcing an incompatible change.
// The casing is part of the format contract.
const BreakingToken = "BREAKING CHANGE"

// Types lists the commit types this tool will put in a header.
var Types = []string{
	"feat", "fix", "docs", "style", "refactor", "perf", "test", "build", "ci", "chore",
}

var typeSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Types))
	for _, t := range Types {
		m[t] = struct{}{}
	}
	return m
}()

// KnownType reports whether s is one of the accepted commit types.
func KnownType(s string) bool {
	_, ok := typeSet[s]
	return ok
}

// headerRE matches `type(scope)!: description`. The type token is
// checked against Types separately so violations can name the bad token.
var headerRE = regexp.MustCompile(`^([a-z]+)(\([^)]+\))?(!)?:\s.+$`)

// footerRE matches the start of a footer block: `Token: value`,
// `Token #ref`, or a breaking-change token.
var footerRE = regexp.MustCompile(`^(?:BREAKING[ -]CHANGE|[A-Za-z][A-Za-z-]*)(?::[ \t]|[ \t]#)`)

// IsFooterLine reports whether line opens a footer.
func IsFooterLine(line string) bool { return footerRE.MatchString(line) }

// HeaderOf returns the first line of msg without a trailing CR.
func HeaderOf(msg string) string {
	header, _, _ := strings.Cut(msg, "\n")
	return strings.TrimRight(header, "\r")
}

// CheckHeader inspects the first line of msg and returns the violated
// rules as plain-text problem descriptions, empty when well formed.
// The descriptions double as repair instructions for the model, so they
// name the expected shape rather than internal rule ids.
func CheckHeader(msg string) []string {
	header := HeaderOf(msg)
	if strings.TrimSpace(header) == "" {
		return []string{"the message is empty"}
	}

	var problems []string
	m := headerRE.FindStringSubmatch(header)
	switch {
	case m == nil:
		problems = append(problems, "the header must look like type(scope)!: description, with a single space after the colon")
	case !KnownType(m[1]):
		problems = append(problems, fmt.Sprintf("unknown commit type %q, expected one of %s", m[1], strings.Join(Types, ", ")))
	}
	if n := len([]rune(header)); n > HeaderMaxLen {
		problems = append(problems, fmt.Sprintf("the header is %d characters long, the limit is %d", n, HeaderMaxLen))
	}
	return problems
}

// Header renders the first line from structured fields.
func Header(typ, scope string, breaking bool, description string) string {
	var b strings.Builder
	b.WriteString(typ)
	if scope != "" {
		b.WriteString("(")
		b.WriteString(scope)
		b.WriteString(")")
	}
	if breaking {
		b.WriteString("!")
	}
	b.WriteString(": ")
	b.WriteString(description)
	return b.String()
}

// Assemble builds a full message: header, blank line, body, blank line,
// footers. Empty body and footers collapse cleanly. A breaking change
// is marked with `!` in the header; EnsureBreakingFooter covers
// messages whose header came from elsewhere without the marker.
func Assemble(typ, scope string, breaking bool, description, body string, footers []string) string {
	var b strings.Builder
	b.WriteString(Header(typ, scope, breaking, description))

	if body := strings.TrimSpace(body); body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}

	kept := footers[:0:0]
	for _, f := range footers {
		if f = strings.TrimSpace(f); f != "" {
			kept = append(kept, f)
		}
	}
	if len(kept) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(kept, "\n"))
	}
	return b.String()
}

// EnsureBreakingFooter appends a `BREAKING CHANGE: detail` footer when
// the header carries no `!` marker and no breaking footer exists yet.
// Messages that already announce the break are returned unchanged.
func EnsureBreakingFooter(msg, detail string) string {
	if m := headerRE.FindStringSubmatch(HeaderOf(msg)); m != nil && m[3] == "!" {
		return msg
	}
	if hasBreakingFooter(msg) {
		return msg
	}
	if detail = strings.TrimSpace(detail); detail == "" {
		detail = "see description"
	}
	return strings.TrimRight(msg, "\n") + "\n\n" + BreakingToken + ": " + detail
}

func hasBreakingFooter(msg string) bool {
	for _, line := range strings.Split(msg, "\n") {
		if strings.HasPrefix(line, "BREAKING CHANGE:") || strings.HasPrefix(line, "BREAKING-CHANGE:") {
			return true
		}
	}
	return false
}

// TruncateHeader shortens the first line to HeaderMaxLen characters,
// ending it with an ellipsis. Body and footers pass through untouched.
func TruncateHeader(msg string) string {
	header, rest, found := strings.Cut(msg, "\n")
	if h := []rune(strings.TrimRight(header, "\r")); len(h) > HeaderMaxLen {
		header = string(h[:HeaderMaxLen-3]) + "..."
	}
	if found {
		return header + "\n" + rest
	}
	return header
}
