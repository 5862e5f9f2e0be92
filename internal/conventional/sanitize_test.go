package conventional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBodyStripsTypePrefixes(t *testing.T) {
	in := "feat: add things\n\n- feat: added the loader\n- fix(parser)!: tightened checks\n* chore: bumped deps\nplain line stays"
	want := "feat: add things\n\n- added the loader\n- tightened checks\n* bumped deps\nplain line stays"
	assert.Equal(t, want, SanitizeBody(in))
}

func TestSanitizeBodyLeavesHeaderAlone(t *testing.T) {
	in := "feat: the header is not a bullet"
	assert.Equal(t, in, SanitizeBody(in))
}

func TestSanitizeBodyStopsAtFooters(t *testing.T) {
	in := "feat: x\n\n- fix: stripped here\n\nBREAKING CHANGE: feat: kept verbatim\nRefs: #1"
	out := SanitizeBody(in)
	assert.Contains(t, out, "- stripped here")
	assert.Contains(t, out, "BREAKING CHANGE: feat: kept verbatim")
}

func TestSanitizeBodyStripsStackedPrefixes(t *testing.T) {
	in := "feat: x\n\n- feat: fix: doubled up"
	assert.Equal(t, "feat: x\n\n- doubled up", SanitizeBody(in))
}

func TestSanitizeBodyIdempotent(t *testing.T) {
	cases := []string{
		"feat: x\n\n- feat: one\n- two\n\nRefs: #9",
		"fix: y\n\n- feat: fix: chore: stacked\n* perf(io): tuned",
		"docs: z",
		"feat: x\n\n- unrelated bullet\n- another",
	}
	for _, in := range cases {
		once := SanitizeBody(in)
		twice := SanitizeBody(once)
		assert.Equal(t, once, twice, "sanitizer must be idempotent for %q", in)
	}
}

func TestSanitizeBodyIgnoresUnknownTypeTokens(t *testing.T) {
	in := "feat: x\n\n- note: not a commit type\n- wip: also kept"
	assert.Equal(t, in, SanitizeBody(in))
}
