package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchGlob(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Search(tc.Ctx, []string{"/*.txt"}))
	assert.Equal(t, "3 a.txt\n4 b.txt\n", tc.stdout.String())
}

func TestSearchRegexFallback(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Search(tc.Ctx, []string{"/^(docs|music)$"}))
	assert.Equal(t, "1 docs\n2 music\n", tc.stdout.String())
}

func TestSearchCaseFolding(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Search(tc.Ctx, []string{"/NOTES*"}))
	assert.Equal(t, "5 notes.md\n", tc.stdout.String())

	tc.S.CaseSensPath = true
	tc.stdout.Reset()
	assert.Equal(t, 1, Search(tc.Ctx, []string{"/NOTES*"}))
}

func TestSearchSeparatePatternArg(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Search(tc.Ctx, []string{"/", "docs"}))
	assert.Equal(t, "1 docs\n", tc.stdout.String())
}

func TestSearchNoMatches(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 1, Search(tc.Ctx, []string{"/zzz*"}))
	assert.Contains(t, tc.stderr.String(), "no matches")
}

func TestSearchMissingPattern(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 1, Search(tc.Ctx, []string{"/"}))
}
