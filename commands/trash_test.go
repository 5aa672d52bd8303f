package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calens/finch/core/trash"
)

func TestTrashDisabledInStealthMode(t *testing.T) {
	tc := newTestCtx(t)
	tc.S.Stealth = true
	tc.Can = trash.New(tc.S, "/data/trash")

	assert.Equal(t, 0, Trash(tc.Ctx, []string{"t", "a.txt"}))
	assert.Contains(t, tc.stdout.String(), "stealth")

	// Nothing was spooled and the target is untouched.
	_, err := tc.S.Fs.Stat("/data/trash")
	assert.Error(t, err)
	_, err = tc.S.Fs.Stat("/home/u/a.txt")
	assert.NoError(t, err)
}

func TestUntrashDisabledInStealthMode(t *testing.T) {
	tc := newTestCtx(t)
	tc.S.Stealth = true
	tc.Can = trash.New(tc.S, "/data/trash")

	assert.Equal(t, 0, Untrash(tc.Ctx, []string{"u"}))
	assert.Contains(t, tc.stdout.String(), "stealth")
}
