package trash

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calens/finch/core/session"
)

func newTestCan(t *testing.T) *Can {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/home/u/docs", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/docs/report final.txt", []byte("r"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/docs/old.log", []byte("o"), 0644))

	s := session.New(fsys, nil, "/home/u/docs", false)
	s.Stdout = &bytes.Buffer{}
	s.Stderr = &bytes.Buffer{}
	s.Home = "/home/u"

	c := New(s, "")
	c.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return c
}

func TestTrashAndList(t *testing.T) {
	c := newTestCan(t)

	require.Equal(t, 0, c.Trash([]string{"report final.txt"}))

	// The file moved into the can.
	_, err := c.s.Fs.Stat("/home/u/docs/report final.txt")
	assert.Error(t, err)
	_, err = c.s.Fs.Stat("/home/u/.local/share/Trash/files/report final.txt")
	assert.NoError(t, err)

	// The info file carries the percent-encoded origin.
	data, err := afero.ReadFile(c.s.Fs,
		"/home/u/.local/share/Trash/info/report final.txt.trashinfo")
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Trash Info]")
	assert.Contains(t, string(data), "Path=/home/u/docs/report%20final.txt")
	assert.Contains(t, string(data), "DeletionDate=2024-03-01T12:00:00")

	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "report final.txt", items[0].Name)
	assert.Equal(t, "/home/u/docs/report final.txt", items[0].OrigPath)
}

func TestTrashNameCollision(t *testing.T) {
	c := newTestCan(t)

	require.Equal(t, 0, c.Trash([]string{"old.log"}))
	require.NoError(t, afero.WriteFile(c.s.Fs, "/home/u/docs/old.log", []byte("again"), 0644))
	require.Equal(t, 0, c.Trash([]string{"old.log"}))

	_, err := c.s.Fs.Stat("/home/u/.local/share/Trash/files/old.log")
	assert.NoError(t, err)
	_, err = c.s.Fs.Stat("/home/u/.local/share/Trash/files/old.log.1")
	assert.NoError(t, err)
}

func TestTrashMissingFile(t *testing.T) {
	c := newTestCan(t)
	assert.Equal(t, 1, c.Trash([]string{"nope.txt"}))
}

func TestUntrashRestoresOrigin(t *testing.T) {
	c := newTestCan(t)
	require.Equal(t, 0, c.Trash([]string{"old.log"}))

	assert.Equal(t, 0, c.Untrash([]string{"old.log"}))

	data, err := afero.ReadFile(c.s.Fs, "/home/u/docs/old.log")
	require.NoError(t, err)
	assert.Equal(t, "o", string(data))

	items, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUntrashUnknownName(t *testing.T) {
	c := newTestCan(t)
	require.Equal(t, 0, c.Trash([]string{"old.log"}))
	assert.Equal(t, 1, c.Untrash([]string{"never-trashed"}))
}

func TestUntrashAllWhenNoNames(t *testing.T) {
	c := newTestCan(t)
	require.Equal(t, 0, c.Trash([]string{"old.log", "report final.txt"}))

	assert.Equal(t, 0, c.Untrash(nil))
	_, err := c.s.Fs.Stat("/home/u/docs/old.log")
	assert.NoError(t, err)
	_, err = c.s.Fs.Stat("/home/u/docs/report final.txt")
	assert.NoError(t, err)
}

func TestEmpty(t *testing.T) {
	c := newTestCan(t)
	require.Equal(t, 0, c.Trash([]string{"old.log"}))
	assert.Equal(t, 0, c.Empty())

	items, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}
