package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calens/finch/core/listing"
	"github.com/calens/finch/core/session"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
	assert.True(t, c.AutoCD)
	assert.Equal(t, "name", c.Sort)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	c, err := Load(fsys, "/cfg/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "sort: size\nshow_hidden: true\naliases:\n  ll: ls -l\n"
	require.NoError(t, afero.WriteFile(fsys, "/cfg/config.yaml", []byte(content), 0600))

	c, err := Load(fsys, "/cfg/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "size", c.Sort)
	assert.True(t, c.ShowHidden)
	assert.Equal(t, "ls -l", c.Aliases["ll"])
	// Untouched keys keep their defaults.
	assert.True(t, c.AutoOpen)
}

func TestLoadRejectsUnknownKeysAndBadValues(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.yaml", []byte("no_such_key: 1\n"), 0600))
	_, err := Load(fsys, "/a.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fsys, "/b.yaml", []byte("sort: bogus\n"), 0600))
	_, err = Load(fsys, "/b.yaml")
	assert.Error(t, err)
}

func TestInitWritesDefaultConfig(t *testing.T) {
	fsys := afero.NewMemMapFs()
	paths := DefaultPaths("/home/u")
	require.NoError(t, Init(fsys, paths))

	c, err := Load(fsys, paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	// A second Init leaves an existing file alone.
	require.NoError(t, afero.WriteFile(fsys, paths.ConfigFile, []byte("sort: size\n"), 0600))
	require.NoError(t, Init(fsys, paths))
	c, err = Load(fsys, paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "size", c.Sort)
}

func TestApply(t *testing.T) {
	s := session.New(afero.NewMemMapFs(), nil, "/", false)
	c := Default()
	c.Sort = "mtime"
	c.AutoCD = false
	c.Aliases = map[string]string{"ll": "ls -l"}

	c.Apply(s)
	assert.Equal(t, listing.SortMTime, s.ListOpts.Sort)
	assert.False(t, s.AutoCD)
	assert.Equal(t, "ls -l", s.Aliases["ll"])
}

func TestActionsRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	in := map[string]string{"pick": "fzfnav.sh", "dragon": "dragondrop.sh"}
	require.NoError(t, SaveActions(fsys, "/cfg/actions.cfm", in))

	out, err := LoadActions(fsys, "/cfg/actions.cfm")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	data, err := afero.ReadFile(fsys, "/cfg/actions.cfm")
	require.NoError(t, err)
	assert.Equal(t, "dragon=dragondrop.sh\npick=fzfnav.sh\n", string(data))
}

func TestActionsSkipsComments(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "# managed by hand\npick=fzfnav.sh\nbroken-line\n"
	require.NoError(t, afero.WriteFile(fsys, "/a.cfm", []byte(content), 0600))

	out, err := LoadActions(fsys, "/a.cfm")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"pick": "fzfnav.sh"}, out)
}

func TestWorkspacesRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	var slots [session.MaxWorkspaces]string
	slots[0] = "/home/u"
	slots[3] = "/srv/www"
	require.NoError(t, SaveWorkspaces(fsys, "/cfg/.last", slots, 3))

	data, err := afero.ReadFile(fsys, "/cfg/.last")
	require.NoError(t, err)
	assert.Equal(t, "0:/home/u\n*3:/srv/www\n", string(data))

	got, current, err := LoadWorkspaces(fsys, "/cfg/.last")
	require.NoError(t, err)
	assert.Equal(t, slots, got)
	assert.Equal(t, 3, current)
}

func TestPinRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, SavePin(fsys, "/cfg/.pin", "/srv"))

	pin, err := LoadPin(fsys, "/cfg/.pin")
	require.NoError(t, err)
	assert.Equal(t, "/srv", pin)

	require.NoError(t, SavePin(fsys, "/cfg/.pin", ""))
	pin, err = LoadPin(fsys, "/cfg/.pin")
	require.NoError(t, err)
	assert.Empty(t, pin)
}

func TestHistoryAndDirhist(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, SaveHistory(fsys, "/cfg/history", []string{"ls", "cd /tmp"}))
	cmds, err := LoadHistory(fsys, "/cfg/history")
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "cd /tmp"}, cmds)

	dirs, err := LoadDirhist(fsys, "/cfg/dirhist")
	require.NoError(t, err)
	assert.Empty(t, dirs)
}
