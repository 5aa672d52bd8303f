package commands

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasList(t *testing.T) {
	tc := newTestCtx(t)
	tc.S.Aliases = map[string]string{
		"ll": "ls -l",
		"gs": "git status",
	}

	assert.Equal(t, 0, Alias(tc.Ctx, []string{"alias"}))
	assert.Equal(t, "gs='git status'\nll='ls -l'\n", tc.stdout.String())

	tc.stdout.Reset()
	assert.Equal(t, 0, Alias(tc.Ctx, []string{"alias", "ll"}))
	assert.Equal(t, "ll='ls -l'\n", tc.stdout.String())

	assert.Equal(t, 1, Alias(tc.Ctx, []string{"alias", "zz"}))
}

func TestActionsList(t *testing.T) {
	tc := newTestCtx(t)
	tc.S.Actions = map[string]string{
		"pick":   "fzfnav.sh",
		"dragon": "dragondrop.sh",
	}

	assert.Equal(t, 0, Actions(tc.Ctx, []string{"actions"}))
	assert.Equal(t, "dragon->dragondrop.sh\npick->fzfnav.sh\n", tc.stdout.String())
}

func TestCmdListsEverything(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Cmd(tc.Ctx, []string{"cmd"}))
	out := tc.stdout.String()
	for _, name := range []string{"cd", "sel", "trash", "ws", "/"} {
		assert.Contains(t, out, name)
	}
}

func TestVerGolden(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Ver(tc.Ctx, []string{"ver"}))
	goldenTester(t).Assert(t, "ver", tc.stdout.Bytes())
}

func TestTipsGolden(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Tips(tc.Ctx, []string{"tips"}))
	goldenTester(t).Assert(t, "tips", tc.stdout.Bytes())
}

func TestSplashGolden(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Splash(tc.Ctx, []string{"splash"}))
	goldenTester(t).Assert(t, "splash", tc.stdout.Bytes())
}

func TestHelpMentionsCommands(t *testing.T) {
	tc := newTestCtx(t)

	assert.Equal(t, 0, Help(tc.Ctx, []string{"?"}))
	assert.Contains(t, tc.stdout.String(), "Commands:")
	assert.Contains(t, tc.stdout.String(), "cd")
}

func TestQuitCapitalWritesLastFile(t *testing.T) {
	tc := newTestCtx(t)
	quit := false
	tc.Quit = func() { quit = true }

	Cd(tc.Ctx, []string{"cd", "docs"})
	assert.Equal(t, 0, QuitCmd(tc.Ctx, []string{"Q"}))
	assert.True(t, quit)

	data, err := afero.ReadFile(tc.S.Fs, "/data/.last")
	require.NoError(t, err)
	assert.Equal(t, "*0:/home/u/docs\n", string(data))
}

func TestQuitLowercaseSkipsLastFile(t *testing.T) {
	tc := newTestCtx(t)
	quit := false
	tc.Quit = func() { quit = true }

	assert.Equal(t, 0, QuitCmd(tc.Ctx, []string{"q"}))
	assert.True(t, quit)

	exists, err := afero.Exists(tc.S.Fs, "/data/.last")
	require.NoError(t, err)
	assert.False(t, exists)
}
