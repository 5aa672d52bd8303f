package parse

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calens/finch/core/listing"
)

func testEnv(t *testing.T) *Env {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work/sub", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/work/a.txt", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/work/b.txt", []byte("b"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/work/notes.md", []byte("n"), 0644))

	snap, err := listing.List(fsys, "/work", listing.Options{})
	require.NoError(t, err)

	return &Env{
		Fs:       fsys,
		Home:     "/home/u",
		Cwd:      "/work",
		Snapshot: snap,
		Aliases:  map[string]string{},
		UserVars: map[string]string{},
	}
}

func TestSplitChain(t *testing.T) {
	cases := []struct {
		in       string
		expected []Fragment
	}{
		{"ls", []Fragment{{Text: "ls"}}},
		{"cd /tmp; ls", []Fragment{{Text: "cd /tmp"}, {Text: "ls"}}},
		{"cd /tmp && ls", []Fragment{{Text: "cd /tmp"}, {Text: "ls", Cond: true}}},
		{"a; b && c", []Fragment{{Text: "a"}, {Text: "b"}, {Text: "c", Cond: true}}},
		{`echo "a;b"`, []Fragment{{Text: `echo "a;b"`}}},
		{`echo 'x && y'`, []Fragment{{Text: `echo 'x && y'`}}},
		{`echo a\;b`, []Fragment{{Text: `echo a\;b`}}},
		// A lone & backgrounds, it never splits.
		{"sleep 5 &", []Fragment{{Text: "sleep 5 &"}}},
		{"foo & bar", []Fragment{{Text: "foo & bar"}}},
		{";; ;", nil},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, SplitChain(tc.in))
		})
	}
}

func TestTokenizeQuotingAndBackground(t *testing.T) {
	env := testEnv(t)

	cmd, err := Parse(`o "my file.txt" second`, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"o", "my file.txt", "second"}, cmd.Args)
	assert.False(t, cmd.Background)

	cmd, err = Parse("mpv video.mkv &", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"mpv", "video.mkv"}, cmd.Args)
	assert.True(t, cmd.Background)

	cmd, err = Parse("mpv video.mkv&", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"mpv", "video.mkv"}, cmd.Args)
	assert.True(t, cmd.Background)

	cmd, err = Parse(`touch escaped\ name`, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"touch", "escaped name"}, cmd.Args)
}

func TestComment(t *testing.T) {
	env := testEnv(t)

	cmd, err := Parse("# just a note", env)
	require.NoError(t, err)
	assert.True(t, cmd.Comment)

	// A #-prefixed existing path is not a comment.
	require.NoError(t, afero.WriteFile(env.Fs, "/work/#tag", []byte("x"), 0644))
	cmd, err = Parse("#tag", env)
	require.NoError(t, err)
	assert.False(t, cmd.Comment)
	assert.Equal(t, []string{"#tag"}, cmd.Args)
}

func TestAssignment(t *testing.T) {
	env := testEnv(t)

	cmd, err := Parse("docs=/work/sub", env)
	require.NoError(t, err)
	require.NotNil(t, cmd.Assign)
	assert.Equal(t, "docs", cmd.Assign.Name)
	assert.Equal(t, "/work/sub", cmd.Assign.Value)

	for _, in := range []string{"2x=3", "=v", "a-b=c"} {
		cmd, err = Parse(in, env)
		require.NoError(t, err)
		assert.Nil(t, cmd.Assign, in)
	}
}

func TestSelExpansion(t *testing.T) {
	env := testEnv(t)
	env.Sel = []string{"/work/a.txt", "/work/b.txt"}

	cmd, err := Parse("c sel /tmp", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "/work/a.txt", "/work/b.txt", "/tmp"}, cmd.Args)

	// An empty selection expands to zero tokens.
	env.Sel = nil
	cmd, err = Parse("c sel /tmp", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "/tmp"}, cmd.Args)
}

func TestSelInCommandPositionIsNotAKeyword(t *testing.T) {
	env := testEnv(t)
	env.Sel = []string{"/work/a.txt"}

	cmd, err := Parse("sel b.txt", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"sel", "b.txt"}, cmd.Args)

	cmd, err = Parse("sel", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"sel"}, cmd.Args)
}

func TestQuotedMarksExpandedTokens(t *testing.T) {
	env := testEnv(t)
	env.Sel = []string{"/work/a.txt"}

	cmd, err := Parse("grep foo | wc -l", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"grep", "foo", "|", "wc", "-l"}, cmd.Args)
	assert.Equal(t, []bool{false, false, false, false, false}, cmd.Quoted)

	cmd, err = Parse(`wc sel "a b"`, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"wc", "/work/a.txt", "a b"}, cmd.Args)
	assert.Equal(t, []bool{false, true, true}, cmd.Quoted)
}

func TestPinnedComma(t *testing.T) {
	env := testEnv(t)

	_, err := Parse("c a.txt ,", env)
	assert.ErrorIs(t, err, ErrNoPinned)

	env.Pinned = "/work/sub"
	cmd, err := Parse("c a.txt ,", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a.txt", "/work/sub"}, cmd.Args)
}

func TestFastbackAndTilde(t *testing.T) {
	env := testEnv(t)

	cmd, err := Parse("cd .../src", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"cd", "../../src"}, cmd.Args)

	cmd, err = Parse("cd ~/music", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"cd", "/home/u/music"}, cmd.Args)
}

func TestGlobExpansion(t *testing.T) {
	env := testEnv(t)

	cmd, err := Parse("c *.txt /tmp", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a.txt", "b.txt", "/tmp"}, cmd.Args)

	// No matches keeps the literal.
	cmd, err = Parse("c *.zip", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "*.zip"}, cmd.Args)

	// Quoted wildcards stay literal.
	cmd, err = Parse(`c "*.txt"`, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "*.txt"}, cmd.Args)
}

func TestELNSubstitution(t *testing.T) {
	env := testEnv(t)
	// Snapshot order: sub (dir first), a.txt, b.txt, notes.md.

	cmd, err := Parse("o 2", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"o", "a.txt"}, cmd.Args)

	cmd, err = Parse("c 2-4 /tmp", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a.txt", "b.txt", "notes.md", "/tmp"}, cmd.Args)

	_, err = Parse("o 9", env)
	var elnErr *listing.InvalidELNError
	assert.ErrorAs(t, err, &elnErr)

	// Lone number: autocd/auto-open route.
	cmd, err = Parse("1", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub"}, cmd.Args)

	// Quoted numbers are literal names.
	cmd, err = Parse(`o "2"`, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"o", "2"}, cmd.Args)
}

func TestNumericArgCommandsExemptFromELN(t *testing.T) {
	env := testEnv(t)

	for _, in := range []string{"ws 2", "mf 2", "st 2", "pg 2", "ft 2", "cl 2"} {
		cmd, err := Parse(in, env)
		require.NoError(t, err)
		assert.Equal(t, "2", cmd.Args[1], in)
	}
}

func TestAliasResolution(t *testing.T) {
	env := testEnv(t)
	env.Aliases["ll"] = "ls -l --color"
	env.Aliases["lx"] = "ll -h"

	cmd, err := Parse("ll /tmp", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "-l", "--color", "/tmp"}, cmd.Args)

	// Aliases never recurse: lx expands to ll, which stays literal.
	cmd, err = Parse("lx", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"ll", "-h"}, cmd.Args)
}

func TestUserVarSubstitution(t *testing.T) {
	env := testEnv(t)
	env.UserVars["docs"] = "/work/sub"

	cmd, err := Parse("cd $docs", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"cd", "/work/sub"}, cmd.Args)

	cmd, err = Parse("cd $missing", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"cd", "$missing"}, cmd.Args)
}

func TestEmptyLine(t *testing.T) {
	env := testEnv(t)
	cmd, err := Parse("   ", env)
	require.NoError(t, err)
	assert.Empty(t, cmd.Args)
	assert.False(t, cmd.Comment)
}
