package fsops

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/session"
)

type fakeRunner struct {
	calls [][]string
	lines []string
	code  int
	hook  func(argv []string)
}

func (f *fakeRunner) Exec(argv []string, mode run.Mode, policy run.FdPolicy) int {
	f.calls = append(f.calls, argv)
	if f.hook != nil {
		f.hook(argv)
	}
	return f.code
}

func (f *fakeRunner) ExecShell(line string) int {
	f.lines = append(f.lines, line)
	return f.code
}

type scriptPrompter struct {
	lines []string
	fail  bool
}

func (p *scriptPrompter) ReadLine(prompt string) (string, error) {
	if p.fail || len(p.lines) == 0 {
		return "", errors.New("canceled")
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func newTestOps(t *testing.T) (*Ops, *fakeRunner) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work/subdir", 0755))
	require.NoError(t, fsys.MkdirAll("/tmp", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/work/a.txt", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/work/b.txt", []byte("b"), 0644))

	runner := &fakeRunner{}
	s := session.New(fsys, runner, "/work", false)
	s.Stdout = &bytes.Buffer{}
	s.Stderr = &bytes.Buffer{}
	s.Paths.TmpDir = "/tmp"
	s.AutoLS = false

	o := New(s)
	o.lookPath = func(string) (string, error) { return "", errors.New("not installed") }
	o.rename = func(fsys afero.Fs, oldpath, newpath string) error {
		return fsys.Rename(oldpath, newpath)
	}
	o.symlink = func(fsys afero.Fs, target, link string) error {
		return afero.WriteFile(fsys, link, []byte(target), 0644)
	}
	return o, runner
}

func TestRemoveFilesOnly(t *testing.T) {
	o, runner := newTestOps(t)
	o.Remove([]string{"a.txt", "b.txt"})

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"rm", "-I", "--", "a.txt", "b.txt"}, runner.calls[0])
}

func TestRemoveWithDirectory(t *testing.T) {
	o, runner := newTestOps(t)
	o.Remove([]string{"a.txt", "subdir"})

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"rm", "-dIr", "--", "a.txt", "subdir"}, runner.calls[0])
}

func TestLinkAnchorsRelativeSource(t *testing.T) {
	o, runner := newTestOps(t)
	o.Link("a.txt", "mylink")

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"ln", "-sn", "--", "/work/a.txt", "mylink"}, runner.calls[0])
}

func TestLinkDefaultsLinkName(t *testing.T) {
	o, runner := newTestOps(t)
	o.Link("/etc/hosts", "")

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"ln", "-sn", "--", "/etc/hosts", "hosts"}, runner.calls[0])
}

func TestMoveInteractiveRename(t *testing.T) {
	o, runner := newTestOps(t)
	o.S.Prompt = &scriptPrompter{lines: []string{"", "renamed.txt"}}

	assert.Equal(t, 0, o.Move([]string{"a.txt"}))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"mv", "--", "a.txt", "renamed.txt"}, runner.calls[0])
}

func TestMoveRenameCanceled(t *testing.T) {
	o, runner := newTestOps(t)
	o.S.Prompt = &scriptPrompter{fail: true}

	assert.Equal(t, 0, o.Move([]string{"a.txt"}))
	assert.Empty(t, runner.calls)
}

func TestCreatePartitionsFilesAndDirs(t *testing.T) {
	o, runner := newTestOps(t)
	o.Create([]string{"notes.md", "src/", "doc/"})

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"mkdir", "-p", "--", "src", "doc"}, runner.calls[0])
	assert.Equal(t, []string{"touch", "--", "notes.md"}, runner.calls[1])
}

func TestCreateCollisionGetsNewSuffix(t *testing.T) {
	o, runner := newTestOps(t)
	o.Create([]string{"a.txt"})

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"touch", "--", "a.txt.new"}, runner.calls[0])
}

func TestDuplicateProbesCopySuffix(t *testing.T) {
	o, runner := newTestOps(t)
	require.NoError(t, afero.WriteFile(o.S.Fs, "/work/a.txt.copy", []byte("x"), 0644))

	o.Duplicate([]string{"a.txt"})
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"cp", "-a", "a.txt", "a.txt.copy-1"}, runner.calls[0])
}

func TestDuplicatePrefersRsync(t *testing.T) {
	o, runner := newTestOps(t)
	o.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }

	o.Duplicate([]string{"b.txt"})
	require.Len(t, runner.calls, 1)
	assert.Equal(t,
		[]string{"rsync", "-aczvAXHS", "--progress", "b.txt", "b.txt.copy"},
		runner.calls[0])
}

func TestBatchLinkDefaultSuffix(t *testing.T) {
	o, _ := newTestOps(t)
	o.S.Prompt = &scriptPrompter{lines: []string{""}}

	assert.Equal(t, 0, o.BatchLink([]string{"a.txt"}))
	target, err := afero.ReadFile(o.S.Fs, "/work/a.txt.link")
	require.NoError(t, err)
	assert.Equal(t, "/work/a.txt", string(target))
}

func TestBulkRenameAppliesEdits(t *testing.T) {
	o, runner := newTestOps(t)
	o.S.Prompt = &scriptPrompter{lines: []string{"y"}}

	// The "editor" rewrites the buffer with new names.
	runner.hook = func(argv []string) {
		buf := argv[len(argv)-1]
		require.NoError(t, afero.WriteFile(o.S.Fs, buf, []byte("A.txt\nB.txt\n"), 0600))
		require.NoError(t, o.S.Fs.Chtimes(buf, time.Now(), time.Now().Add(time.Second)))
	}

	assert.Equal(t, 0, o.BulkRename([]string{"a.txt", "b.txt"}))

	_, err := o.S.Fs.Stat("/work/A.txt")
	assert.NoError(t, err)
	_, err = o.S.Fs.Stat("/work/a.txt")
	assert.Error(t, err)
}

func TestBulkRenameUntouchedBufferDoesNothing(t *testing.T) {
	o, _ := newTestOps(t)
	o.S.Prompt = &scriptPrompter{lines: []string{"y"}}

	assert.Equal(t, 0, o.BulkRename([]string{"a.txt"}))
	out := o.S.Stdout.(*bytes.Buffer).String()
	assert.Contains(t, out, "nothing to do")
	_, err := o.S.Fs.Stat("/work/a.txt")
	assert.NoError(t, err)
}

func TestBulkRenameLineMismatch(t *testing.T) {
	o, runner := newTestOps(t)
	runner.hook = func(argv []string) {
		buf := argv[len(argv)-1]
		require.NoError(t, afero.WriteFile(o.S.Fs, buf, []byte("only-one\n"), 0600))
		require.NoError(t, o.S.Fs.Chtimes(buf, time.Now(), time.Now().Add(time.Second)))
	}

	assert.Equal(t, 1, o.BulkRename([]string{"a.txt", "b.txt"}))
	errOut := o.S.Stderr.(*bytes.Buffer).String()
	assert.Contains(t, errOut, "line mismatch")
}

func TestBulkRenameDeclined(t *testing.T) {
	o, runner := newTestOps(t)
	o.S.Prompt = &scriptPrompter{lines: []string{"n"}}
	runner.hook = func(argv []string) {
		buf := argv[len(argv)-1]
		require.NoError(t, afero.WriteFile(o.S.Fs, buf, []byte("zzz.txt\n"), 0600))
		require.NoError(t, o.S.Fs.Chtimes(buf, time.Now(), time.Now().Add(time.Second)))
	}

	assert.Equal(t, 0, o.BulkRename([]string{"a.txt"}))
	_, err := o.S.Fs.Stat("/work/a.txt")
	assert.NoError(t, err)
}
