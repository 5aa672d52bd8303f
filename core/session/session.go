// Package session holds the single live session context: workspaces, the
// current snapshot, the selection box, directory history, the alias/action/
// user-variable tables, and every runtime toggle. All navigation state
// changes go through methods on Session so the filesystem, the listing and
// the history indices never disagree.
package session

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/calens/finch/core/jumpdb"
	"github.com/calens/finch/core/listing"
	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/selection"
	"github.com/calens/finch/third_party/realpath"
)

// MaxWorkspaces is the fixed number of workspace slots.
const MaxWorkspaces = 8

// ProgramName appears in diagnostics and the terminal title.
const ProgramName = "finch"

// Prompter reads one line of input for interactive sub-prompts (backdir
// menu, rename, bulk confirmation). Readline provides it in production.
type Prompter interface {
	ReadLine(prompt string) (string, error)
}

// Paths collects every file location the session persists state to.
type Paths struct {
	ConfigDir  string
	PluginsDir string
	DataDir    string
	TmpDir     string

	SelFile     string
	HistFile    string
	DirhistFile string
	PinFile     string
	LastFile    string
	ActionsFile string
	ConfigFile  string
	LogFile     string
	JumpFile    string
}

// Session is the one-per-process context: every subsystem receives it
// instead of reaching for globals.
type Session struct {
	Fs     afero.Fs
	Runner run.Runner

	Stdout io.Writer
	Stderr io.Writer
	Prompt Prompter

	Paths Paths
	Home  string

	Workspaces [MaxWorkspaces]string
	CurWS      int

	Snapshot *listing.Snapshot
	ListOpts listing.Options

	Sel  *selection.Box
	Jump *jumpdb.DB

	// Hist is the current workspace's directory history; each slot keeps
	// its own ring so switching workspaces never disturbs another slot's
	// cursor.
	Hist  *History
	hists [MaxWorkspaces]*History

	Aliases  map[string]string
	Actions  map[string]string
	UserVars map[string]string

	// Toggles and knobs.
	AutoCD       bool
	AutoOpen     bool
	AutoLS       bool
	ExtCmdOK     bool
	CaseSensPath bool
	FilesCounter bool
	Stealth      bool
	SecureCmds   bool
	Unicode      bool
	Icons        bool
	Columns      bool
	LightMode    bool
	Colorize     bool
	TitleUpdates bool
	PagerOn      bool
	Highlight    bool
	Suggestions  bool
	LogCmds      bool

	Opener string
	Pinned string
	Shell  string
	Pager  string

	// TermWidth feeds the column layout; 0 means unknown.
	TermWidth int

	// onHost is set when Fs is the real filesystem; only then does the
	// session chdir the process and resolve symlinks.
	onHost bool

	// ExitCode mirrors $? for the prompt.
	ExitCode int

	// CmdHistory backs the !N / !! / !str expansions.
	CmdHistory []string

	// Messages accumulates diagnostics for the msg command.
	Messages []string

	// PathCmds is the $PATH program cache, rebuilt after externals.
	PathCmds []string
}

// New builds a session rooted at cwd on the given filesystem. onHost must
// be true only for the real filesystem.
func New(fsys afero.Fs, runner run.Runner, cwd string, onHost bool) *Session {
	s := &Session{
		Fs:           fsys,
		Runner:       runner,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Home:         os.Getenv("HOME"),
		Shell:        os.Getenv("SHELL"),
		Aliases:      make(map[string]string),
		Actions:      make(map[string]string),
		UserVars:     make(map[string]string),
		AutoCD:       true,
		AutoOpen:     true,
		AutoLS:       true,
		ExtCmdOK:     true,
		Columns:      true,
		Unicode:      true,
		FilesCounter: true,
		onHost:       onHost,
	}
	s.Workspaces[0] = cwd
	s.hists[0] = &History{}
	s.Hist = s.hists[0]
	s.Hist.Push(cwd)
	return s
}

// CWD is the current workspace's directory.
func (s *Session) CWD() string {
	return s.Workspaces[s.CurWS]
}

func (s *Session) setCWD(path string) {
	s.Workspaces[s.CurWS] = path
}

// Refresh rebuilds the snapshot from the current directory, invalidating
// all previously printed ELNs.
func (s *Session) Refresh() error {
	opts := s.ListOpts
	opts.CountDirs = s.FilesCounter
	snap, err := listing.List(s.Fs, s.CWD(), opts)
	if err != nil {
		return err
	}
	s.Snapshot = snap
	return nil
}

// PrintListing renders the current snapshot with the session's view
// toggles, paging through the prompter when the pager is on and the
// listing is taller than a screen.
func (s *Session) PrintListing() {
	if s.Snapshot == nil {
		return
	}

	opts := listing.PrintOptions{
		Colorize:     s.Colorize,
		Columns:      s.Columns,
		Icons:        s.Icons,
		FilesCounter: s.FilesCounter,
		Width:        s.TermWidth,
	}
	var buf bytes.Buffer
	s.Snapshot.PrintStyled(&buf, opts)

	if !s.PagerOn {
		io.Copy(s.Stdout, &buf)
		return
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) > pageSize && s.pageExternal(buf.Bytes()) {
		return
	}
	if s.Prompt == nil {
		io.Copy(s.Stdout, &buf)
		return
	}
	for i, line := range lines {
		fmt.Fprintln(s.Stdout, line)
		if (i+1)%pageSize == 0 && i != len(lines)-1 {
			answer, err := s.Prompt.ReadLine(":")
			if err != nil || answer == "q" {
				return
			}
		}
	}
}

// pageSize is how many listing lines fit between pager stops.
const pageSize = 24

// pageExternal hands a long listing to the pager program when one can
// run, reporting whether it did. The listing goes through a spool file
// since pagers want a seekable input.
func (s *Session) pageExternal(out []byte) bool {
	argv := s.PagerArgv()
	if argv == nil || s.Runner == nil {
		return false
	}

	dir := s.Paths.TmpDir
	if dir == "" {
		dir = os.TempDir()
	}
	spool := filepath.Join(dir, ".listing")
	if err := afero.WriteFile(s.Fs, spool, out, 0600); err != nil {
		return false
	}
	defer s.Fs.Remove(spool)

	s.Runner.Exec(append(argv, spool), run.Foreground, run.SilenceNone)
	return true
}

// PagerArgv resolves the pager program: the configured value first,
// then $PAGER, then less, then more. Nil means page internally.
func (s *Session) PagerArgv() []string {
	for _, p := range []string{s.Pager, os.Getenv("PAGER")} {
		if p != "" {
			return strings.Fields(p)
		}
	}
	for _, p := range []string{"less", "more"} {
		if _, err := exec.LookPath(p); err == nil {
			return []string{p}
		}
	}
	return nil
}

// SetFilter compiles and installs the listing filter; an empty pattern
// clears it.
func (s *Session) SetFilter(pattern string) error {
	if pattern == "" {
		s.ListOpts.Filter = nil
		return nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return err
	}
	s.ListOpts.Filter = g
	return nil
}

// SetTitle emits the terminal-title escape when title updates are on.
func (s *Session) SetTitle(text string) {
	if !s.TitleUpdates {
		return
	}
	fmt.Fprintf(s.Stdout, "\x1b]2;%s - %s\a", ProgramName, text)
}

// Errorf prints a diagnostic in the program's standard shape and keeps a
// copy for the msg command.
func (s *Session) Errorf(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	s.Messages = append(s.Messages, msg)
	fmt.Fprintf(s.Stderr, "%s: %s\n", ProgramName, msg)
}

// Infof prints an informational message to stdout.
func (s *Session) Infof(format string, a ...interface{}) {
	fmt.Fprintf(s.Stdout, format+"\n", a...)
}

// AbsPath anchors a possibly relative path at the current directory.
func (s *Session) AbsPath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.CWD(), p)
}

// fsResolver adapts the session filesystem to the symlink resolver. On
// filesystems without link support Lstat degrades to Stat, which never
// reports symlink mode, so Readlink is never reached.
type fsResolver struct {
	fs  afero.Fs
	cwd string
}

func (r fsResolver) Getwd() (string, error) { return r.cwd, nil }

func (r fsResolver) Lstat(name string) (os.FileInfo, error) {
	if lst, ok := r.fs.(afero.Lstater); ok {
		fi, _, err := lst.LstatIfPossible(name)
		return fi, err
	}
	return r.fs.Stat(name)
}

func (r fsResolver) Readlink(name string) (string, error) {
	if rl, ok := r.fs.(afero.LinkReader); ok {
		return rl.ReadlinkIfPossible(name)
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: os.ErrInvalid}
}

// realpath resolves every symlink component of p against the session
// filesystem and returns a clean absolute path.
func (s *Session) realpath(p string) (string, error) {
	return realpath.Realpath(fsResolver{fs: s.Fs, cwd: s.CWD()}, s.AbsPath(p))
}

// chdir makes the process follow the session on the host filesystem.
func (s *Session) chdir(p string) error {
	if !s.onHost {
		return nil
	}
	return os.Chdir(p)
}

// RecordCmd appends a line to the in-memory command history.
func (s *Session) RecordCmd(line string) {
	if line == "" {
		return
	}
	if n := len(s.CmdHistory); n > 0 && s.CmdHistory[n-1] == line {
		return
	}
	s.CmdHistory = append(s.CmdHistory, line)
}
