// Package dispatch turns parsed command lines into effects. It owns the
// classification order: action, assignment, shell escape, autocd and
// auto-open, the internal command table, and finally the system shell.
package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/calens/finch/commands"
	"github.com/calens/finch/core/actions"
	"github.com/calens/finch/core/fsops"
	"github.com/calens/finch/core/log"
	"github.com/calens/finch/core/parse"
	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/session"
	"github.com/calens/finch/core/strutil"
	"github.com/calens/finch/core/trash"
	"github.com/calens/finch/core/watch"
)

// Dispatcher routes one command line per turn. It never terminates the
// process: q/Q/exit set the quit flag and the prompt loop observes it.
type Dispatcher struct {
	S       *session.Session
	Actions *actions.Runner
	Watch   *watch.Watcher
	Log     *log.Log

	ctx  *commands.Ctx
	quit bool
}

// New wires the dispatcher, the command context and the action runner
// together around one session.
func New(s *session.Session, can *trash.Can, w *watch.Watcher, lg *log.Log) *Dispatcher {
	d := &Dispatcher{
		S:     s,
		Watch: w,
		Log:   lg,
	}
	d.Actions = &actions.Runner{
		S:        s,
		Open:     func(path string) int { return d.OpenFile(path, false) },
		Dispatch: d.Dispatch,
	}
	d.ctx = &commands.Ctx{
		S:         s,
		Ops:       fsops.New(s),
		Can:       can,
		Log:       lg,
		Dispatch:  d.Dispatch,
		RunAction: d.Actions.Run,
		Open:      d.OpenFile,
		Quit:      func() { d.quit = true },
	}
	return d
}

// Quitting reports whether an exit command has run.
func (d *Dispatcher) Quitting() bool { return d.quit }

// Ctx exposes the command context for the prompt's completer.
func (d *Dispatcher) Ctx() *commands.Ctx { return d.ctx }

// Dispatch runs a full input line: history expansion, chain splitting,
// then one classification pass per fragment. The returned code is the
// last fragment's and is mirrored into the session's $? slot.
func (d *Dispatcher) Dispatch(line string) int {
	if d.Watch != nil && d.Watch.Poll() {
		if err := d.S.Refresh(); err != nil {
			d.S.Errorf("%s: %v", d.S.CWD(), err)
		}
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return d.finish(line, 0)
	}

	expanded, err := d.expandHistory(line)
	if err != nil {
		d.S.Errorf("%v", err)
		return d.finish(line, 1)
	}
	line = expanded
	d.S.RecordCmd(line)

	// ";cmd" and ":cmd" bypass everything and go to the shell; bare ";"
	// or ":" starts an interactive shell.
	if line[0] == ';' || line[0] == ':' {
		return d.finish(line, d.shellEscape(strings.TrimSpace(line[1:])))
	}

	frags := parse.SplitChain(line)
	if len(frags) > 1 && !d.anyInternal(frags) {
		// No fragment is ours, so the shell owns the whole chain.
		return d.finish(line, d.external(line, nil, nil, false))
	}

	code := 0
	for _, frag := range frags {
		if frag.Cond && code != 0 {
			continue
		}
		code = d.dispatchOne(frag.Text)
	}
	return d.finish(line, code)
}

func (d *Dispatcher) finish(line string, code int) int {
	d.S.ExitCode = code
	if line != "" && d.S.LogCmds && d.Log != nil {
		d.Log.Command(d.S.CWD(), line, code)
	}
	if d.Watch != nil && d.Watch.Target() != d.S.CWD() {
		if err := d.Watch.Arm(d.S.CWD()); err != nil {
			d.Watch.Disarm()
		}
	}
	return code
}

// anyInternal reports whether at least one fragment starts with an
// internal command name; only then is a chain processed fragment by
// fragment instead of handed to the shell whole.
func (d *Dispatcher) anyInternal(frags []parse.Fragment) bool {
	for _, f := range frags {
		fields := strings.Fields(f.Text)
		if len(fields) > 0 && commands.IsInternal(fields[0]) {
			return true
		}
	}
	return false
}

// dispatchOne classifies a single chain fragment. First match wins.
func (d *Dispatcher) dispatchOne(line string) int {
	env := d.parseEnv()
	cmd, err := parse.Parse(line, env)
	if err != nil {
		d.S.Errorf("%v", err)
		return 1
	}

	if cmd.Assign != nil {
		d.S.UserVars[cmd.Assign.Name] = cmd.Assign.Value
		return 0
	}
	if cmd.Comment || len(cmd.Args) == 0 {
		return 0
	}
	first := cmd.Args[0]

	if value, ok := d.S.Actions[first]; ok {
		return d.Actions.Run(value, cmd.Args[1:])
	}

	// Lone tokens naming an existing entry get the autocd / auto-open
	// treatment before the command table, unless they shadow a command.
	if len(cmd.Args) == 1 && !commands.IsInternal(first) {
		if code, handled := d.tryAuto(first, cmd.Background); handled {
			return code
		}
	}

	if fn, ok := commands.AllCommands[first]; ok {
		return fn(d.ctx, cmd.Args)
	}

	// "/pattern" searches the snapshot when it is not an existing path.
	if strings.HasPrefix(first, "/") {
		if _, err := d.S.Fs.Stat(first); err != nil {
			return commands.AllCommands["/"](d.ctx, cmd.Args)
		}
	}

	// A token that can only be a path but resolves to nothing is not
	// worth a shell round trip.
	if len(cmd.Args) == 1 && looksLikePath(first) {
		if _, err := d.S.Fs.Stat(d.S.AbsPath(first)); err != nil {
			d.S.Errorf("%s: no such file or directory", first)
			return run.ExitNotFound
		}
	}

	return d.external(line, cmd.Args, cmd.Quoted, cmd.Background)
}

// tryAuto handles a lone token that names an existing directory or file.
func (d *Dispatcher) tryAuto(tok string, background bool) (int, bool) {
	target := d.S.AbsPath(tok)
	info, err := d.S.Fs.Stat(target)
	if err != nil {
		return 0, false
	}
	if info.IsDir() {
		if !d.S.AutoCD {
			return 0, false
		}
		return d.S.Cd(target, session.CdVerbose), true
	}
	if !d.S.AutoOpen {
		return 0, false
	}
	return d.OpenFile(target, background), true
}

// looksLikePath is true for tokens that name a location rather than a
// program: anything with a slash or an explicit dot prefix.
func looksLikePath(tok string) bool {
	return strings.Contains(tok, "/") ||
		tok == "." || tok == ".." ||
		strings.HasPrefix(tok, "./") || strings.HasPrefix(tok, "../")
}

// external reassembles the expanded tokens and hands them to the shell.
// args may be nil when the raw line should run untouched.
func (d *Dispatcher) external(raw string, args []string, quoted []bool, background bool) int {
	if code, refused := d.refuseExternal(raw, args); refused {
		return code
	}

	line := raw
	if args != nil {
		parts := make([]string, len(args))
		for i, a := range args {
			// Only tokens the user quoted or an expansion produced
			// need protecting; everything else stays verbatim so
			// pipes and redirections still reach the shell.
			if i < len(quoted) && quoted[i] {
				parts[i] = strutil.Escape(a)
			} else {
				parts[i] = a
			}
		}
		line = strings.Join(parts, " ")
	}
	if background {
		line += " &"
	}

	code := d.S.Runner.ExecShell(line)
	d.RebuildPathCache()
	return code
}

// refuseExternal applies the external-command guards: the global toggle,
// secure mode, the nested-instance guard and the kill guard.
func (d *Dispatcher) refuseExternal(raw string, args []string) (int, bool) {
	if !d.S.ExtCmdOK {
		d.S.Errorf("external commands are disabled: run 'ext on' to enable them")
		return 1, true
	}

	toks := args
	if toks == nil {
		toks = strings.Fields(raw)
	}
	name := ""
	if len(toks) > 0 {
		name = filepath.Base(toks[0])
	}

	if name == session.ProgramName {
		d.S.Errorf("%s: nested instances are not allowed", name)
		return 1, true
	}

	if name == "kill" || name == "pkill" || name == "killall" {
		pid := strconv.Itoa(os.Getpid())
		for _, a := range toks[1:] {
			if a == pid || strings.TrimPrefix(a, "-") == session.ProgramName {
				d.S.Errorf("%s: refusing to signal the running instance", name)
				return 1, true
			}
		}
	}

	if d.S.SecureCmds && strings.ContainsAny(raw, "`$<>|&") {
		d.S.Errorf("%s: command restricted by secure-cmds", name)
		return 1, true
	}

	return 0, false
}

// shellEscape runs the remainder of a ";" / ":" line in the system shell;
// an empty remainder starts the user's shell interactively.
func (d *Dispatcher) shellEscape(rest string) int {
	if rest == "" {
		shell := d.S.Shell
		if shell == "" {
			shell = run.DefaultShell
		}
		return d.S.Runner.Exec([]string{shell}, run.Foreground, run.SilenceNone)
	}
	code := d.S.Runner.ExecShell(rest)
	d.RebuildPathCache()
	return code
}

// OpenFile hands a regular file to the configured opener, falling back to
// $EDITOR and then vi. A configured opener value may carry its own
// arguments ("gio open" style).
func (d *Dispatcher) OpenFile(path string, background bool) int {
	var argv []string
	switch {
	case d.S.Opener != "":
		argv = append(strings.Fields(d.S.Opener), path)
	case os.Getenv("EDITOR") != "":
		argv = []string{os.Getenv("EDITOR"), path}
	default:
		argv = []string{"vi", path}
	}

	mode := run.Foreground
	if background {
		mode = run.Background
	}
	return d.S.Runner.Exec(argv, mode, run.SilenceNone)
}

// expandHistory resolves "!!", "!N" and "!str" against the command
// history before any parsing.
func (d *Dispatcher) expandHistory(line string) (string, error) {
	if !strings.HasPrefix(line, "!") || line == "!" {
		return line, nil
	}
	hist := d.S.CmdHistory
	ref := line[1:]

	if ref == "!" {
		if len(hist) == 0 {
			return "", fmt.Errorf("!!: history is empty")
		}
		return hist[len(hist)-1], nil
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(hist) {
			return "", fmt.Errorf("!%d: event not found", n)
		}
		return hist[n-1], nil
	}

	for i := len(hist) - 1; i >= 0; i-- {
		if strings.HasPrefix(hist[i], ref) {
			return hist[i], nil
		}
	}
	return "", fmt.Errorf("!%s: event not found", ref)
}

// RebuildPathCache rescans $PATH so tab completion picks up programs
// installed by the command that just ran.
func (d *Dispatcher) RebuildPathCache() {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		infos, err := afero.ReadDir(d.S.Fs, dir)
		if err != nil {
			continue
		}
		for _, info := range infos {
			if info.IsDir() || seen[info.Name()] {
				continue
			}
			seen[info.Name()] = true
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	d.S.PathCmds = names
}

func (d *Dispatcher) parseEnv() *parse.Env {
	env := &parse.Env{
		Fs:       d.S.Fs,
		Home:     d.S.Home,
		Cwd:      d.S.CWD(),
		Pinned:   d.S.Pinned,
		Snapshot: d.S.Snapshot,
		Aliases:  d.S.Aliases,
		UserVars: d.S.UserVars,
	}
	if d.S.Sel != nil {
		env.Sel = d.S.Sel.Paths()
	}
	return env
}
