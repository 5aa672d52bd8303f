// Package run launches child processes for the rest of the program. All
// parallelism lives here: the host itself stays single threaded and only
// ever blocks on a prompt or on one of these children.
package run

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Exit codes following the shell convention. The shell itself reports 127
// (not found) and 126 (not executable); CrashCode marks a child that died
// without a normal exit status.
const (
	ExitNotFound = 127
	ExitNoExec   = 126
	CrashCode    = 254
	ExitNullErr  = 1
	DefaultShell = "/bin/sh"
)

// Mode selects whether the parent waits for the child.
type Mode int

const (
	Foreground Mode = iota
	Background
)

// FdPolicy silences any subset of the child's standard streams by leaving
// them detached (os/exec redirects a nil stream to /dev/null).
type FdPolicy uint8

const (
	SilenceNone FdPolicy = 0
	SilenceIn   FdPolicy = 1 << iota
	SilenceOut
	SilenceErr
)

// Runner is the process-launching capability handed to the dispatcher and
// the file-operation wrappers. Tests substitute a recorder.
type Runner interface {
	// Exec runs argv directly (no shell). In Foreground mode it returns
	// the child's exit code; in Background mode it returns 0 immediately.
	Exec(argv []string, mode Mode, policy FdPolicy) int
	// ExecShell hands a full command line to the system shell and returns
	// the shell's exit code.
	ExecShell(line string) int
}

// Launcher is the production Runner. Stdin/Stdout/Stderr are the host's
// terminal streams; Shell defaults to /bin/sh when empty.
type Launcher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Shell  string
}

// NewLauncher wires a Launcher to the host terminal and $SHELL.
func NewLauncher() *Launcher {
	return &Launcher{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Shell:  os.Getenv("SHELL"),
	}
}

func (l *Launcher) shell() string {
	if l.Shell != "" {
		return l.Shell
	}
	return DefaultShell
}

func (l *Launcher) wire(cmd *exec.Cmd, policy FdPolicy) {
	if policy&SilenceIn == 0 {
		cmd.Stdin = l.Stdin
	}
	if policy&SilenceOut == 0 {
		cmd.Stdout = l.Stdout
	}
	if policy&SilenceErr == 0 {
		cmd.Stderr = l.Stderr
	}
}

// Exec implements Runner.
func (l *Launcher) Exec(argv []string, mode Mode, policy FdPolicy) int {
	if len(argv) == 0 || argv[0] == "" {
		return ExitNullErr
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	l.wire(cmd, policy)

	if mode == Background {
		if err := cmd.Start(); err != nil {
			fmt.Fprintf(l.Stderr, "%s: %v\n", argv[0], err)
			return lookupCode(err)
		}
		// Reap asynchronously so the child never lingers as a zombie.
		go func() { _ = cmd.Wait() }()
		return 0
	}

	err := cmd.Run()
	return exitCode(cmd, err, argv[0], l.Stderr)
}

// ExecShell implements Runner. The line is executed verbatim by the system
// shell, which owns pipes, redirections and job control.
func (l *Launcher) ExecShell(line string) int {
	if line == "" {
		return ExitNullErr
	}

	cmd := exec.Command(l.shell(), "-c", line)
	l.wire(cmd, SilenceNone)

	err := cmd.Run()
	return exitCode(cmd, err, l.shell(), l.Stderr)
}

func lookupCode(err error) int {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		if errors.Is(execErr.Err, exec.ErrNotFound) {
			return ExitNotFound
		}
		if errors.Is(execErr.Err, os.ErrPermission) {
			return ExitNoExec
		}
	}
	return ExitNullErr
}

func exitCode(cmd *exec.Cmd, err error, name string, errw io.Writer) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		// Killed by a signal: no normal status to propagate.
		return CrashCode
	}

	fmt.Fprintf(errw, "%s: %v\n", name, err)
	return lookupCode(err)
}

var _ Runner = (*Launcher)(nil)
