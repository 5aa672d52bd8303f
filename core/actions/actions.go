// Package actions runs plugin executables that talk back to the host
// over a FIFO. The child gets the FIFO path in CLIFM_BUS; whatever single
// line it writes there comes back as either a path to open or a command
// line to dispatch.
package actions

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/session"
)

// ErrNotFound marks a plugin that could not be resolved to an executable.
var ErrNotFound = errors.New("action not found")

const (
	busVar    = "CLIFM_BUS"
	helperVar = "CLIFM_PLUGINS_HELPER"

	helperName = "plugins-helper"
	payloadMax = 4096
)

// Runner executes actions for a session. Open handles a payload naming an
// existing file; Dispatch re-enters the command pipeline with a payload
// command line.
type Runner struct {
	S        *session.Session
	Open     func(path string) int
	Dispatch func(line string) int
}

// Resolve maps an action value to an executable path. A value containing
// a slash is a path, absolute or cwd-relative; anything else is probed in
// the plugins directory and then the data directory.
func (r *Runner) Resolve(value string) (string, error) {
	if strings.Contains(value, "/") {
		p := r.S.AbsPath(value)
		if r.executable(p) {
			return p, nil
		}
		return "", fmt.Errorf("%s: %w", value, ErrNotFound)
	}

	for _, dir := range []string{r.S.Paths.PluginsDir, r.S.Paths.DataDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, value)
		if r.executable(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", value, ErrNotFound)
}

func (r *Runner) executable(p string) bool {
	info, err := r.S.Fs.Stat(p)
	return err == nil && !info.IsDir() && info.Mode()&0111 != 0
}

// Run executes the action behind value with the user's argument vector
// (argv[0] is replaced by the resolved path) and interprets the FIFO
// payload. The FIFO is always unlinked and CLIFM_BUS unset on return.
func (r *Runner) Run(value string, args []string) int {
	bin, err := r.Resolve(value)
	if err != nil {
		r.S.Errorf("%v", err)
		return 1
	}

	fifo := filepath.Join(r.S.Paths.TmpDir,
		".pipe."+strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	if err := unix.Mkfifo(fifo, 0600); err != nil {
		r.S.Errorf("actions: cannot create pipe: %v", err)
		return 1
	}
	os.Setenv(busVar, fifo)
	r.exportHelper()
	defer func() {
		_ = os.Remove(fifo)
		os.Unsetenv(busVar)
	}()

	payload, code := r.runChild(bin, args, fifo)
	if strings.TrimSpace(payload) == "" {
		return code
	}
	return r.interpret(payload)
}

// exportHelper publishes the plugins-helper path once per process.
func (r *Runner) exportHelper() {
	if os.Getenv(helperVar) != "" {
		return
	}
	for _, dir := range []string{r.S.Paths.PluginsDir, r.S.Paths.DataDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, helperName)
		if _, err := r.S.Fs.Stat(p); err == nil {
			os.Setenv(helperVar, p)
			return
		}
	}
}

// runChild starts the plugin while holding a write end of the FIFO open
// on its behalf. The read open below cannot block since a writer exists,
// and the read sees EOF no later than child exit even when the plugin
// never touches the bus.
func (r *Runner) runChild(bin string, args []string, fifo string) (string, int) {
	rd, err := openRetry(fifo, unix.O_RDONLY|unix.O_NONBLOCK)
	if err != nil {
		r.S.Errorf("actions: %v", err)
		return "", 1
	}
	defer unix.Close(rd)
	if _, err := unix.FcntlInt(uintptr(rd), unix.F_SETFL, 0); err != nil {
		r.S.Errorf("actions: %v", err)
		return "", 1
	}

	wr, err := os.OpenFile(fifo, os.O_WRONLY, 0)
	if err != nil {
		r.S.Errorf("actions: %v", err)
		return "", 1
	}

	argv := append([]string{bin}, args...)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.S.Stdout
	cmd.Stderr = r.S.Stderr
	cmd.Env = append(os.Environ(), busVar+"="+fifo)
	cmd.ExtraFiles = []*os.File{wr}

	if err := cmd.Start(); err != nil {
		wr.Close()
		r.S.Errorf("actions: %s: %v", bin, err)
		return "", run.ExitNotFound
	}
	wr.Close()

	payload := readPayload(rd)

	code := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = 1
		}
	}
	return payload, code
}

func openRetry(path string, flags int) (int, error) {
	for {
		fd, err := unix.Open(path, flags, 0)
		if err == unix.EINTR {
			continue
		}
		return fd, err
	}
}

// readPayload reads up to one buffer, retrying interrupted reads, and
// keeps only the first line.
func readPayload(fd int) string {
	buf := make([]byte, payloadMax)
	n := 0
	for {
		m, err := unix.Read(fd, buf[n:])
		if err == unix.EINTR {
			continue
		}
		if err != nil || m <= 0 {
			break
		}
		n += m
		if n == len(buf) {
			break
		}
	}
	payload := string(buf[:n])
	if i := strings.IndexByte(payload, '\n'); i >= 0 {
		payload = payload[:i]
	}
	return payload
}

// interpret applies the payload trichotomy: nothing, a path to open, or
// a command line to dispatch.
func (r *Runner) interpret(payload string) int {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return 0
	}
	if _, err := r.S.Fs.Stat(r.S.AbsPath(payload)); err == nil {
		if r.Open != nil {
			return r.Open(r.S.AbsPath(payload))
		}
		return 0
	}
	if r.Dispatch != nil {
		return r.Dispatch(payload)
	}
	return 0
}
