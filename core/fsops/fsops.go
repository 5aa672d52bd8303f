// Package fsops implements the file-operation commands. None of them walk
// the filesystem themselves: they wrap the system cp, mv, rm, ln, mkdir
// and touch binaries through the process launcher, keeping the exact
// prompting and safety semantics of those tools.
package fsops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/session"
)

// Ops runs file operations against a session. The rename and symlink
// hooks exist so the bulk commands can be exercised on a virtual
// filesystem.
type Ops struct {
	S *session.Session

	lookPath func(string) (string, error)
	rename   func(fsys afero.Fs, oldpath, newpath string) error
	symlink  func(fsys afero.Fs, target, link string) error
}

// New builds an Ops bound to the host toolset.
func New(s *session.Session) *Ops {
	return &Ops{
		S:        s,
		lookPath: exec.LookPath,
		rename:   renameat,
		symlink:  symlinkat,
	}
}

// renameat renames within one directory through the direct syscall.
func renameat(fsys afero.Fs, oldpath, newpath string) error {
	dir := filepath.Dir(oldpath)
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return unix.Renameat(fd, filepath.Base(oldpath), fd, filepath.Base(newpath))
}

func symlinkat(fsys afero.Fs, target, link string) error {
	dir := filepath.Dir(link)
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return unix.Symlinkat(target, fd, filepath.Base(link))
}

// Remove deletes the targets with rm -I, adding -d and -r when any
// target is a directory so one interactive prompt covers the batch.
func (o *Ops) Remove(targets []string) int {
	if len(targets) == 0 {
		o.S.Errorf("r: missing operand")
		return 1
	}

	anyDir := false
	for _, t := range targets {
		if info, err := o.S.Fs.Stat(o.S.AbsPath(t)); err == nil && info.IsDir() {
			anyDir = true
			break
		}
	}

	argv := []string{"rm", "-I"}
	if anyDir {
		argv = []string{"rm", "-dIr"}
	}
	argv = append(argv, "--")
	argv = append(argv, targets...)
	return o.S.Runner.Exec(argv, run.Foreground, run.SilenceNone)
}

// Link creates a symlink with ln -sn. A relative source is anchored at
// the current directory so the link target is unambiguous. With no link
// name the source's basename in the cwd is used.
func (o *Ops) Link(source, link string) int {
	if source == "" {
		o.S.Errorf("l: missing operand")
		return 1
	}
	if !filepath.IsAbs(source) {
		source = filepath.Join(o.S.CWD(), source)
	}
	if link == "" {
		link = filepath.Base(source)
	}
	return o.S.Runner.Exec([]string{"ln", "-sn", "--", source, link},
		run.Foreground, run.SilenceNone)
}

// Copy runs cp -Rp over the arguments; the last one is the destination.
func (o *Ops) Copy(args []string) int {
	if len(args) < 2 {
		o.S.Errorf("c: missing destination")
		return 1
	}
	argv := append([]string{"cp", "-Rp", "--"}, args...)
	return o.S.Runner.Exec(argv, run.Foreground, run.SilenceNone)
}

// Move runs mv over the arguments. A single argument switches to
// interactive rename: the new name is prompted for, empty input is
// rejected and a canceled prompt aborts with success.
func (o *Ops) Move(args []string) int {
	if len(args) == 0 {
		o.S.Errorf("m: missing operand")
		return 1
	}

	if len(args) == 1 {
		newName, ok := o.promptRename(args[0])
		if !ok {
			return 0
		}
		args = append(args, newName)
	}

	argv := append([]string{"mv", "--"}, args...)
	return o.S.Runner.Exec(argv, run.Foreground, run.SilenceNone)
}

func (o *Ops) promptRename(old string) (string, bool) {
	if o.S.Prompt == nil {
		return "", false
	}
	for {
		line, err := o.S.Prompt.ReadLine(fmt.Sprintf("Enter new name for %q: ", old))
		if err != nil {
			return "", false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			o.S.Errorf("m: a new name is required")
			continue
		}
		return line, true
	}
}

// Create partitions names into files and directories on the trailing
// slash, creating files with touch and directories with mkdir -p. A name
// that already exists gets a free .new suffix instead.
func (o *Ops) Create(names []string) int {
	if len(names) == 0 {
		o.S.Errorf("n: missing operand")
		return 1
	}

	var files, dirs []string
	for _, name := range names {
		isDir := strings.HasSuffix(name, "/")
		name = strings.TrimSuffix(name, "/")
		name = o.freeName(name, ".new")
		if isDir {
			dirs = append(dirs, name)
		} else {
			files = append(files, name)
		}
	}

	code := 0
	if len(dirs) > 0 {
		argv := append([]string{"mkdir", "-p", "--"}, dirs...)
		if c := o.S.Runner.Exec(argv, run.Foreground, run.SilenceNone); c != 0 {
			code = c
		}
	}
	if len(files) > 0 {
		argv := append([]string{"touch", "--"}, files...)
		if c := o.S.Runner.Exec(argv, run.Foreground, run.SilenceNone); c != 0 {
			code = c
		}
	}
	return code
}

// freeName returns name unchanged when it is unused, otherwise name with
// suffix, then suffix-1, suffix-2 and so on until a free slot is found.
func (o *Ops) freeName(name, suffix string) string {
	if _, err := o.S.Fs.Stat(o.S.AbsPath(name)); err != nil {
		return name
	}
	cand := name + suffix
	for i := 1; ; i++ {
		if _, err := o.S.Fs.Stat(o.S.AbsPath(cand)); err != nil {
			return cand
		}
		cand = fmt.Sprintf("%s%s-%d", name, suffix, i)
	}
}

// Duplicate copies each source next to itself under a free .copy suffix,
// preferring rsync when it is installed.
func (o *Ops) Duplicate(sources []string) int {
	if len(sources) == 0 {
		o.S.Errorf("dup: missing operand")
		return 1
	}

	rsync := false
	if _, err := o.lookPath("rsync"); err == nil {
		rsync = true
	}

	code := 0
	for _, src := range sources {
		dest := o.freeName(strings.TrimSuffix(src, "/"), ".copy")
		var argv []string
		if rsync {
			argv = []string{"rsync", "-aczvAXHS", "--progress", src, dest}
		} else {
			argv = []string{"cp", "-a", src, dest}
		}
		if c := o.S.Runner.Exec(argv, run.Foreground, run.SilenceNone); c != 0 {
			code = c
		}
	}
	return code
}

// BatchLink symlinks every argument to <name><suffix> next to it. The
// suffix is prompted for and defaults to .link.
func (o *Ops) BatchLink(targets []string) int {
	if len(targets) == 0 {
		o.S.Errorf("bl: missing operand")
		return 1
	}

	suffix := ".link"
	if o.S.Prompt != nil {
		line, err := o.S.Prompt.ReadLine("Enter links suffix ('.link' by default): ")
		if err != nil {
			return 0
		}
		if line = strings.TrimSpace(line); line != "" {
			suffix = line
		}
	}

	code := 0
	for _, t := range targets {
		link := o.S.AbsPath(strings.TrimSuffix(t, "/") + suffix)
		target := o.S.AbsPath(t)
		if err := o.symlink(o.S.Fs, target, link); err != nil {
			o.S.Errorf("bl: %s: %v", t, err)
			code = 1
		}
	}
	return code
}

// openerArgv picks the editor command for the bulk-rename buffer.
func (o *Ops) openerArgv(path string) []string {
	switch {
	case o.S.Opener != "":
		return []string{o.S.Opener, path}
	case os.Getenv("EDITOR") != "":
		return []string{os.Getenv("EDITOR"), path}
	}
	return []string{"vi", path}
}
