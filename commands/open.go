package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/session"
	"github.com/calens/finch/core/strutil"
)

// Open opens a file with the opener, or cds into a directory.
func Open(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		ctx.S.Errorf("%s: missing operand", args[0])
		return 1
	}

	target := ctx.S.AbsPath(strutil.Dequote(args[1]))
	info, err := ctx.S.Fs.Stat(target)
	if err != nil {
		ctx.S.Errorf("%s: %s: no such file or directory", args[0], args[1])
		return 1
	}
	if info.IsDir() {
		return ctx.S.Cd(target, session.CdVerbose)
	}

	background := len(args) > 2 && args[len(args)-1] == "&"
	return ctx.Open(target, background)
}

// OpenWith asks for an application and opens the file with it.
func OpenWith(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		ctx.S.Errorf("ow: missing operand")
		return 1
	}
	target := ctx.S.AbsPath(strutil.Dequote(args[1]))
	if _, err := ctx.S.Fs.Stat(target); err != nil {
		ctx.S.Errorf("ow: %s: no such file or directory", args[1])
		return 1
	}

	app := ""
	if len(args) > 2 {
		app = args[2]
	} else if ctx.S.Prompt != nil {
		line, err := ctx.S.Prompt.ReadLine("Open with: ")
		if err != nil || line == "" {
			return 0
		}
		app = line
	}
	if app == "" {
		ctx.S.Errorf("ow: no application given")
		return 1
	}
	return ctx.S.Runner.Exec([]string{app, target}, run.Foreground, run.SilenceNone)
}

// Opener shows or sets the file opener.
func Opener(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		current := ctx.S.Opener
		if current == "" {
			current = "built-in"
		}
		ctx.S.Infof("opener: %s", current)
		return 0
	}
	if args[1] == "default" {
		ctx.S.Opener = ""
	} else {
		ctx.S.Opener = args[1]
	}
	return 0
}

// NewInstance opens a directory in a new terminal window when a terminal
// emulator is configured through $TERMINAL.
func NewInstance(ctx *Ctx, args []string) int {
	term := os.Getenv("TERMINAL")
	if term == "" {
		ctx.S.Errorf("%s: set $TERMINAL to open new windows", args[0])
		return 1
	}

	dir := ctx.S.CWD()
	if len(args) > 1 {
		dir = ctx.S.AbsPath(strutil.Dequote(args[1]))
	}
	if info, err := ctx.S.Fs.Stat(dir); err != nil || !info.IsDir() {
		ctx.S.Errorf("%s: %s: not a directory", args[0], dir)
		return 1
	}

	argv := []string{term, "-e", session.ProgramName, dir}
	return ctx.S.Runner.Exec(argv, run.Background, run.SilenceNone)
}

// Exp exports the current listing (or the given paths) to a temp file and
// prints its location.
func Exp(ctx *Ctx, args []string) int {
	var names []string
	if len(args) > 1 {
		names = args[1:]
	} else if ctx.S.Snapshot != nil {
		for _, e := range ctx.S.Snapshot.Entries {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		ctx.S.Errorf("exp: nothing to export")
		return 1
	}

	dest := filepath.Join(ctx.S.Paths.TmpDir,
		fmt.Sprintf("%s.export", session.ProgramName))
	content := strings.Join(names, "\n") + "\n"
	if err := afero.WriteFile(ctx.S.Fs, dest, []byte(content), 0600); err != nil {
		ctx.S.Errorf("exp: %v", err)
		return 1
	}
	fmt.Fprintln(ctx.S.Stdout, dest)
	return 0
}

func init() {
	addCmd(Open, "o", "open")
	addCmd(OpenWith, "ow")
	addCmd(Opener, "opener")
	addCmd(NewInstance, "x", "X")
	addCmd(Exp, "exp")
}
