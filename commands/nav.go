package commands

import (
	"fmt"
	"strings"

	"github.com/calens/finch/core/session"
	"github.com/calens/finch/core/strutil"
)

// Cd changes the current workspace's directory.
func Cd(ctx *Ctx, args []string) int {
	cmd := &SimpleCommand{
		Use:   "cd [DIR]",
		Short: "Change the current directory; no argument means home.",
	}

	return cmd.Run(ctx, args, func() int {
		rest := cmd.Flags().Args()
		target := ""
		if len(rest) > 0 {
			target = rest[0]
		}
		return ctx.S.Cd(target, session.CdVerbose)
	})
}

// Back moves backwards in the directory history. "b hist" prints the
// history, "b clear" resets it, and "b !N" jumps to entry N.
func Back(ctx *Ctx, args []string) int {
	if len(args) > 1 {
		switch {
		case args[1] == "hist":
			return DirhistBack(ctx, []string{"bh"})
		case args[1] == "clear":
			ctx.S.Hist.Clear(ctx.S.CWD())
			return 0
		case strings.HasPrefix(args[1], "!"):
			n, err := strutil.AtoiChecked(args[1][1:])
			if err != nil {
				ctx.S.Errorf("b: %s: invalid entry", args[1])
				return 1
			}
			return ctx.S.DirhistJump(n)
		default:
			ctx.S.Errorf("b: usage: b [hist | clear | !N]")
			return 1
		}
	}
	return ctx.S.Back()
}

// Forth moves forwards in the directory history.
func Forth(ctx *Ctx, args []string) int {
	return ctx.S.Forth()
}

// DirhistBack prints the directory history; a numeric argument jumps to
// that entry.
func DirhistBack(ctx *Ctx, args []string) int {
	if len(args) > 1 && strutil.IsNumber(args[1]) {
		n, err := strutil.AtoiChecked(args[1])
		if err != nil {
			ctx.S.Errorf("%s: %s: invalid entry", args[0], args[1])
			return 1
		}
		return ctx.S.DirhistJump(n)
	}

	cursor := ctx.S.Hist.Cursor()
	for i := 0; i < ctx.S.Hist.Len(); i++ {
		path, valid := ctx.S.Hist.At(i)
		if !valid {
			continue
		}
		marker := "  "
		if i == cursor {
			marker = "> "
		}
		fmt.Fprintf(ctx.S.Stdout, "%s%d %s\n", marker, i+1, path)
	}
	return 0
}

// Backdir jumps to an ancestor of the current directory by substring.
func Backdir(ctx *Ctx, args []string) int {
	query := ""
	if len(args) > 1 {
		query = args[1]
	}
	return ctx.S.Backdir(query)
}

// Workspace lists the workspaces or switches to one.
func Workspace(ctx *Ctx, args []string) int {
	if len(args) == 1 {
		ctx.S.ListWorkspaces()
		return 0
	}
	n, err := strutil.AtoiChecked(args[1])
	if err != nil {
		ctx.S.Errorf("ws: %s: invalid workspace number", args[1])
		return 1
	}
	return ctx.S.SwitchWorkspace(n)
}

// Jump changes to the best-ranked visited directory matching the query
// terms in order. "jc" restricts matches to directories under the current
// one, "jp" to its ancestors; "jl" lists matches instead of jumping and
// "je" drops database entries whose directory no longer exists.
func Jump(ctx *Ctx, args []string) int {
	if ctx.S.Jump == nil {
		ctx.S.Errorf("j: the jump database is disabled")
		return 1
	}

	if args[0] == "je" {
		return jumpPurge(ctx)
	}

	if len(args) == 1 || args[0] == "jl" {
		entries, err := ctx.S.Jump.Entries()
		if err != nil {
			ctx.S.Errorf("j: %v", err)
			return 1
		}
		for _, e := range entries {
			if !jumpMatch(ctx, args[0], e.Path, args[1:]) {
				continue
			}
			fmt.Fprintf(ctx.S.Stdout, "%d\t%s\n", e.Visits, e.Path)
		}
		return 0
	}

	entries, err := ctx.S.Jump.Entries()
	if err != nil {
		ctx.S.Errorf("j: %v", err)
		return 1
	}
	for _, e := range entries {
		if jumpMatch(ctx, args[0], e.Path, args[1:]) {
			return ctx.S.Cd(e.Path, session.CdVerbose)
		}
	}
	ctx.S.Errorf("j: %v: no visited directory matches", args[1:])
	return 1
}

// jumpMatch applies the query terms in order plus the jc/jp scope rule.
func jumpMatch(ctx *Ctx, invoked, path string, terms []string) bool {
	cwd := ctx.S.CWD()
	switch invoked {
	case "jc":
		if !strings.HasPrefix(path, cwd+"/") {
			return false
		}
	case "jp":
		if !strings.HasPrefix(cwd, path+"/") {
			return false
		}
	}

	hay := path
	if !ctx.S.CaseSensPath {
		hay = strings.ToLower(hay)
	}
	pos := 0
	for _, t := range terms {
		if !ctx.S.CaseSensPath {
			t = strings.ToLower(t)
		}
		i := strings.Index(hay[pos:], t)
		if i < 0 {
			return false
		}
		pos += i + len(t)
	}
	return true
}

func jumpPurge(ctx *Ctx) int {
	entries, err := ctx.S.Jump.Entries()
	if err != nil {
		ctx.S.Errorf("je: %v", err)
		return 1
	}
	purged := 0
	for _, e := range entries {
		if _, err := ctx.S.Fs.Stat(e.Path); err == nil {
			continue
		}
		if err := ctx.S.Jump.Remove(e.Path); err != nil {
			ctx.S.Errorf("je: %s: %v", e.Path, err)
			return 1
		}
		purged++
	}
	ctx.S.Infof("je: %d entries removed", purged)
	return 0
}

// Pin remembers a directory for the "," placeholder.
func Pin(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		if ctx.S.Pinned == "" {
			ctx.S.Infof("pin: no pinned file")
			return 0
		}
		ctx.S.Infof("pinned: %s", ctx.S.Pinned)
		return 0
	}

	target := ctx.S.AbsPath(strutil.Dequote(args[1]))
	if _, err := ctx.S.Fs.Stat(target); err != nil {
		ctx.S.Errorf("pin: %s: no such file or directory", args[1])
		return 1
	}
	ctx.S.Pinned = target
	ctx.S.Infof("pinned: %s", target)
	return 0
}

// Unpin forgets the pinned path.
func Unpin(ctx *Ctx, args []string) int {
	ctx.S.Pinned = ""
	return 0
}

// Cwd prints the current directory.
func Cwd(ctx *Ctx, args []string) int {
	fmt.Fprintln(ctx.S.Stdout, ctx.S.CWD())
	return 0
}

func init() {
	addCmd(Cd, "cd")
	addCmd(Back, "b", "back")
	addCmd(Forth, "f", "forth")
	addCmd(DirhistBack, "bh", "fh", "dh", "dirhist")
	addCmd(Backdir, "bd")
	addCmd(Workspace, "ws")
	addCmd(Jump, "j", "jc", "jp", "jl", "je")
	addCmd(Pin, "pin")
	addCmd(Unpin, "unpin")
	addCmd(Cwd, "path", "cwd", "pwd")
}
