package commands

import (
	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/strutil"
)

// dequoteAll cleans parser output for hand-off to the POSIX tools.
func dequoteAll(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strutil.Dequote(a)
	}
	return out
}

// afterFileOp clears the selection when the operation consumed it and
// relists once.
func afterFileOp(ctx *Ctx, code int, consumedSel bool) int {
	if code == 0 && consumedSel {
		ctx.S.Sel.Clear()
		if err := ctx.S.Sel.Save(); err != nil {
			ctx.S.Errorf("%v", err)
		}
	}
	if ctx.S.AutoLS {
		_ = ctx.S.Refresh()
	}
	return code
}

// usedSelection reports whether any argument names a selected file; the
// parser already replaced the sel keyword by then.
func usedSelection(ctx *Ctx, args []string) bool {
	for _, a := range args {
		if ctx.S.Sel.Contains(ctx.S.AbsPath(strutil.Dequote(a))) {
			return true
		}
	}
	return false
}

// NewFile creates files and, for names with a trailing slash, directories.
func NewFile(ctx *Ctx, args []string) int {
	code := ctx.Ops.Create(dequoteAll(args[1:]))
	return afterFileOp(ctx, code, false)
}

// Dup duplicates each argument next to itself.
func Dup(ctx *Ctx, args []string) int {
	code := ctx.Ops.Duplicate(dequoteAll(args[1:]))
	return afterFileOp(ctx, code, false)
}

// Copy wraps cp. "v"/"paste" copy the arguments into the cwd.
func Copy(ctx *Ctx, args []string) int {
	rest := dequoteAll(args[1:])
	if args[0] == "v" || args[0] == "vv" || args[0] == "paste" {
		rest = append(rest, ctx.S.CWD())
	}
	code := ctx.Ops.Copy(rest)
	return afterFileOp(ctx, code, false)
}

// Move wraps mv, including the single-argument interactive rename.
func Move(ctx *Ctx, args []string) int {
	rest := dequoteAll(args[1:])
	sel := usedSelection(ctx, args[1:])
	code := ctx.Ops.Move(rest)
	return afterFileOp(ctx, code, sel)
}

// Remove wraps rm, clearing any selected files it deleted.
func Remove(ctx *Ctx, args []string) int {
	rest := dequoteAll(args[1:])
	sel := usedSelection(ctx, args[1:])
	code := ctx.Ops.Remove(rest)
	return afterFileOp(ctx, code, sel)
}

// Mkdir creates directories.
func Mkdir(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		ctx.S.Errorf("md: missing operand")
		return 1
	}
	argv := append([]string{"mkdir", "-p", "--"}, dequoteAll(args[1:])...)
	code := ctx.S.Runner.Exec(argv, run.Foreground, run.SilenceNone)
	return afterFileOp(ctx, code, false)
}

// Link creates one symlink.
func Link(ctx *Ctx, args []string) int {
	source, link := "", ""
	if len(args) > 1 {
		source = strutil.Dequote(args[1])
	}
	if len(args) > 2 {
		link = strutil.Dequote(args[2])
	}
	code := ctx.Ops.Link(source, link)
	return afterFileOp(ctx, code, false)
}

// BatchLink symlinks every argument under a prompted suffix.
func BatchLink(ctx *Ctx, args []string) int {
	code := ctx.Ops.BatchLink(dequoteAll(args[1:]))
	return afterFileOp(ctx, code, false)
}

// BulkRename renames the arguments through an editor buffer.
func BulkRename(ctx *Ctx, args []string) int {
	names := dequoteAll(args[1:])
	if len(names) == 0 && ctx.S.Snapshot != nil {
		for _, e := range ctx.S.Snapshot.Entries {
			names = append(names, e.Name)
		}
	}
	return ctx.Ops.BulkRename(names)
}

func init() {
	addCmd(NewFile, "n", "new")
	addCmd(Dup, "dup")
	addCmd(Copy, "c", "cp", "v", "vv", "paste")
	addCmd(Move, "m", "mv")
	addCmd(Remove, "r")
	addCmd(Mkdir, "md")
	addCmd(Link, "l", "le", "ln")
	addCmd(BatchLink, "bl")
	addCmd(BulkRename, "br", "bulk")
}
