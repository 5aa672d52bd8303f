package commands

import (
	"fmt"

	"github.com/calens/finch/core/strutil"
)

// Sel adds files to the selection box. Arguments were already expanded
// by the parser, so globs and ELNs arrive as plain names.
func Sel(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		return ShowSel(ctx, args)
	}

	added := 0
	code := 0
	for _, a := range args[1:] {
		p := ctx.S.AbsPath(strutil.Dequote(a))
		if _, err := ctx.S.Fs.Stat(p); err != nil {
			ctx.S.Errorf("sel: %s: no such file or directory", a)
			code = 1
			continue
		}
		if ctx.S.Sel.Add(p) {
			added++
		}
	}

	if err := ctx.S.Sel.Save(); err != nil {
		ctx.S.Errorf("sel: %v", err)
		return 1
	}
	ctx.S.Infof("%d file(s) selected (%d total)", added, ctx.S.Sel.Len())
	return code
}

// Desel removes files from the selection box; "*" or no argument clears
// everything.
func Desel(ctx *Ctx, args []string) int {
	if ctx.S.Sel.Len() == 0 {
		ctx.S.Infof("ds: no selected files")
		return 0
	}

	if len(args) < 2 || args[1] == "*" || args[1] == "a" {
		ctx.S.Sel.Clear()
		if err := ctx.S.Sel.Save(); err != nil {
			ctx.S.Errorf("ds: %v", err)
			return 1
		}
		ctx.S.Infof("selection cleared")
		return 0
	}

	for _, a := range args[1:] {
		ctx.S.Sel.Remove(ctx.S.AbsPath(strutil.Dequote(a)))
	}
	if err := ctx.S.Sel.Save(); err != nil {
		ctx.S.Errorf("ds: %v", err)
		return 1
	}
	return 0
}

// ShowSel prints the selection box contents.
func ShowSel(ctx *Ctx, args []string) int {
	paths := ctx.S.Sel.Paths()
	if len(paths) == 0 {
		ctx.S.Infof("sb: no selected files")
		return 0
	}
	for i, p := range paths {
		fmt.Fprintf(ctx.S.Stdout, "%d %s\n", i+1, p)
	}
	return 0
}

func init() {
	addCmd(Sel, "sel", "s")
	addCmd(Desel, "ds", "desel")
	addCmd(ShowSel, "sb", "selbox")
}
