package commands

import (
	"fmt"

	"github.com/calens/finch/core/listing"
	"github.com/calens/finch/core/strutil"
)

// List reloads the snapshot and prints it.
func List(ctx *Ctx, args []string) int {
	if err := ctx.S.Refresh(); err != nil {
		ctx.S.Errorf("%s: %v", args[0], err)
		return 1
	}
	ctx.S.PrintListing()
	return 0
}

// Sort shows or changes the sort key. A "rev" argument toggles reverse
// ordering.
func Sort(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		name := [...]string{"name", "size", "mtime", "extension"}[ctx.S.ListOpts.Sort]
		order := "ascending"
		if ctx.S.ListOpts.Reverse {
			order = "descending"
		}
		ctx.S.Infof("sort: %s, %s", name, order)
		return 0
	}

	if args[1] == "rev" {
		ctx.S.ListOpts.Reverse = !ctx.S.ListOpts.Reverse
		return reloadAfterViewChange(ctx)
	}
	key, ok := listing.SortKeyFromName(args[1])
	if !ok {
		ctx.S.Errorf("st: %s: valid keys are name, size, mtime, extension, rev", args[1])
		return 1
	}
	ctx.S.ListOpts.Sort = key
	return reloadAfterViewChange(ctx)
}

// Filter shows, sets or clears the listing filter.
func Filter(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		ctx.S.Infof("filter: %s", filterText(ctx))
		return 0
	}

	pattern := strutil.Dequote(args[1])
	if pattern == "unset" || pattern == "none" {
		pattern = ""
	}
	if err := ctx.S.SetFilter(pattern); err != nil {
		ctx.S.Errorf("ft: %s: %v", args[1], err)
		return 1
	}
	return reloadAfterViewChange(ctx)
}

func filterText(ctx *Ctx) string {
	if ctx.S.ListOpts.Filter == nil {
		return "none"
	}
	return "set"
}

// MaxFiles caps how many entries the listing shows; 0 lifts the cap.
func MaxFiles(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		ctx.S.Infof("mf: %d", ctx.S.ListOpts.MaxFiles)
		return 0
	}
	n, err := strutil.AtoiChecked(args[1])
	if err != nil {
		ctx.S.Errorf("mf: %s: invalid number", args[1])
		return 1
	}
	ctx.S.ListOpts.MaxFiles = n
	return reloadAfterViewChange(ctx)
}

// HiddenFiles toggles dotfile visibility.
func HiddenFiles(ctx *Ctx, args []string) int {
	code := toggle(ctx, args, &ctx.S.ListOpts.ShowHidden, "hidden files")
	if code != 0 {
		return code
	}
	return reloadAfterViewChange(ctx)
}

func reloadAfterViewChange(ctx *Ctx) int {
	if !ctx.S.AutoLS {
		return 0
	}
	if err := ctx.S.Refresh(); err != nil {
		ctx.S.Errorf("%v", err)
		return 1
	}
	ctx.S.PrintListing()
	return 0
}

// Prop prints metadata for each argument.
func Prop(ctx *Ctx, args []string) int {
	if len(args) < 2 {
		ctx.S.Errorf("p: missing operand")
		return 1
	}

	code := 0
	for _, a := range args[1:] {
		p := ctx.S.AbsPath(strutil.Dequote(a))
		info, err := ctx.S.Fs.Stat(p)
		if err != nil {
			ctx.S.Errorf("p: %s: no such file or directory", a)
			code = 1
			continue
		}
		fmt.Fprintf(ctx.S.Stdout, "%s\t%s\t%s\t%s\n",
			info.Mode(), BytesToHuman(info.Size()),
			info.ModTime().Format("2006-01-02 15:04"), p)
	}
	return code
}

func init() {
	addCmd(List, "ls", "rf", "refresh", "rl", "reload")
	addCmd(Sort, "st", "sort")
	addCmd(Filter, "ft", "filter")
	addCmd(MaxFiles, "mf")
	addCmd(HiddenFiles, "hf")
	addCmd(Prop, "p", "pr", "pp", "prop")
}
