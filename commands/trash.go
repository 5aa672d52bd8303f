package commands

import (
	"fmt"
)

// Trash moves files into the trash can, or lists it with no arguments.
func Trash(ctx *Ctx, args []string) int {
	if ctx.S.Stealth {
		ctx.S.Infof("t: trash is disabled in stealth mode")
		return 0
	}
	if len(args) > 1 && args[1] == "clear" {
		return ctx.Can.Empty()
	}
	if len(args) > 1 && args[1] == "list" || len(args) == 1 {
		items, err := ctx.Can.List()
		if err != nil {
			ctx.S.Errorf("t: %v", err)
			return 1
		}
		if len(items) == 0 {
			ctx.S.Infof("t: trash is empty")
			return 0
		}
		for i, item := range items {
			fmt.Fprintf(ctx.S.Stdout, "%d %s (%s)\n", i+1, item.Name,
				item.Deleted.Format("2006-01-02 15:04"))
		}
		return 0
	}

	sel := usedSelection(ctx, args[1:])
	code := ctx.Can.Trash(dequoteAll(args[1:]))
	return afterFileOp(ctx, code, sel)
}

// Untrash restores trashed files to their recorded origins.
func Untrash(ctx *Ctx, args []string) int {
	if ctx.S.Stealth {
		ctx.S.Infof("u: trash is disabled in stealth mode")
		return 0
	}
	var names []string
	if len(args) > 1 && args[1] != "*" && args[1] != "a" {
		names = dequoteAll(args[1:])
	}
	code := ctx.Can.Untrash(names)
	return afterFileOp(ctx, code, false)
}

func init() {
	addCmd(Trash, "t", "tr", "trash")
	addCmd(Untrash, "u", "undel", "untrash")
}
