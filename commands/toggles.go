package commands

// toggle implements the shared on/off/status syntax for boolean commands.
func toggle(ctx *Ctx, args []string, value *bool, label string) int {
	if len(args) < 2 || args[1] == "status" {
		state := "off"
		if *value {
			state = "on"
		}
		ctx.S.Infof("%s: %s", label, state)
		return 0
	}

	switch args[1] {
	case "on":
		*value = true
	case "off":
		*value = false
	default:
		ctx.S.Errorf("%s: usage: %s [on | off | status]", args[0], args[0])
		return 1
	}
	return 0
}

// AutoCD toggles entering directories by typing their name or ELN.
func AutoCD(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.AutoCD, "autocd")
}

// AutoOpen toggles opening files by typing their name or ELN.
func AutoOpen(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.AutoOpen, "auto-open")
}

// ExtCommands toggles running unknown names through the shell.
func ExtCommands(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.ExtCmdOK, "external commands")
}

// Pager toggles paged listings.
func Pager(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.PagerOn, "pager")
}

// Columns toggles the column layout.
func Columns(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.Columns, "columns")
}

// Icons toggles entry icons.
func Icons(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.Icons, "icons")
}

// LightMode toggles the reduced-feature listing mode.
func LightMode(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.LightMode, "light mode")
}

// Unicode toggles unicode decorations.
func Unicode(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.Unicode, "unicode")
}

// FilesCounter toggles the per-directory entry counter.
func FilesCounter(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.FilesCounter, "files counter")
}

// FoldersFirst toggles the dirs-before-files listing order.
func FoldersFirst(ctx *Ctx, args []string) int {
	if len(args) < 2 || args[1] == "status" {
		state := "on"
		if ctx.S.ListOpts.MixAll {
			state = "off"
		}
		ctx.S.Infof("folders first: %s", state)
		return 0
	}
	switch args[1] {
	case "on":
		ctx.S.ListOpts.MixAll = false
	case "off":
		ctx.S.ListOpts.MixAll = true
	default:
		ctx.S.Errorf("ff: usage: ff [on | off | status]")
		return 1
	}
	return reloadAfterViewChange(ctx)
}

// Colors toggles colorized output.
func Colors(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.Colorize, "colors")
}

// LogCmds toggles the command log.
func LogCmds(ctx *Ctx, args []string) int {
	return toggle(ctx, args, &ctx.S.LogCmds, "command log")
}

func init() {
	addCmd(AutoCD, "acd", "autocd")
	addCmd(AutoOpen, "ao", "auto-open")
	addCmd(ExtCommands, "ext")
	addCmd(Pager, "pg", "pager")
	addCmd(Columns, "cl", "columns")
	addCmd(Icons, "icons")
	addCmd(LightMode, "lm")
	addCmd(Unicode, "uc", "unicode")
	addCmd(FilesCounter, "fc")
	addCmd(FoldersFirst, "ff")
	addCmd(Colors, "cc", "colors")
	addCmd(LogCmds, "log")
}
