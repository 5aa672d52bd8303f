package commands

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/calens/finch/core/config"
)

// Version is stamped by the build; the default marks development trees.
var Version = "0.9.0-dev"

// Alias lists the alias table or shows one alias by name. Aliases are
// defined in the configuration file.
func Alias(ctx *Ctx, args []string) int {
	if len(args) > 1 {
		name := args[1]
		value, ok := ctx.S.Aliases[name]
		if !ok {
			ctx.S.Errorf("alias: %s: no such alias", name)
			return 1
		}
		fmt.Fprintf(ctx.S.Stdout, "%s='%s'\n", name, value)
		return 0
	}

	names := make([]string, 0, len(ctx.S.Aliases))
	for name := range ctx.S.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(ctx.S.Stdout, "%s='%s'\n", name, ctx.S.Aliases[name])
	}
	return 0
}

// Actions lists the action table; "actions edit" opens the actions file
// and reloads the table afterwards.
func Actions(ctx *Ctx, args []string) int {
	if len(args) > 1 && args[1] == "edit" {
		if code := ctx.Open(ctx.S.Paths.ActionsFile, false); code != 0 {
			return code
		}
		table, err := config.LoadActions(ctx.S.Fs, ctx.S.Paths.ActionsFile)
		if err != nil {
			ctx.S.Errorf("actions: %v", err)
			return 1
		}
		ctx.S.Actions = table
		return 0
	}

	names := make([]string, 0, len(ctx.S.Actions))
	for name := range ctx.S.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(ctx.S.Stdout, "%s->%s\n", name, ctx.S.Actions[name])
	}
	return 0
}

// Edit opens the configuration file and reloads it on return.
func Edit(ctx *Ctx, args []string) int {
	if ctx.S.Stealth {
		ctx.S.Errorf("edit: not available in stealth mode")
		return 1
	}
	if code := ctx.Open(ctx.S.Paths.ConfigFile, false); code != 0 {
		return code
	}
	cfg, err := config.Load(ctx.S.Fs, ctx.S.Paths.ConfigFile)
	if err != nil {
		ctx.S.Errorf("edit: %v", err)
		return 1
	}
	cfg.Apply(ctx.S)
	if ctx.S.AutoLS {
		if err := ctx.S.Refresh(); err != nil {
			ctx.S.Errorf("edit: %v", err)
			return 1
		}
	}
	return 0
}

// Cmd lists every internal command name.
func Cmd(ctx *Ctx, args []string) int {
	fmt.Fprintln(ctx.S.Stdout, strings.Join(Names(), " "))
	return 0
}

// Ver prints the program version.
func Ver(ctx *Ctx, args []string) int {
	fmt.Fprintf(ctx.S.Stdout, "%s %s\n", "finch", Version)
	fmt.Fprintln(ctx.S.Stdout, "A keyboard-driven terminal file manager")
	return 0
}

// FsInfo reports capacity and free space of the filesystem holding the
// current directory. Only meaningful on the host filesystem.
func FsInfo(ctx *Ctx, args []string) int {
	var st unix.Statfs_t
	if err := unix.Statfs(ctx.S.CWD(), &st); err != nil {
		ctx.S.Errorf("fs: %s: %v", ctx.S.CWD(), err)
		return 1
	}
	total := int64(st.Blocks) * st.Bsize
	free := int64(st.Bavail) * st.Bsize
	fmt.Fprintf(ctx.S.Stdout, "%s: %s free of %s\n",
		ctx.S.CWD(), BytesToHuman(free), BytesToHuman(total))
	return 0
}

// Bonus cycles through a few mottoes.
func Bonus(ctx *Ctx, args []string) int {
	mottoes := []string{
		"The file manager that stays out of your way.",
		"Four keystrokes beat four clicks.",
		"Everything is a list until you open it.",
	}
	fmt.Fprintln(ctx.S.Stdout, mottoes[bonusIdx%len(mottoes)])
	bonusIdx++
	return 0
}

var bonusIdx int

// Splash prints the startup banner.
func Splash(ctx *Ctx, args []string) int {
	fmt.Fprintf(ctx.S.Stdout, `
     .-.
    (o o)   finch %s
    /( )\   the terminal file manager
     " "
`, Version)
	return 0
}

var tips = []string{
	"Type a directory name (or its number) to cd into it.",
	"Type a file's number to open it with your configured opener.",
	"Use 's *.go' to select files by glob, 'sb' to review the box.",
	"'...' climbs two directories, '....' climbs three.",
	"Pin a directory with 'pin'; ',' expands to it anywhere.",
	"'b' and 'f' walk the directory history; 'bh' lists it.",
	"End a line with '&' to run it in the background.",
	"'j docs' jumps to your most visited directory matching 'docs'.",
}

// Tips prints usage tips.
func Tips(ctx *Ctx, args []string) int {
	for _, t := range tips {
		fmt.Fprintf(ctx.S.Stdout, "TIP: %s\n", t)
	}
	return 0
}

// Help prints a short overview and the command list.
func Help(ctx *Ctx, args []string) int {
	fmt.Fprintf(ctx.S.Stdout, "%s %s\n\n", "finch", Version)
	fmt.Fprintln(ctx.S.Stdout, "Enter a directory name to cd, a file name to open it, or an ELN")
	fmt.Fprintln(ctx.S.Stdout, "for either. Anything not listed below runs as a shell command.")
	fmt.Fprintln(ctx.S.Stdout)
	fmt.Fprintln(ctx.S.Stdout, "Commands:")
	fmt.Fprintln(ctx.S.Stdout, strings.Join(Names(), " "))
	fmt.Fprintln(ctx.S.Stdout)
	fmt.Fprintln(ctx.S.Stdout, "Run '<command> --help' for details on most commands.")
	return 0
}

// QuitCmd exits the prompt loop. The capital form additionally writes the
// workspace table to the .last file so a shell wrapper can cd to the
// starred slot.
func QuitCmd(ctx *Ctx, args []string) int {
	if args[0] == "Q" && ctx.S.Paths.LastFile != "" && !ctx.S.Stealth {
		err := config.SaveWorkspaces(ctx.S.Fs, ctx.S.Paths.LastFile,
			ctx.S.Workspaces, ctx.S.CurWS)
		if err != nil {
			ctx.S.Errorf("Q: %v", err)
		}
	}
	ctx.Quit()
	return 0
}

func init() {
	addCmd(Alias, "alias")
	addCmd(Actions, "actions")
	addCmd(Edit, "edit")
	addCmd(Cmd, "cmd", "commands")
	addCmd(Ver, "ver", "version")
	addCmd(FsInfo, "fs")
	addCmd(Bonus, "bonus")
	addCmd(Splash, "splash")
	addCmd(Tips, "tips")
	addCmd(Help, "help", "?")
	addCmd(QuitCmd, "q", "Q", "quit", "exit")
}
