package commands

// Disabled-feature commands. These subsystems are not built into this
// binary; each name still answers so scripts get a clear diagnostic and
// the feature-disabled exit code instead of falling through to the shell.
type DisabledCommand struct {
	Names   []string
	Feature string
}

// FeatureDisabledCode is returned by every stubbed subsystem command.
const FeatureDisabledCode = 2

// ToCommand converts the stub description to a functioning command.
func (c *DisabledCommand) ToCommand() CommandFunc {
	return func(ctx *Ctx, args []string) int {
		ctx.S.Errorf("%s: %s support is not built into this binary", args[0], c.Feature)
		return FeatureDisabledCode
	}
}

var disabledCommands = []DisabledCommand{
	{
		Names:   []string{"bm", "bookmarks"},
		Feature: "bookmark",
	},
	{
		Names:   []string{"net"},
		Feature: "remote filesystem",
	},
	{
		Names:   []string{"mm", "mime"},
		Feature: "MIME association",
	},
	{
		Names:   []string{"mp"},
		Feature: "mountpoint",
	},
	{
		Names:   []string{"media"},
		Feature: "removable media",
	},
	{
		Names:   []string{"cs", "colorscheme"},
		Feature: "color scheme",
	},
	{
		Names:   []string{"kb", "keybinds"},
		Feature: "keybinding editor",
	},
	{
		Names:   []string{"pf", "prof", "profile"},
		Feature: "profile switching",
	},
}

func init() {
	for i := range disabledCommands {
		c := &disabledCommands[i]
		addCmd(c.ToCommand(), c.Names...)
	}
}
