package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calens/finch/core/config"
)

// History prints or manipulates the command history. "history clear"
// empties both the in-memory list and the backing file; "history N"
// shows the last N entries. The !N / !! / !str expansions themselves
// happen before parsing, in the dispatcher.
func History(ctx *Ctx, args []string) int {
	cmd := &SimpleCommand{
		Use:   "history [clear | N]",
		Short: "list or clear the command history",
	}
	return cmd.Run(ctx, args, func() int {
		rest := cmd.Flags().Args()
		hist := ctx.S.CmdHistory

		if len(rest) > 0 {
			switch {
			case rest[0] == "clear":
				ctx.S.CmdHistory = nil
				if ctx.S.Paths.HistFile != "" {
					if err := config.SaveHistory(ctx.S.Fs, ctx.S.Paths.HistFile, nil); err != nil {
						ctx.S.Errorf("history: %v", err)
						return 1
					}
				}
				return 0
			default:
				n, err := strconv.Atoi(rest[0])
				if err != nil || n < 0 {
					ctx.S.Errorf("history: %q: not a number", rest[0])
					return 1
				}
				if n < len(hist) {
					hist = hist[len(hist)-n:]
				}
			}
		}

		offset := len(ctx.S.CmdHistory) - len(hist)
		for i, line := range hist {
			fmt.Fprintf(ctx.S.Stdout, "%d %s\n", offset+i+1, line)
		}
		return 0
	})
}

// Msg prints accumulated program messages, or clears them.
func Msg(ctx *Ctx, args []string) int {
	cmd := &SimpleCommand{
		Use:   "msg [clear]",
		Short: "list program messages",
	}
	return cmd.Run(ctx, args, func() int {
		rest := cmd.Flags().Args()
		if len(rest) > 0 && rest[0] == "clear" {
			ctx.S.Messages = nil
			return 0
		}
		if len(ctx.S.Messages) == 0 {
			fmt.Fprintln(ctx.S.Stdout, "msg: no messages")
			return 0
		}
		fmt.Fprintln(ctx.S.Stdout, strings.Join(ctx.S.Messages, "\n"))
		return 0
	})
}

func init() {
	addCmd(History, "history")
	addCmd(Msg, "msg", "messages")
}
