// Package commands holds the internal command table. Each file registers
// its commands with init(), keyed by every name the command answers to.
package commands

import (
	"fmt"
	"io"
	"sort"

	getopt "github.com/pborman/getopt/v2"

	"github.com/calens/finch/core/fsops"
	"github.com/calens/finch/core/log"
	"github.com/calens/finch/core/session"
	"github.com/calens/finch/core/trash"
)

// Ctx is everything a command may touch. The function fields are wired by
// the dispatcher so commands can re-enter the pipeline without importing
// it.
type Ctx struct {
	S   *session.Session
	Ops *fsops.Ops
	Can *trash.Can
	Log *log.Log

	// Dispatch re-runs a full command line through parse and dispatch.
	Dispatch func(line string) int
	// RunAction executes a plugin with the given argument vector.
	RunAction func(value string, args []string) int
	// Open hands a file to the opener.
	Open func(path string, background bool) int
	// Quit asks the prompt loop to exit.
	Quit func()
}

// CommandFunc runs one internal command. args[0] is the name the command
// was invoked under.
type CommandFunc func(ctx *Ctx, args []string) int

// AllCommands maps every command name and synonym to its implementation.
var AllCommands = make(map[string]CommandFunc)

func addCmd(fn CommandFunc, names ...string) {
	for _, name := range names {
		if _, ok := AllCommands[name]; ok {
			panic(fmt.Sprintf("duplicate command name: %q", name))
		}
		AllCommands[name] = fn
	}
}

// IsInternal reports whether name is in the command table.
func IsInternal(name string) bool {
	_, ok := AllCommands[name]
	return ok
}

// Names returns all registered command names, sorted.
func Names() []string {
	out := make([]string, 0, len(AllCommands))
	for name := range AllCommands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SimpleCommand handles flag parsing and usage for a command.
type SimpleCommand struct {
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag
	// isn't added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was successful call the callback.
func (s *SimpleCommand) Run(ctx *Ctx, args []string, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(args, nil)
	if err != nil && !s.NeverBail {
		fmt.Fprintf(ctx.S.Stderr, "error: %s\n\n", err)

		s.PrintHelp(ctx.S.Stdout)
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(ctx.S.Stdout)
		return 0
	}

	return callback()
}

// BytesToHuman renders a byte count with a metric suffix.
func BytesToHuman(bytes int64) string {
	for _, e := range []struct {
		unit  string
		power int64
	}{
		{"P", 1e15},
		{"T", 1e12},
		{"G", 1e9},
		{"M", 1e6},
		{"K", 1e3},
	} {
		quotient := bytes / e.power
		switch {
		case quotient == 0:
			continue
		case quotient > 10:
			return fmt.Sprintf("%d%s", quotient, e.unit)
		default:
			return fmt.Sprintf("%0.1f%s", float64(bytes)/float64(e.power), e.unit)
		}
	}

	return fmt.Sprintf("%d", bytes)
}

// resolveTargets maps command arguments to absolute paths.
func resolveTargets(s *session.Session, args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = s.AbsPath(a)
	}
	return out
}
