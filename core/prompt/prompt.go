// Package prompt drives the interactive loop: readline in, dispatcher
// out, once per line until an exit command or EOF.
package prompt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"

	"github.com/calens/finch/commands"
	"github.com/calens/finch/core/dispatch"
	"github.com/calens/finch/core/session"
)

var (
	cwdColor  = color.New(color.FgCyan, color.Bold)
	failColor = color.New(color.FgRed)
)

// Loop owns the readline instance. It doubles as the session's Prompter
// so interactive sub-prompts (rename, backdir menu, pager) share line
// editing and history suppression with the main prompt.
type Loop struct {
	S *session.Session
	D *dispatch.Dispatcher

	rl *readline.Instance
}

// New builds the loop; histFile may be empty (stealth mode) to keep the
// readline history in memory only.
func New(s *session.Session, d *dispatch.Dispatcher, histFile string) (*Loop, error) {
	l := &Loop{S: s, D: d}

	cfg := &readline.Config{
		HistoryFile:     histFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "q",
		AutoComplete:    &completer{s: s},
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	l.rl = rl
	return l, nil
}

// ReadLine implements session.Prompter for sub-prompts.
func (l *Loop) ReadLine(prompt string) (string, error) {
	l.rl.SetPrompt(prompt)
	defer l.rl.SetPrompt(l.prompt())
	line, err := l.rl.Readline()
	return strings.TrimSpace(line), err
}

// Run reads and dispatches lines until quit or EOF, returning the last
// command's exit code.
func (l *Loop) Run() int {
	defer l.rl.Close()

	for !l.D.Quitting() {
		l.rl.SetPrompt(l.prompt())
		line, err := l.rl.Readline()
		switch err {
		case nil:
		case readline.ErrInterrupt:
			continue
		case io.EOF:
			return l.S.ExitCode
		default:
			l.S.Errorf("%v", err)
			return l.S.ExitCode
		}
		l.D.Dispatch(line)
	}
	return l.S.ExitCode
}

// prompt renders "[code] cwd $ " with the home directory shortened and
// the failure code of the previous command, if any, up front.
func (l *Loop) prompt() string {
	cwd := l.S.CWD()
	if l.S.Home != "" && strings.HasPrefix(cwd, l.S.Home) {
		cwd = "~" + strings.TrimPrefix(cwd, l.S.Home)
	}

	code := ""
	if l.S.ExitCode != 0 {
		code = fmt.Sprintf("[%d] ", l.S.ExitCode)
		if l.S.Colorize {
			code = failColor.Sprint(code)
		}
	}
	if l.S.Colorize {
		cwd = cwdColor.Sprint(cwd)
	}
	return fmt.Sprintf("%s%s %s ", code, cwd, "$")
}

// completer offers command names for the first word and snapshot entry
// names afterwards.
type completer struct {
	s *session.Session
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	start := strings.LastIndexAny(head, " \t") + 1
	word := head[start:]

	var pool []string
	if start == 0 {
		pool = append(pool, commands.Names()...)
		pool = append(pool, c.s.PathCmds...)
	} else if c.s.Snapshot != nil {
		for _, e := range c.s.Snapshot.Entries {
			pool = append(pool, e.Name)
		}
	}
	sort.Strings(pool)

	var out [][]rune
	for _, cand := range pool {
		if strings.HasPrefix(cand, word) && cand != word {
			out = append(out, []rune(cand[len(word):]))
		}
	}
	return out, len([]rune(word))
}
