// Package parse turns one raw input line into a token vector plus flags.
// It is a pure function of the line and an Env snapshot of session state,
// so the action runner can re-enter it safely with a payload line.
package parse

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/spf13/afero"

	"github.com/calens/finch/core/listing"
	"github.com/calens/finch/core/session"
	"github.com/calens/finch/core/strutil"
)

// ErrNoPinned is returned when a "," token is used with no pinned file.
var ErrNoPinned = errors.New("no pinned file")

// Env is the read-only session state the parser expands against.
type Env struct {
	Fs       afero.Fs
	Home     string
	Cwd      string
	Pinned   string
	Sel      []string
	Snapshot *listing.Snapshot
	Aliases  map[string]string
	UserVars map[string]string
}

// Assignment is a NAME=VALUE line captured before any dispatch.
type Assignment struct {
	Name  string
	Value string
}

// Command is the parser's output: the final token vector and the flags
// the dispatcher branches on. Quoted parallels Args and marks tokens
// that were quoted by the user or produced by an expansion stage; only
// those need re-escaping when the line is rebuilt for the shell.
type Command struct {
	Raw        string
	Args       []string
	Quoted     []bool
	Background bool
	Comment    bool
	Assign     *Assignment
}

// Fragment is one piece of a chained line. Cond marks a fragment that
// only runs when its predecessor exited zero.
type Fragment struct {
	Text string
	Cond bool
}

// SplitChain cuts a line at unquoted, unescaped ";" and "&&". A lone "&"
// never separates: it only means background, and only at end of line.
func SplitChain(line string) []Fragment {
	var out []Fragment
	var buf strings.Builder
	var quote byte
	cond := false

	flush := func(nextCond bool) {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text != "" {
			out = append(out, Fragment{Text: text, Cond: cond})
		}
		cond = nextCond
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && c == '\\' && i+1 < len(line):
			buf.WriteByte(c)
			i++
			buf.WriteByte(line[i])
		case quote == 0 && (c == '\'' || c == '"'):
			quote = c
			buf.WriteByte(c)
		case quote == c:
			quote = 0
			buf.WriteByte(c)
		case quote != 0:
			buf.WriteByte(c)
		case c == ';':
			flush(false)
		case c == '&' && i+1 < len(line) && line[i+1] == '&':
			flush(true)
			i++
		default:
			buf.WriteByte(c)
		}
	}
	flush(false)
	return out
}

// token keeps the dequoted text plus whether any part of it was quoted
// or escaped; quoted tokens are exempt from every expansion stage.
type token struct {
	text   string
	quoted bool
}

// tokenize field-splits on unquoted whitespace, dequoting as it goes.
// A trailing unquoted "&" sets background and is dropped.
func tokenize(line string) (toks []token, background bool) {
	var cur strings.Builder
	var quote byte
	quoted := false
	inTok := false

	flush := func() {
		if inTok {
			toks = append(toks, token{text: cur.String(), quoted: quoted})
			cur.Reset()
			quoted = false
			inTok = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
			quoted = true
			inTok = true
		case quote == 0 && (c == '\'' || c == '"'):
			quote = c
			quoted = true
			inTok = true
		case quote == c:
			quote = 0
		case quote != 0:
			cur.WriteByte(c)
			inTok = true
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
			inTok = true
		}
	}
	flush()

	if n := len(toks); n > 0 && !toks[n-1].quoted {
		switch last := toks[n-1].text; {
		case last == "&":
			toks = toks[:n-1]
			background = true
		case strings.HasSuffix(last, "&"):
			toks[n-1].text = strings.TrimSuffix(last, "&")
			background = true
		}
	}
	return toks, background
}

// numericArgCmds take plain numbers as arguments; their numeric args are
// never treated as ELNs.
var numericArgCmds = map[string]bool{
	"ws": true, "mf": true,
	"st": true, "sort": true,
	"pg": true, "pager": true,
	"ft": true, "filter": true,
	"cl": true, "columns": true,
	"bh": true, "fh": true,
	"dh": true, "dirhist": true,
}

// wildcards reports whether s holds an unescaped glob metacharacter.
func wildcards(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// Parse runs the full expansion pipeline over one (already chain-split)
// fragment. Stages, in order: tokenize, comment, assignment, keyword
// expansion (sel, pinned comma, fastback, tilde, glob), ELN substitution,
// alias resolution, user-variable substitution.
func Parse(line string, env *Env) (*Command, error) {
	cmd := &Command{Raw: line}

	toks, background := tokenize(line)
	cmd.Background = background
	if len(toks) == 0 {
		return cmd, nil
	}

	if first := toks[0]; !first.quoted && strings.HasPrefix(first.text, "#") {
		if _, err := env.Fs.Stat(absAt(env.Cwd, first.text)); err != nil {
			cmd.Comment = true
			return cmd, nil
		}
	}

	if a := splitAssignment(toks[0]); a != nil {
		cmd.Assign = a
		return cmd, nil
	}

	expanded, err := expandKeywords(toks, env)
	if err != nil {
		return nil, err
	}

	expanded, err = expandELNs(expanded, env.Snapshot)
	if err != nil {
		return nil, err
	}

	expanded, err = resolveAlias(expanded, env.Aliases)
	if err != nil {
		return nil, err
	}

	expanded = expandUserVars(expanded, env.UserVars)

	cmd.Args = make([]string, len(expanded))
	cmd.Quoted = make([]bool, len(expanded))
	for i, tk := range expanded {
		cmd.Args[i] = tk.text
		cmd.Quoted[i] = tk.quoted
	}
	return cmd, nil
}

// splitAssignment recognizes NAME=VALUE where NAME starts with a letter
// and continues with letters, digits or underscores.
func splitAssignment(first token) *Assignment {
	if first.quoted {
		return nil
	}
	eq := strings.IndexByte(first.text, '=')
	if eq < 1 {
		return nil
	}
	name := first.text[:eq]
	if !isLetter(name[0]) {
		return nil
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return nil
		}
	}
	return &Assignment{Name: name, Value: first.text[eq+1:]}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func expandKeywords(toks []token, env *Env) ([]token, error) {
	out := make([]token, 0, len(toks))
	for i, tk := range toks {
		if tk.quoted {
			out = append(out, tk)
			continue
		}

		switch {
		// In command position "sel" is the command itself; the keyword
		// only stands for the selection as an argument.
		case tk.text == "sel" && i > 0:
			for _, p := range env.Sel {
				out = append(out, token{text: p, quoted: true})
			}
			continue
		case tk.text == ",":
			if env.Pinned == "" {
				return nil, ErrNoPinned
			}
			out = append(out, token{text: env.Pinned, quoted: true})
			continue
		}

		if fb := session.Fastback(tk.text); fb != "" {
			tk.text = fb
		}
		tk.text = strutil.TildeExpand(tk.text, env.Home)

		if wildcards(tk.text) {
			matches := globExpand(env.Fs, env.Cwd, tk.text)
			if len(matches) > 0 {
				for _, m := range matches {
					out = append(out, token{text: m, quoted: true})
				}
				continue
			}
		}
		out = append(out, tk)
	}
	return out, nil
}

// globExpand matches pattern against the filesystem, keeping relative
// patterns relative in the results. No matches yields nil so the caller
// keeps the literal.
func globExpand(fsys afero.Fs, cwd, pattern string) []string {
	rel := !filepath.IsAbs(pattern)
	full := pattern
	if rel {
		full = filepath.Join(cwd, pattern)
	}
	matches, err := afero.Glob(fsys, full)
	if err != nil || len(matches) == 0 {
		return nil
	}
	if rel {
		prefix := strings.TrimSuffix(cwd, "/") + "/"
		for i, m := range matches {
			matches[i] = strings.TrimPrefix(m, prefix)
		}
	}
	return matches
}

func expandELNs(toks []token, snap *listing.Snapshot) ([]token, error) {
	if len(toks) == 0 {
		return toks, nil
	}
	skipNums := numericArgCmds[toks[0].text]

	out := make([]token, 0, len(toks))
	for i, tk := range toks {
		if tk.quoted || (skipNums && i > 0) {
			out = append(out, tk)
			continue
		}

		if strutil.IsNumber(tk.text) {
			name, err := resolveOne(snap, tk.text)
			if err != nil {
				return nil, err
			}
			out = append(out, token{text: name, quoted: true})
			continue
		}

		if lo, hi, ok := splitRange(tk.text); ok {
			for n := lo; n <= hi; n++ {
				e, err := resolveSnap(snap, n)
				if err != nil {
					return nil, err
				}
				out = append(out, token{text: e, quoted: true})
			}
			continue
		}

		out = append(out, tk)
	}
	return out, nil
}

func resolveOne(snap *listing.Snapshot, s string) (string, error) {
	n, err := strutil.AtoiChecked(s)
	if err != nil {
		return "", err
	}
	return resolveSnap(snap, n)
}

func resolveSnap(snap *listing.Snapshot, n int) (string, error) {
	if snap == nil {
		return "", &listing.InvalidELNError{N: n, Max: 0}
	}
	e, err := snap.ResolveELN(n)
	if err != nil {
		return "", err
	}
	return e.Name, nil
}

// splitRange recognizes "a-b" with both sides decimal and a <= b.
func splitRange(s string) (lo, hi int, ok bool) {
	dash := strings.IndexByte(s, '-')
	if dash < 1 || dash == len(s)-1 {
		return 0, 0, false
	}
	a, b := s[:dash], s[dash+1:]
	if !strutil.IsNumber(a) || !strutil.IsNumber(b) {
		return 0, 0, false
	}
	lo, errA := strutil.AtoiChecked(a)
	hi, errB := strutil.AtoiChecked(b)
	if errA != nil || errB != nil || lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// resolveAlias substitutes the first token with its alias value, once.
// The value is shell-tokenized; aliases never recurse.
func resolveAlias(toks []token, aliases map[string]string) ([]token, error) {
	if len(toks) == 0 || toks[0].quoted {
		return toks, nil
	}
	value, ok := aliases[toks[0].text]
	if !ok {
		return toks, nil
	}
	parts, err := shlex.Split(value, true)
	if err != nil {
		return nil, fmt.Errorf("alias %s: %w", toks[0].text, err)
	}
	out := make([]token, 0, len(parts)+len(toks)-1)
	for _, p := range parts {
		out = append(out, token{text: p, quoted: true})
	}
	out = append(out, toks[1:]...)
	return out, nil
}

// expandUserVars replaces whole tokens of the form $name; unknown names
// stay literal.
func expandUserVars(toks []token, vars map[string]string) []token {
	for i, tk := range toks {
		if tk.quoted || len(tk.text) < 2 || tk.text[0] != '$' {
			continue
		}
		if v, ok := vars[tk.text[1:]]; ok {
			toks[i] = token{text: v, quoted: true}
		}
	}
	return toks
}

func absAt(cwd, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}
