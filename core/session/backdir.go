package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/calens/finch/core/strutil"
)

// Ancestors lists the proper ancestors of path, nearest the root first,
// excluding the root itself and the path. "/a/b/c/d" yields
// ["/a", "/a/b", "/a/b/c"].
func Ancestors(path string) []string {
	path = filepath.Clean(path)
	if path == "/" || !strings.HasPrefix(path, "/") {
		return nil
	}

	var out []string
	for cur := filepath.Dir(path); cur != "/"; cur = filepath.Dir(cur) {
		out = append(out, cur)
	}
	// Reverse into root-first order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// MatchAncestors keeps the ancestors whose last component contains query.
func MatchAncestors(path, query string, caseSens bool) []string {
	ancestors := Ancestors(path)
	if query == "" {
		return ancestors
	}

	q := query
	if !caseSens {
		q = strings.ToLower(q)
	}

	var out []string
	for _, a := range ancestors {
		tail := filepath.Base(a)
		if !caseSens {
			tail = strings.ToLower(tail)
		}
		if strings.Contains(tail, q) {
			out = append(out, a)
		}
	}
	return out
}

// Backdir changes to an ancestor of the current directory selected by a
// substring of its tail. No match is an error; one match cds directly;
// several present a numbered menu.
func (s *Session) Backdir(query string) int {
	if s.CWD() == "/" {
		s.Infof("%s: /: no parent directory", ProgramName)
		return 0
	}

	query = strutil.Dequote(query)
	matches := MatchAncestors(s.CWD(), query, s.CaseSensPath)

	switch {
	case len(matches) == 0:
		s.Errorf("bd: %s: no matches found", query)
		return 1
	case len(matches) == 1:
		return s.Cd(matches[0], CdVerbose)
	}

	choice, ok := s.backdirMenu(matches)
	if !ok {
		return 0
	}
	return s.Cd(matches[choice], CdVerbose)
}

// backdirMenu prints the candidates and reads a 1-based pick; 'q' aborts.
func (s *Session) backdirMenu(matches []string) (int, bool) {
	for i, m := range matches {
		fmt.Fprintf(s.Stdout, "%d %s\n", i+1, filepath.Base(m))
	}

	if s.Prompt == nil {
		return 0, false
	}

	for {
		line, err := s.Prompt.ReadLine("Choose a directory ('q' to quit): ")
		if err != nil {
			return 0, false
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "q":
			return 0, false
		case strutil.IsNumber(line):
			n, err := strutil.AtoiChecked(line)
			if err == nil && n >= 1 && n <= len(matches) {
				return n - 1, true
			}
		}
	}
}
