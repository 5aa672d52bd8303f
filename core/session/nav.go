package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/calens/finch/core/strutil"
)

// CdPolicy controls error reporting for Cd: autocd probing is silent,
// explicit cd is verbose.
type CdPolicy int

const (
	CdVerbose CdPolicy = iota
	CdSilent
)

// Cd changes the current workspace's directory. An empty target means
// home. Returns a shell-style exit code.
func (s *Session) Cd(target string, policy CdPolicy) int {
	if target == "" {
		target = s.Home
		if target == "" {
			if policy == CdVerbose {
				s.Errorf("cd: home directory not found")
			}
			return 1
		}
	}

	target = strutil.Dequote(target)
	target = strutil.TildeExpand(target, s.Home)

	candidate := target
	if p := s.searchCdPath(target); p != "" {
		candidate = p
	}

	resolved, err := s.realpath(candidate)
	if err != nil {
		if policy == CdVerbose {
			s.Errorf("cd: %s: %s", candidate, cdErrText(err))
		}
		return 1
	}

	info, err := s.Fs.Stat(resolved)
	switch {
	case err != nil:
		if policy == CdVerbose {
			s.Errorf("cd: %s: %s", resolved, cdErrText(err))
		}
		return 1
	case !info.IsDir():
		if policy == CdVerbose {
			s.Errorf("cd: %s: not a directory", resolved)
		}
		return 1
	}

	if err := s.chdir(resolved); err != nil {
		if policy == CdVerbose {
			s.Errorf("cd: %s: %s", resolved, cdErrText(err))
		}
		return 1
	}

	s.setCWD(resolved)
	s.Hist.Push(resolved)
	_ = s.Jump.Add(resolved)
	s.SetTitle(resolved)

	if s.AutoLS {
		if err := s.Refresh(); err != nil {
			s.Errorf("%s: %v", resolved, err)
			return 1
		}
	}
	return 0
}

func cdErrText(err error) string {
	switch {
	case os.IsNotExist(err):
		return "no such file or directory"
	case os.IsPermission(err):
		return "permission denied"
	}
	return err.Error()
}

// searchCdPath probes $CDPATH for a relative name that is not anchored at
// the current directory. The first existing directory wins.
func (s *Session) searchCdPath(name string) string {
	if filepath.IsAbs(name) || name == "" ||
		strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") ||
		name == "." || name == ".." {
		return ""
	}

	for _, dir := range filepath.SplitList(os.Getenv("CDPATH")) {
		if dir == "" {
			continue
		}
		cand := filepath.Join(dir, name)
		if info, err := s.Fs.Stat(cand); err == nil && info.IsDir() {
			return cand
		}
	}
	return ""
}

// Back moves one valid entry backwards in the directory history; a
// freshly discovered dead entry is invalidated and the move retried once.
func (s *Session) Back() int {
	return s.histMove((*History).StepBack)
}

// Forth is the inverse of Back.
func (s *Session) Forth() int {
	return s.histMove((*History).StepForth)
}

func (s *Session) histMove(step func(*History) (int, bool)) int {
	for attempt := 0; attempt < 2; attempt++ {
		idx, ok := step(s.Hist)
		if !ok {
			return 0 // at the boundary: nothing to do
		}
		path, _ := s.Hist.At(idx)
		if s.jumpToHist(idx, path) {
			return 0
		}
		s.Errorf("%s: no longer reachable", path)
		s.Hist.Invalidate(idx)
	}
	s.Errorf("no reachable directory in that direction")
	return 1
}

// jumpToHist chdirs to a history entry without pushing a new one.
func (s *Session) jumpToHist(idx int, path string) bool {
	info, err := s.Fs.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if err := s.chdir(path); err != nil {
		return false
	}
	s.setCWD(path)
	s.Hist.SetCursor(idx)
	s.SetTitle(path)
	if s.AutoLS {
		_ = s.Refresh()
	}
	return true
}

// DirhistJump changes to entry n (1-based) of the directory history.
func (s *Session) DirhistJump(n int) int {
	path, valid := s.Hist.At(n - 1)
	if path == "" {
		s.Errorf("dirhist: %d: no such entry", n)
		return 1
	}
	if !valid {
		s.Errorf("dirhist: %d: entry was invalidated", n)
		return 1
	}
	if !s.jumpToHist(n-1, path) {
		s.Hist.Invalidate(n - 1)
		s.Errorf("%s: no longer reachable", path)
		return 1
	}
	return 0
}

// Fastback rewrites a dots token: k >= 3 dots, optionally followed by
// /rest, become k-1 levels of "..". Returns "" when the token does not
// qualify.
func Fastback(token string) string {
	dots := 0
	for dots < len(token) && token[dots] == '.' {
		dots++
	}
	if dots < 3 {
		return ""
	}
	rest := token[dots:]
	if rest != "" && rest[0] != '/' {
		return ""
	}

	var b strings.Builder
	for i := 0; i < dots-1; i++ {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString("..")
	}
	b.WriteString(rest)
	return b.String()
}
