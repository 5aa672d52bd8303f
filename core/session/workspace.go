package session

import "fmt"

// ListWorkspaces prints the workspace table, marking the current slot.
func (s *Session) ListWorkspaces() {
	for i, path := range s.Workspaces {
		marker := " "
		if i == s.CurWS {
			marker = "*"
		}
		if path == "" {
			path = "none"
		}
		fmt.Fprintf(s.Stdout, "%s%d: %s\n", marker, i+1, path)
	}
}

// SwitchWorkspace changes to slot n (1-based). An empty slot inherits the
// current directory; an unreachable slot path falls back to it as well.
// Each slot keeps its own cwd and history ring, so switching away and
// back leaves the origin slot untouched.
func (s *Session) SwitchWorkspace(n int) int {
	if n < 1 || n > MaxWorkspaces {
		s.Errorf("ws: %d: invalid workspace number", n)
		return 1
	}

	target := n - 1
	if target == s.CurWS {
		s.Errorf("ws: %d is already the current workspace", n)
		return 0
	}

	if s.Workspaces[target] == "" {
		s.Workspaces[target] = s.CWD()
	} else if info, err := s.Fs.Stat(s.Workspaces[target]); err != nil || !info.IsDir() {
		s.Errorf("ws: %s: no longer reachable", s.Workspaces[target])
		s.Workspaces[target] = s.CWD()
	}

	if err := s.chdir(s.Workspaces[target]); err != nil {
		s.Errorf("ws: %s: %v", s.Workspaces[target], err)
		return 1
	}

	s.CurWS = target
	if s.hists[target] == nil {
		s.hists[target] = &History{}
	}
	s.Hist = s.hists[target]
	if s.Hist.Current() != s.CWD() {
		s.Hist.Push(s.CWD())
	}
	s.SetTitle(s.CWD())

	if s.AutoLS {
		if err := s.Refresh(); err != nil {
			s.Errorf("%s: %v", s.CWD(), err)
			return 1
		}
	}
	return 0
}
