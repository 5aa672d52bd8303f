package session

// History is the directory history ring: every successful cd appends an
// entry and moves the cursor to it. Entries that turn out to be
// unreachable are invalidated in place so back/forth can skip them
// without renumbering the list.
type History struct {
	paths []string
	dead  []bool
	cur   int
}

// Push appends path and makes it current. Pushing the path already under
// the cursor is a no-op so a refresh never duplicates history.
func (h *History) Push(path string) {
	if len(h.paths) > 0 && h.cur < len(h.paths) && h.paths[h.cur] == path && !h.dead[h.cur] {
		return
	}
	h.paths = append(h.paths, path)
	h.dead = append(h.dead, false)
	h.cur = len(h.paths) - 1
}

// Len is the total number of entries, dead ones included.
func (h *History) Len() int { return len(h.paths) }

// Cursor is the current 0-based index.
func (h *History) Cursor() int { return h.cur }

// At returns the entry at index i and whether it is still valid.
func (h *History) At(i int) (string, bool) {
	if i < 0 || i >= len(h.paths) {
		return "", false
	}
	return h.paths[i], !h.dead[i]
}

// Current returns the entry under the cursor.
func (h *History) Current() string {
	if len(h.paths) == 0 {
		return ""
	}
	return h.paths[h.cur]
}

// Invalidate marks entry i unreachable.
func (h *History) Invalidate(i int) {
	if i >= 0 && i < len(h.dead) {
		h.dead[i] = true
	}
}

// StepBack returns the nearest valid index before the cursor.
func (h *History) StepBack() (int, bool) {
	for i := h.cur - 1; i >= 0; i-- {
		if !h.dead[i] {
			return i, true
		}
	}
	return 0, false
}

// StepForth returns the nearest valid index after the cursor.
func (h *History) StepForth() (int, bool) {
	for i := h.cur + 1; i < len(h.paths); i++ {
		if !h.dead[i] {
			return i, true
		}
	}
	return 0, false
}

// SetCursor moves the cursor without touching entries; the caller has
// already chdir'd to the target.
func (h *History) SetCursor(i int) {
	if i >= 0 && i < len(h.paths) {
		h.cur = i
	}
}

// Paths returns a copy of all valid entries, oldest first.
func (h *History) Paths() []string {
	out := make([]string, 0, len(h.paths))
	for i, p := range h.paths {
		if !h.dead[i] {
			out = append(out, p)
		}
	}
	return out
}

// Clear drops everything and seeds the history with the given path.
func (h *History) Clear(seed string) {
	h.paths = h.paths[:0]
	h.dead = h.dead[:0]
	h.cur = 0
	if seed != "" {
		h.Push(seed)
	}
}
