// Package selection keeps the set of marked files: ordered, deduplicated
// absolute paths backed by a plain one-path-per-line file. The `sel`
// keyword in a command line expands to this set in insertion order.
package selection

import (
	"strings"

	"github.com/spf13/afero"
)

// Box is the selection set. The zero value is usable but unpersisted;
// attach a file with Load or by setting Path.
type Box struct {
	fsys    afero.Fs
	path    string
	stealth bool // suppress writes in stealth mode

	order []string
	index map[string]int
}

// New returns an empty Box persisted at path. When stealth is set every
// save is a silent no-op.
func New(fsys afero.Fs, path string, stealth bool) *Box {
	return &Box{
		fsys:    fsys,
		path:    path,
		stealth: stealth,
		index:   make(map[string]int),
	}
}

// Load replaces the in-memory set with the backing file's contents. A
// missing file yields an empty set.
func (b *Box) Load() error {
	b.order = nil
	b.index = make(map[string]int)

	data, err := afero.ReadFile(b.fsys, b.path)
	if err != nil {
		if exists, _ := afero.Exists(b.fsys, b.path); !exists {
			return nil
		}
		return err
	}

	for _, line := range strings.FieldsFunc(string(data), func(r rune) bool {
		return r == '\n' || r == 0
	}) {
		if line != "" {
			b.Add(line)
		}
	}
	return nil
}

// Save writes the whole set at once; no partial updates.
func (b *Box) Save() error {
	if b.stealth || b.path == "" {
		return nil
	}

	var sb strings.Builder
	for _, p := range b.order {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return afero.WriteFile(b.fsys, b.path, []byte(sb.String()), 0600)
}

// Add appends an absolute path; re-adding is a no-op. Reports whether the
// set changed.
func (b *Box) Add(path string) bool {
	if _, dup := b.index[path]; dup {
		return false
	}
	b.index[path] = len(b.order)
	b.order = append(b.order, path)
	return true
}

// Remove drops a path; removing an absent element is a no-op with success.
func (b *Box) Remove(path string) bool {
	i, ok := b.index[path]
	if !ok {
		return false
	}
	b.order = append(b.order[:i], b.order[i+1:]...)
	delete(b.index, path)
	for j := i; j < len(b.order); j++ {
		b.index[b.order[j]] = j
	}
	return true
}

// Contains reports membership.
func (b *Box) Contains(path string) bool {
	_, ok := b.index[path]
	return ok
}

// Clear empties the set (used after a successful `rm sel` / `mv sel`).
func (b *Box) Clear() {
	b.order = nil
	b.index = make(map[string]int)
}

// Paths returns the elements in insertion order. The slice is a copy.
func (b *Box) Paths() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Len is the number of selected paths.
func (b *Box) Len() int { return len(b.order) }
