// Package listing builds the directory snapshot behind the numbered file
// list. ELN n (1-based) designates entry n-1 of the snapshot that was
// current when the command line was parsed; any rebuild invalidates every
// previously printed number.
package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// Kind classifies an entry by file type.
type Kind int

const (
	KindRegular Kind = iota
	KindDir
	KindSymlink
	KindFifo
	KindSocket
	KindBlock
	KindChar
	KindUnknown
)

// SortKey selects the snapshot ordering.
type SortKey int

const (
	SortName SortKey = iota
	SortSize
	SortMTime
	SortExtension
)

// SortKeyFromName maps the names accepted by the sort command.
func SortKeyFromName(name string) (SortKey, bool) {
	switch name {
	case "name":
		return SortName, true
	case "size":
		return SortSize, true
	case "mtime", "time":
		return SortMTime, true
	case "ext", "extension":
		return SortExtension, true
	}
	return SortName, false
}

// Entry is one line of the listing.
type Entry struct {
	Name      string
	Kind      Kind
	DirTarget bool // symlink whose target is a directory
	Size      int64
	Mode      os.FileMode
	MTime     time.Time
	Count     int // directory child count, when requested
}

// IsDirLike reports whether opening the entry means changing into it.
func (e Entry) IsDirLike() bool {
	return e.Kind == KindDir || (e.Kind == KindSymlink && e.DirTarget)
}

// InvalidELNError reports an ELN outside 1..len(snapshot).
type InvalidELNError struct {
	N   int
	Max int
}

func (e *InvalidELNError) Error() string {
	return fmt.Sprintf("%d: invalid ELN (listing has %d entries)", e.N, e.Max)
}

// Options tune List.
type Options struct {
	ShowHidden bool
	Filter     glob.Glob // nil means unfiltered
	Sort       SortKey
	Reverse    bool
	MaxFiles   int  // 0 means unlimited
	MixAll     bool // sort files and directories together
	CountDirs  bool // fill Entry.Count for directories
}

// Snapshot is the immutable entry list shown since the last rebuild.
type Snapshot struct {
	Dir     string
	Entries []Entry
}

func kindOf(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindRegular
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode&os.ModeNamedPipe != 0:
		return KindFifo
	case mode&os.ModeSocket != 0:
		return KindSocket
	case mode&os.ModeDevice != 0 && mode&os.ModeCharDevice != 0:
		return KindChar
	case mode&os.ModeDevice != 0:
		return KindBlock
	}
	return KindUnknown
}

func lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if lst, ok := fsys.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}

// List reads dir and produces a fresh snapshot. Directories sort before
// everything else under every key, matching the listing the numbers were
// printed against.
func List(fsys afero.Fs, dir string, opts Options) (*Snapshot, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if opts.Filter != nil && !opts.Filter.Match(name) {
			continue
		}

		li, err := lstat(fsys, filepath.Join(dir, name))
		if err != nil {
			li = info
		}

		e := Entry{
			Name:  name,
			Kind:  kindOf(li.Mode()),
			Size:  li.Size(),
			Mode:  li.Mode(),
			MTime: li.ModTime(),
		}
		if e.Kind == KindSymlink {
			if ti, err := fsys.Stat(filepath.Join(dir, name)); err == nil {
				e.DirTarget = ti.IsDir()
			}
		}
		if opts.CountDirs && e.IsDirLike() {
			if children, err := afero.ReadDir(fsys, filepath.Join(dir, name)); err == nil {
				e.Count = len(children)
			}
		}
		entries = append(entries, e)
	}

	sortEntries(entries, opts)

	if opts.MaxFiles > 0 && len(entries) > opts.MaxFiles {
		entries = entries[:opts.MaxFiles]
	}

	return &Snapshot{Dir: dir, Entries: entries}, nil
}

func sortEntries(entries []Entry, opts Options) {
	key, reverse := opts.Sort, opts.Reverse
	less := func(a, b Entry) bool {
		if !opts.MixAll {
			ad, bd := a.IsDirLike(), b.IsDirLike()
			if ad != bd {
				return ad
			}
		}
		switch key {
		case SortSize:
			if a.Size != b.Size {
				return a.Size < b.Size
			}
		case SortMTime:
			if !a.MTime.Equal(b.MTime) {
				return a.MTime.Before(b.MTime)
			}
		case SortExtension:
			ae, be := filepath.Ext(a.Name), filepath.Ext(b.Name)
			if ae != be {
				return ae < be
			}
		}
		return caselessLess(a.Name, b.Name)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if reverse {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}

// caselessLess orders names case-insensitively, falling back to a
// case-sensitive compare so equal-folding names stay deterministic.
func caselessLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Len is the number of listed entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// ResolveELN returns the entry at the 1-based position n.
func (s *Snapshot) ResolveELN(n int) (Entry, error) {
	if n < 1 || n > s.Len() {
		return Entry{}, &InvalidELNError{N: n, Max: s.Len()}
	}
	return s.Entries[n-1], nil
}

// Lookup finds an entry by display name.
func (s *Snapshot) Lookup(name string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	for _, e := range s.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
