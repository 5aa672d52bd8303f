// Package trash implements a freedesktop.org-style trash can: files move
// into <trash>/files and a matching <trash>/info/<name>.trashinfo records
// the percent-encoded origin path and the deletion date, so entries can
// be listed and restored later.
package trash

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/calens/finch/core/session"
	"github.com/calens/finch/core/strutil"
)

const dateLayout = "2006-01-02T15:04:05"

// Can is a trash directory bound to a session.
type Can struct {
	s   *session.Session
	dir string
	now func() time.Time
}

// New returns a Can rooted at dir; an empty dir defaults to the
// standard per-user location.
func New(s *session.Session, dir string) *Can {
	if dir == "" {
		dir = filepath.Join(s.Home, ".local", "share", "Trash")
	}
	return &Can{s: s, dir: dir, now: time.Now}
}

func (c *Can) filesDir() string { return filepath.Join(c.dir, "files") }
func (c *Can) infoDir() string  { return filepath.Join(c.dir, "info") }

func (c *Can) ensure() error {
	if err := c.s.Fs.MkdirAll(c.filesDir(), 0700); err != nil {
		return err
	}
	return c.s.Fs.MkdirAll(c.infoDir(), 0700)
}

// Trash moves each path into the can. Name collisions inside the can get
// a numeric suffix.
func (c *Can) Trash(paths []string) int {
	if len(paths) == 0 {
		c.s.Errorf("t: missing operand")
		return 1
	}
	if err := c.ensure(); err != nil {
		c.s.Errorf("t: %v", err)
		return 1
	}

	code := 0
	for _, p := range paths {
		abs := c.s.AbsPath(p)
		if _, err := c.s.Fs.Stat(abs); err != nil {
			c.s.Errorf("t: %s: no such file or directory", p)
			code = 1
			continue
		}

		name := c.freeSlot(filepath.Base(abs))
		info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
			strutil.URLEncode(abs), c.now().Format(dateLayout))
		infoPath := filepath.Join(c.infoDir(), name+".trashinfo")
		if err := afero.WriteFile(c.s.Fs, infoPath, []byte(info), 0600); err != nil {
			c.s.Errorf("t: %s: %v", p, err)
			code = 1
			continue
		}
		if err := c.s.Fs.Rename(abs, filepath.Join(c.filesDir(), name)); err != nil {
			_ = c.s.Fs.Remove(infoPath)
			c.s.Errorf("t: %s: %v", p, err)
			code = 1
		}
	}
	return code
}

func (c *Can) freeSlot(base string) string {
	cand := base
	for i := 1; ; i++ {
		if _, err := c.s.Fs.Stat(filepath.Join(c.filesDir(), cand)); err != nil {
			return cand
		}
		cand = fmt.Sprintf("%s.%d", base, i)
	}
}

// Item is one trashed entry.
type Item struct {
	Name     string
	OrigPath string
	Deleted  time.Time
}

// List reads the can's info files, oldest deletion first.
func (c *Can) List() ([]Item, error) {
	infos, err := afero.ReadDir(c.s.Fs, c.infoDir())
	if err != nil {
		return nil, nil // empty can
	}

	var items []Item
	for _, fi := range infos {
		if !strings.HasSuffix(fi.Name(), ".trashinfo") {
			continue
		}
		item, err := c.readInfo(fi.Name())
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Deleted.Before(items[j].Deleted)
	})
	return items, nil
}

func (c *Can) readInfo(infoName string) (Item, error) {
	data, err := afero.ReadFile(c.s.Fs, filepath.Join(c.infoDir(), infoName))
	if err != nil {
		return Item{}, err
	}

	item := Item{Name: strings.TrimSuffix(infoName, ".trashinfo")}
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "Path="):
			p, err := strutil.URLDecode(strings.TrimPrefix(line, "Path="))
			if err != nil {
				return Item{}, err
			}
			item.OrigPath = p
		case strings.HasPrefix(line, "DeletionDate="):
			ts, err := time.Parse(dateLayout, strings.TrimPrefix(line, "DeletionDate="))
			if err == nil {
				item.Deleted = ts
			}
		}
	}
	if item.OrigPath == "" {
		return Item{}, fmt.Errorf("%s: missing Path field", infoName)
	}
	return item, nil
}

// Untrash restores the named entries to their recorded origins. With no
// names every entry is restored.
func (c *Can) Untrash(names []string) int {
	items, _ := c.List()
	if len(items) == 0 {
		c.s.Infof("u: trash is empty")
		return 0
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	code := 0
	restored := 0
	for _, item := range items {
		if len(names) > 0 && !want[item.Name] {
			continue
		}
		if err := c.restore(item); err != nil {
			c.s.Errorf("u: %s: %v", item.Name, err)
			code = 1
			continue
		}
		restored++
	}
	if len(names) > 0 && restored < len(names) {
		for _, n := range names {
			found := false
			for _, item := range items {
				if item.Name == n {
					found = true
					break
				}
			}
			if !found {
				c.s.Errorf("u: %s: not in the trash can", n)
				code = 1
			}
		}
	}
	return code
}

func (c *Can) restore(item Item) error {
	if err := c.s.Fs.MkdirAll(filepath.Dir(item.OrigPath), 0755); err != nil {
		return err
	}
	if _, err := c.s.Fs.Stat(item.OrigPath); err == nil {
		return fmt.Errorf("%s already exists", item.OrigPath)
	}
	if err := c.s.Fs.Rename(filepath.Join(c.filesDir(), item.Name), item.OrigPath); err != nil {
		return err
	}
	return c.s.Fs.Remove(filepath.Join(c.infoDir(), item.Name+".trashinfo"))
}

// Empty deletes every entry in the can.
func (c *Can) Empty() int {
	if err := c.s.Fs.RemoveAll(c.filesDir()); err != nil {
		c.s.Errorf("t: %v", err)
		return 1
	}
	if err := c.s.Fs.RemoveAll(c.infoDir()); err != nil {
		c.s.Errorf("t: %v", err)
		return 1
	}
	return 0
}
