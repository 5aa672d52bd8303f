package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/calens/finch/core/session"
	"github.com/calens/finch/core/strutil"
)

// readLines returns the non-empty lines of path; a missing file is empty.
func readLines(fsys afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func writeLines(fsys afero.Fs, path string, lines []string) error {
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	return afero.WriteFile(fsys, path, []byte(content), 0600)
}

// LoadActions reads the actions.cfm name=value table.
func LoadActions(fsys afero.Fs, path string) (map[string]string, error) {
	lines, err := readLines(fsys, path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 1 {
			continue
		}
		out[line[:eq]] = line[eq+1:]
	}
	return out, nil
}

// SaveActions writes the action table back in name=value form, sorted so
// the file diffs cleanly.
func SaveActions(fsys afero.Fs, path string, actions map[string]string) error {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = name + "=" + actions[name]
	}
	return writeLines(fsys, path, lines)
}

// LoadDirhist reads the persisted directory history, one path per line.
func LoadDirhist(fsys afero.Fs, path string) ([]string, error) {
	return readLines(fsys, path)
}

// SaveDirhist persists the directory history.
func SaveDirhist(fsys afero.Fs, path string, paths []string) error {
	return writeLines(fsys, path, paths)
}

// LoadHistory reads the command history, one command per line.
func LoadHistory(fsys afero.Fs, path string) ([]string, error) {
	return readLines(fsys, path)
}

// SaveHistory persists the command history.
func SaveHistory(fsys afero.Fs, path string, cmds []string) error {
	return writeLines(fsys, path, cmds)
}

// LoadPin reads the pinned path, if any.
func LoadPin(fsys afero.Fs, path string) (string, error) {
	lines, err := readLines(fsys, path)
	if err != nil || len(lines) == 0 {
		return "", err
	}
	return lines[0], nil
}

// SavePin persists the pinned path; an empty pin removes the file.
func SavePin(fsys afero.Fs, path, pinned string) error {
	if pinned == "" {
		err := fsys.Remove(path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return writeLines(fsys, path, []string{pinned})
}

// LoadWorkspaces reads the .last file: one "<index>:<path>" line per
// occupied workspace, the current one prefixed with "*".
func LoadWorkspaces(fsys afero.Fs, path string) (slots [session.MaxWorkspaces]string, current int, err error) {
	lines, err := readLines(fsys, path)
	if err != nil {
		return slots, 0, err
	}
	for _, line := range lines {
		star := strings.HasPrefix(line, "*")
		line = strings.TrimPrefix(line, "*")
		colon := strings.IndexByte(line, ':')
		if colon < 1 {
			continue
		}
		n, aerr := strutil.AtoiChecked(line[:colon])
		if aerr != nil || n >= session.MaxWorkspaces {
			continue
		}
		slots[n] = line[colon+1:]
		if star {
			current = n
		}
	}
	return slots, current, nil
}

// SaveWorkspaces writes the .last file.
func SaveWorkspaces(fsys afero.Fs, path string, slots [session.MaxWorkspaces]string, current int) error {
	var lines []string
	for i, p := range slots {
		if p == "" {
			continue
		}
		star := ""
		if i == current {
			star = "*"
		}
		lines = append(lines, fmt.Sprintf("%s%d:%s", star, i, p))
	}
	return writeLines(fsys, path, lines)
}
