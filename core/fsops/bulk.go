package fsops

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/session"
)

// BulkRename writes the given names one per line into a buffer file,
// hands it to the editor, and renames whatever lines changed after a
// y/N confirmation.
func (o *Ops) BulkRename(names []string) int {
	if len(names) == 0 {
		o.S.Errorf("br: missing operand")
		return 1
	}

	buf := filepath.Join(o.S.Paths.TmpDir, fmt.Sprintf(".%s.bulk", session.ProgramName))
	content := strings.Join(names, "\n") + "\n"
	if err := afero.WriteFile(o.S.Fs, buf, []byte(content), 0600); err != nil {
		o.S.Errorf("br: %v", err)
		return 1
	}
	defer func() { _ = o.S.Fs.Remove(buf) }()

	before, err := o.S.Fs.Stat(buf)
	if err != nil {
		o.S.Errorf("br: %v", err)
		return 1
	}
	// Capture the value now: some afero backends return a live FileInfo
	// whose ModTime tracks later writes to the file.
	beforeMod := before.ModTime()

	if code := o.S.Runner.Exec(o.openerArgv(buf), run.Foreground, run.SilenceNone); code != 0 {
		return code
	}

	after, err := o.S.Fs.Stat(buf)
	if err != nil {
		o.S.Errorf("br: %v", err)
		return 1
	}
	if !after.ModTime().After(beforeMod) {
		o.S.Infof("br: nothing to do")
		return 0
	}

	edited, err := afero.ReadFile(o.S.Fs, buf)
	if err != nil {
		o.S.Errorf("br: %v", err)
		return 1
	}
	newNames := splitLines(string(edited))
	if len(newNames) != len(names) {
		o.S.Errorf("br: line mismatch: expected %d names, got %d", len(names), len(newNames))
		return 1
	}

	type pair struct{ old, new string }
	var changes []pair
	for i, old := range names {
		if newNames[i] != old {
			changes = append(changes, pair{old, newNames[i]})
		}
	}
	if len(changes) == 0 {
		o.S.Infof("br: nothing to do")
		return 0
	}

	for _, c := range changes {
		o.S.Infof("%s -> %s", c.old, c.new)
	}
	if !o.confirm(fmt.Sprintf("Rename %d file(s)? [y/N] ", len(changes))) {
		return 0
	}

	code := 0
	for _, c := range changes {
		oldPath := o.S.AbsPath(c.old)
		newPath := o.S.AbsPath(c.new)
		if err := o.rename(o.S.Fs, oldPath, newPath); err != nil {
			o.S.Errorf("br: %s: %v", c.old, err)
			code = 1
		}
	}

	if o.S.AutoLS {
		_ = o.S.Refresh()
	}
	return code
}

func (o *Ops) confirm(prompt string) bool {
	if o.S.Prompt == nil {
		return false
	}
	line, err := o.S.Prompt.ReadLine(prompt)
	if err != nil {
		return false
	}
	line = strings.TrimSpace(line)
	return line == "y" || line == "Y"
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
