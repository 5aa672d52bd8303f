package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	elnColor  = color.New(color.FgYellow)
	dirColor  = color.New(color.FgBlue, color.Bold)
	linkColor = color.New(color.FgCyan)
	fifoColor = color.New(color.FgMagenta)
)

// PrintOptions select the listing presentation. The zero value is a bare
// single-column numbered list.
type PrintOptions struct {
	Colorize     bool
	Columns      bool
	Icons        bool
	FilesCounter bool
	Width        int // terminal width; 0 disables the column layout
}

// Print writes the numbered listing in the default single-column shape.
func (s *Snapshot) Print(w io.Writer, colorize bool) {
	s.PrintStyled(w, PrintOptions{Colorize: colorize})
}

// PrintStyled writes the numbered listing with the given presentation.
func (s *Snapshot) PrintStyled(w io.Writer, o PrintOptions) {
	cells := make([]string, len(s.Entries))
	widths := make([]int, len(s.Entries))
	for i, e := range s.Entries {
		plain := s.cell(i, e, o, false)
		widths[i] = len([]rune(plain))
		if o.Colorize {
			cells[i] = s.cell(i, e, o, true)
		} else {
			cells[i] = plain
		}
	}

	if !o.Columns || o.Width <= 0 {
		for _, c := range cells {
			fmt.Fprintln(w, c)
		}
		return
	}

	colWidth := 0
	for _, wd := range widths {
		if wd >= colWidth {
			colWidth = wd + 2
		}
	}
	perRow := o.Width / colWidth
	if perRow < 1 {
		perRow = 1
	}

	for i, c := range cells {
		fmt.Fprint(w, c)
		if (i+1)%perRow == 0 || i == len(cells)-1 {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprint(w, strings.Repeat(" ", colWidth-widths[i]))
	}
}

// cell renders one entry, optionally colorized. The uncolored form is
// also used for width accounting, so color escapes never skew columns.
func (s *Snapshot) cell(i int, e Entry, o PrintOptions, colorize bool) string {
	suffix := ""
	paint := (*color.Color)(nil)

	switch {
	case e.Kind == KindDir:
		suffix, paint = "/", dirColor
	case e.Kind == KindSymlink && e.DirTarget:
		suffix, paint = "/", linkColor
	case e.Kind == KindSymlink:
		suffix, paint = "@", linkColor
	case e.Kind == KindFifo:
		suffix, paint = "|", fifoColor
	case e.Kind == KindSocket:
		suffix, paint = "=", fifoColor
	}

	if o.FilesCounter && e.IsDirLike() && e.Count > 0 {
		suffix += fmt.Sprintf(" (%d)", e.Count)
	}

	icon := ""
	if o.Icons {
		icon = iconFor(e) + " "
	}

	if colorize {
		return fmt.Sprintf("%s %s%s%s", elnColor.Sprintf("%d", i+1),
			icon, paintOr(paint, e.Name), suffix)
	}
	return fmt.Sprintf("%d %s%s%s", i+1, icon, e.Name, suffix)
}

func iconFor(e Entry) string {
	switch {
	case e.IsDirLike():
		return "\U0001f4c1"
	case e.Kind == KindSymlink:
		return "\U0001f517"
	case e.Mode&0111 != 0:
		return "⚙"
	default:
		return "\U0001f4c4"
	}
}

func paintOr(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}
