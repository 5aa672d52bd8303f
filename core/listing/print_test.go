package listing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func printSnapshot() *Snapshot {
	return &Snapshot{
		Dir: "/work",
		Entries: []Entry{
			{Name: "docs", Kind: KindDir, Count: 3},
			{Name: "link", Kind: KindSymlink, DirTarget: true},
			{Name: "pipe", Kind: KindFifo},
			{Name: "a.txt", Kind: KindRegular},
		},
	}
}

func TestPrintSingleColumn(t *testing.T) {
	var buf bytes.Buffer
	printSnapshot().Print(&buf, false)

	assert.Equal(t, "1 docs/\n2 link/\n3 pipe|\n4 a.txt\n", buf.String())
}

func TestPrintStyledFilesCounter(t *testing.T) {
	var buf bytes.Buffer
	printSnapshot().PrintStyled(&buf, PrintOptions{FilesCounter: true})

	assert.Contains(t, buf.String(), "1 docs/ (3)\n")
	// Only dir-like entries carry a counter.
	assert.Contains(t, buf.String(), "3 pipe|\n")
}

func TestPrintStyledColumns(t *testing.T) {
	var buf bytes.Buffer
	printSnapshot().PrintStyled(&buf, PrintOptions{Columns: true, Width: 40})

	// Every cell is 7 runes wide, so colWidth is 9 and four cells fit
	// per 40-column row; the whole listing lands on one line.
	assert.Equal(t, "1 docs/  2 link/  3 pipe|  4 a.txt\n", buf.String())
}

func TestPrintStyledColumnsNarrowWidth(t *testing.T) {
	var buf bytes.Buffer
	printSnapshot().PrintStyled(&buf, PrintOptions{Columns: true, Width: 4})

	// Width too small for even one cell still prints one per row.
	assert.Equal(t, "1 docs/\n2 link/\n3 pipe|\n4 a.txt\n", buf.String())
}
