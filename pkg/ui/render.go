// Package ui draws the ranked throughput table with proportional bar charts,
// sized to whatever terminal it is running in.
package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/srodi/nfstop-bpf/pkg/rank"
	"github.com/srodi/nfstop-bpf/pkg/types"
)

const (
	fallbackCols = 80
	fallbackRows = 24

	rateFieldWidth = 11
)

// now allows tests to pin the title timestamp.
var now = time.Now

// terminalSize allows tests to stub geometry detection, which normally asks
// the stdout tty.
var terminalSize = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// Geometry is the terminal cell grid the renderer must fit.
type Geometry struct {
	Cols int
	Rows int
}

// DetectGeometry queries the terminal, falling back to 80x24 when detection
// fails or reports a useless size.
func DetectGeometry() Geometry {
	cols, rows, err := terminalSize()
	if err != nil || cols <= 0 || rows <= 0 {
		return Geometry{Cols: fallbackCols, Rows: fallbackRows}
	}
	return Geometry{Cols: cols, Rows: rows}
}

// BarWidth returns the cell budget for each of the two bar charts: the label
// column takes 20 cells, the two rate fields 24, and separators 4; the rest is
// split between the write and read bars.
func BarWidth(cols int) int {
	w := (cols-types.DefaultLabelWidth-4-24)/2 - 1
	if w < 0 {
		w = 0
	}
	return w
}

// Humanize formats a byte rate with binary-scaled unit prefixes.
func Humanize(rate float64) string {
	units := []string{"", "K", "M", "G", "T", "E"}
	unit := 0
	for rate >= 1024 && unit < len(units)-1 {
		rate /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f%sB/s", rate, units[unit])
}

// Renderer writes screens to w. It holds no window state: the control loop
// tells it when to redraw the header and when to print a completed table.
type Renderer struct {
	w         io.Writer
	groupView bool
}

// New returns a renderer for user or group view.
func New(w io.Writer, groupView bool) *Renderer {
	return &Renderer{w: w, groupView: groupView}
}

// Header clears the screen and draws the title line and column header. It is
// triggered by the stream's reset marker and never touches accumulation state.
func (r *Renderer) Header(g Geometry) {
	name := "USER"
	if r.groupView {
		name = "GROUP"
	}
	fmt.Fprint(r.w, clearAndHome)
	fmt.Fprintf(r.w, "%s%s%s\n\n", bold, now().Format(time.ANSIC), reset)
	fmt.Fprintln(r.w, formatRow(name, "WRITE", "", "", "READ", BarWidth(g.Cols)))
}

// Info prints a pass-through status line from the tracer.
func (r *Renderer) Info(msg string) {
	fmt.Fprintf(r.w, "%s%s%s\n", dim, msg, reset)
}

// Table prints the totals row, each ranked row with its mirrored bars, and the
// hidden-row indicator when the window had more credentials than fit.
func (r *Renderer) Table(t rank.Table, g Geometry) {
	bw := BarWidth(g.Cols)

	fmt.Fprintln(r.w, formatRow("TOTAL", Humanize(t.TotalWriteRate), "", "", Humanize(t.TotalReadRate), bw))
	for _, row := range t.Rows {
		writeBar := bar(row.WriteBytes, t.TotalWriteBytes, bw, true)
		readBar := bar(row.ReadBytes, t.TotalReadBytes, bw, false)
		fmt.Fprintln(r.w, formatRow(row.Label, Humanize(row.WriteRate), writeBar, readBar, Humanize(row.ReadRate), bw))
	}
	if t.Hidden > 0 {
		fmt.Fprintf(r.w, "(%d more) ...", t.Hidden)
	}
}

// formatRow lays out one screen line: label, write rate, right-aligned write
// bar, left-aligned read bar, read rate.
func formatRow(label, writeField, writeBar, readBar, readField string, barWidth int) string {
	return fmt.Sprintf("%-*s %*s %*s|%-*s %s",
		types.DefaultLabelWidth, label,
		rateFieldWidth, writeField,
		barWidth, writeBar,
		barWidth, readBar,
		readField)
}

// bar renders a run of '=' proportional to this row's share of the window
// total, capped with '<' toward the label for writes and '>' away from it for
// reads.
func bar(bytes, windowTotal uint64, width int, leftward bool) string {
	if width <= 0 || windowTotal == 0 || bytes == 0 {
		return ""
	}
	n := int(math.Round(float64(bytes) / float64(windowTotal) * float64(width)))
	if n > width {
		n = width
	}
	if n <= 0 {
		return ""
	}
	run := strings.Repeat("=", n)
	if leftward {
		return "<" + run[1:]
	}
	return run[:n-1] + ">"
}
