// Package rank turns a completed window's byte totals into the ordered,
// truncated row set a terminal screen can hold.
package rank

import (
	"sort"

	"github.com/srodi/nfstop-bpf/pkg/types"
)

// screenReservedRows is how many terminal lines the renderer spends on the
// title, a blank line, the column header, and the totals row.
const screenReservedRows = 4

// Table is everything one window contributes to the screen: the unconditional
// totals row, the ranked rows that fit, and the count of rows that did not.
type Table struct {
	TotalReadBytes  uint64
	TotalWriteBytes uint64
	TotalReadRate   float64
	TotalWriteRate  float64
	Rows            []types.RankedRow
	Hidden          int
}

// VisibleRows returns how many ranked rows fit on a terminal of the given
// height after the reserved header lines.
func VisibleRows(terminalRows int) int {
	if terminalRows <= screenReservedRows {
		return 0
	}
	return terminalRows - screenReservedRows
}

// Build ranks a window's totals by descending combined throughput, resolves
// labels, converts bytes to per-second rates using the configured window
// length, and truncates to visibleRows entries. windowSeconds > 0 is enforced
// at startup.
func Build(totals types.WindowTotals, windowSeconds float64, visibleRows int, label func(id uint32) string) Table {
	table := Table{}

	rows := make([]types.RankedRow, 0, len(totals))
	for id, t := range totals {
		table.TotalReadBytes += t.ReadBytes
		table.TotalWriteBytes += t.WriteBytes
		rows = append(rows, types.RankedRow{
			ID:         id,
			Label:      truncateLabel(label(id)),
			ReadBytes:  t.ReadBytes,
			WriteBytes: t.WriteBytes,
			ReadRate:   float64(t.ReadBytes) / windowSeconds,
			WriteRate:  float64(t.WriteBytes) / windowSeconds,
		})
	}
	table.TotalReadRate = float64(table.TotalReadBytes) / windowSeconds
	table.TotalWriteRate = float64(table.TotalWriteBytes) / windowSeconds

	// Composite key: combined bytes descending, credential id ascending.
	sort.Slice(rows, func(i, j int) bool {
		ci, cj := rows[i].ReadBytes+rows[i].WriteBytes, rows[j].ReadBytes+rows[j].WriteBytes
		if ci != cj {
			return ci > cj
		}
		return rows[i].ID < rows[j].ID
	})

	if visibleRows < 0 {
		visibleRows = 0
	}
	if len(rows) > visibleRows {
		table.Hidden = len(rows) - visibleRows
		rows = rows[:visibleRows]
	}
	table.Rows = rows

	return table
}

func truncateLabel(label string) string {
	if len(label) > types.DefaultLabelWidth {
		return label[:types.DefaultLabelWidth]
	}
	return label
}
