package rank

import (
	"math"
	"strconv"
	"testing"

	"github.com/srodi/nfstop-bpf/pkg/types"
)

func numericLabel(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestBuildTotalsRow(t *testing.T) {
	totals := types.WindowTotals{
		1001: {ReadBytes: 2048, WriteBytes: 1024},
		1002: {ReadBytes: 1024, WriteBytes: 0},
	}
	table := Build(totals, 2, 10, numericLabel)

	if table.TotalReadBytes != 3072 || table.TotalWriteBytes != 1024 {
		t.Fatalf("unexpected byte totals: %+v", table)
	}
	if math.Abs(table.TotalReadRate-1536) > 1e-9 {
		t.Fatalf("unexpected total read rate: %.2f", table.TotalReadRate)
	}
	if math.Abs(table.TotalWriteRate-512) > 1e-9 {
		t.Fatalf("unexpected total write rate: %.2f", table.TotalWriteRate)
	}
}

func TestBuildOrdersByCombinedThroughput(t *testing.T) {
	totals := types.WindowTotals{
		1: {ReadBytes: 10, WriteBytes: 0},
		2: {ReadBytes: 50, WriteBytes: 50},
		3: {ReadBytes: 0, WriteBytes: 60},
		4: {ReadBytes: 30, WriteBytes: 30},
	}
	table := Build(totals, 1, 10, numericLabel)

	for i := 1; i < len(table.Rows); i++ {
		prev := table.Rows[i-1].ReadBytes + table.Rows[i-1].WriteBytes
		cur := table.Rows[i].ReadBytes + table.Rows[i].WriteBytes
		if prev < cur {
			t.Fatalf("rows not in non-increasing order at %d: %+v", i, table.Rows)
		}
	}
	if table.Rows[0].ID != 2 || table.Rows[1].ID != 3 || table.Rows[2].ID != 4 || table.Rows[3].ID != 1 {
		t.Fatalf("unexpected order: %+v", table.Rows)
	}
}

func TestBuildTieBreaksByCredentialID(t *testing.T) {
	totals := types.WindowTotals{
		9: {ReadBytes: 100},
		3: {WriteBytes: 100},
		7: {ReadBytes: 50, WriteBytes: 50},
	}
	table := Build(totals, 1, 10, numericLabel)
	if table.Rows[0].ID != 3 || table.Rows[1].ID != 7 || table.Rows[2].ID != 9 {
		t.Fatalf("expected ascending id tie-break, got %+v", table.Rows)
	}
}

func TestBuildTruncatesAndCountsHidden(t *testing.T) {
	totals := make(types.WindowTotals)
	for i := uint32(1); i <= 10; i++ {
		totals[i] = types.ByteTotals{ReadBytes: uint64(i) * 100}
	}

	table := Build(totals, 1, 4, numericLabel)
	if len(table.Rows) != 4 {
		t.Fatalf("expected 4 visible rows, got %d", len(table.Rows))
	}
	if table.Hidden != 6 {
		t.Fatalf("expected 6 hidden rows, got %d", table.Hidden)
	}
	if table.Rows[0].ID != 10 {
		t.Fatalf("expected biggest credential first, got %+v", table.Rows[0])
	}

	empty := Build(totals, 1, -3, numericLabel)
	if len(empty.Rows) != 0 || empty.Hidden != 10 {
		t.Fatalf("negative budget should hide everything: %+v", empty)
	}
}

func TestBuildTruncatesLabels(t *testing.T) {
	totals := types.WindowTotals{1: {ReadBytes: 1}}
	table := Build(totals, 1, 10, func(uint32) string {
		return "an-extremely-long-service-account-name"
	})
	if got := table.Rows[0].Label; got != "an-extremely-long-se" {
		t.Fatalf("expected 20-char label, got %q (%d)", got, len(got))
	}
}

func TestBuildSingleCredentialScenario(t *testing.T) {
	// One credential over a 1s window: row rates equal the totals row rates.
	totals := types.WindowTotals{500: {ReadBytes: 2048, WriteBytes: 1024}}
	table := Build(totals, 1, 20, numericLabel)

	if table.TotalReadRate != 2048 || table.TotalWriteRate != 1024 {
		t.Fatalf("unexpected totals: %+v", table)
	}
	row := table.Rows[0]
	if row.Label != "500" || row.ReadRate != 2048 || row.WriteRate != 1024 {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestBuildFractionalWindow(t *testing.T) {
	totals := types.WindowTotals{1: {ReadBytes: 512}}
	table := Build(totals, 0.5, 10, numericLabel)
	if table.Rows[0].ReadRate != 1024 {
		t.Fatalf("expected 1024 B/s over a 500ms window, got %.2f", table.Rows[0].ReadRate)
	}
}

func TestVisibleRows(t *testing.T) {
	cases := []struct {
		rows int
		want int
	}{
		{24, 20},
		{5, 1},
		{4, 0},
		{0, 0},
		{-1, 0},
	}
	for _, tc := range cases {
		if got := VisibleRows(tc.rows); got != tc.want {
			t.Fatalf("VisibleRows(%d) = %d, want %d", tc.rows, got, tc.want)
		}
	}
}
