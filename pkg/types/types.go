package types

// DefaultLabelWidth is how many characters a credential label may occupy in a row.
const DefaultLabelWidth = 20

// Metric identifies which byte counter a sample belongs to.
type Metric int

const (
	MetricRead Metric = iota
	MetricWrite
)

// Sample is one kernel-side counter entry attributed to a (uid, gid) credential pair.
type Sample struct {
	UID    uint32
	GID    uint32
	Metric Metric
	Bytes  uint64
}

// ByteTotals accumulates read and write bytes for one credential within a window.
type ByteTotals struct {
	ReadBytes  uint64
	WriteBytes uint64
}

// Combined returns the ranking key for the credential: read plus write bytes.
func (t ByteTotals) Combined() uint64 {
	return t.ReadBytes + t.WriteBytes
}

// WindowTotals maps a credential (uid in user view, gid in group view) to the
// bytes it moved during one sampling window. A flushed WindowTotals is an
// immutable snapshot; further accumulation happens in a fresh map.
type WindowTotals map[uint32]ByteTotals

// RankedRow is one display row derived from a window: a resolved label plus
// per-second rates computed against the configured window length.
type RankedRow struct {
	ID         uint32
	Label      string
	ReadBytes  uint64
	WriteBytes uint64
	ReadRate   float64
	WriteRate  float64
}
