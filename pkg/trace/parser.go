// Package trace decodes the kernel tracer's line-oriented output into typed
// events. The tracer runs as the controlling parent process and pipes its
// stream to us; we never talk back to it.
package trace

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/srodi/nfstop-bpf/pkg/types"
)

// Kind discriminates the event types the tracer stream can carry.
type Kind int

const (
	// KindSample carries one map-entry data line.
	KindSample Kind = iota
	// KindWindowEnd means the current window's data lines are complete.
	KindWindowEnd
	// KindScreenReset means a fresh screen should be presented.
	KindScreenReset
	// KindInfo carries a pass-through status message.
	KindInfo
)

const (
	screenResetToken = "==="
	windowEndToken   = "---"
	infoPrefix       = "info|"

	readMapName  = "read"
	writeMapName = "write"
)

// Event is one decoded line from the tracer stream.
type Event struct {
	Kind   Kind
	Sample types.Sample // valid when Kind == KindSample
	Info   string       // valid when Kind == KindInfo
}

// ParseLine decodes a single stream line. The second return value is false for
// lines that match no recognized grammar; those are dropped by callers since
// the stream is best-effort telemetry.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimRight(line, " \t\r")
	switch line {
	case screenResetToken:
		return Event{Kind: KindScreenReset}, true
	case windowEndToken:
		return Event{Kind: KindWindowEnd}, true
	}
	if msg, ok := strings.CutPrefix(line, infoPrefix); ok {
		return Event{Kind: KindInfo, Info: msg}, true
	}
	if sample, ok := parseDataLine(line); ok {
		return Event{Kind: KindSample, Sample: sample}, true
	}
	return Event{}, false
}

// parseDataLine matches the tracer's map-dump grammar exactly:
//
//	@read[1000, 1000]: 4096
//	@write[1000, 100]: 131072
//
// The value is the kernel-side per-window byte sum for that (uid, gid) key.
func parseDataLine(line string) (types.Sample, bool) {
	rest, ok := strings.CutPrefix(line, "@")
	if !ok {
		return types.Sample{}, false
	}

	name, rest, ok := strings.Cut(rest, "[")
	if !ok {
		return types.Sample{}, false
	}
	var metric types.Metric
	switch name {
	case readMapName:
		metric = types.MetricRead
	case writeMapName:
		metric = types.MetricWrite
	default:
		return types.Sample{}, false
	}

	key, value, ok := strings.Cut(rest, "]: ")
	if !ok {
		return types.Sample{}, false
	}
	uidField, gidField, ok := strings.Cut(key, ", ")
	if !ok {
		return types.Sample{}, false
	}
	uid, err := strconv.ParseUint(uidField, 10, 32)
	if err != nil {
		return types.Sample{}, false
	}
	gid, err := strconv.ParseUint(gidField, 10, 32)
	if err != nil {
		return types.Sample{}, false
	}
	bytes, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return types.Sample{}, false
	}

	return types.Sample{
		UID:    uint32(uid),
		GID:    uint32(gid),
		Metric: metric,
		Bytes:  bytes,
	}, true
}

// Scanner yields events from a tracer stream, silently skipping lines that
// match no grammar.
type Scanner struct {
	s *bufio.Scanner
}

// NewScanner wraps r, typically the stdin pipe from the tracer process.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{s: bufio.NewScanner(r)}
}

// Next blocks for the next recognized event. It returns io.EOF once the
// underlying stream closes, or the scan error if reading failed.
func (s *Scanner) Next() (Event, error) {
	for s.s.Scan() {
		if ev, ok := ParseLine(s.s.Text()); ok {
			return ev, nil
		}
	}
	if err := s.s.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}
