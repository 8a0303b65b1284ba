package bookings

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	idPrefix    = "BK"
	maxSequence = 9999
)

// IDGenerator issues BK0001, BK0002, ... for the lifetime of a ledger.
type IDGenerator struct {
	seq atomic.Int64
}

// NewIDGenerator returns a generator whose first identifier is after start.
func NewIDGenerator(start int) *IDGenerator {
	g := &IDGenerator{}
	if start > 0 {
		g.seq.Store(int64(start))
	}
	return g
}

// Next returns the next identifier, or an *ExhaustionError once the
// four-digit range is used up. The counter never moves on failure.
func (g *IDGenerator) Next() (string, error) {
	for {
		cur := g.seq.Load()
		if cur >= maxSequence {
			return "", &ExhaustionError{Limit: maxSequence}
		}
		if g.seq.CompareAndSwap(cur, cur+1) {
			return FormatID(int(cur + 1)), nil
		}
	}
}

// Last returns the most recently issued sequence number (0 if none).
func (g *IDGenerator) Last() int {
	return int(g.seq.Load())
}

// FormatID renders a sequence number as an identifier.
func FormatID(n int) string {
	return fmt.Sprintf("%s%04d", idPrefix, n)
}

// ParseID extracts the sequence number from an identifier, accepting any case.
func ParseID(id string) (int, bool) {
	id = NormalizeID(id)
	if len(id) != len(idPrefix)+4 || !strings.HasPrefix(id, idPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(idPrefix):])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// NormalizeID upper-cases and trims an identifier for lookup.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
