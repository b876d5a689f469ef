package ticket

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// DefaultPrefix and DefaultStart yield INC-1001 as the first identifier.
const (
	DefaultPrefix = "INC"
	DefaultStart  = 1000
)

// IDGenerator issues PREFIX-N identifiers from an atomic counter.
// It is safe for concurrent use and never repeats within a process.
type IDGenerator struct {
	prefix  string
	counter atomic.Int64
}

// NewIDGenerator creates a generator whose first identifier is start+1.
func NewIDGenerator(prefix string, start int64) *IDGenerator {
	g := &IDGenerator{prefix: prefix}
	g.counter.Store(start)
	return g
}

// Prefix returns the identifier prefix.
func (g *IDGenerator) Prefix() string { return g.prefix }

// Next returns the next identifier.
func (g *IDGenerator) Next() string {
	return g.prefix + "-" + strconv.FormatInt(g.counter.Add(1), 10)
}

// Seed advances the counter so the next identifier is above last.
// It never moves the counter backwards.
func (g *IDGenerator) Seed(last int64) {
	for {
		cur := g.counter.Load()
		if cur >= last || g.counter.CompareAndSwap(cur, last) {
			return
		}
	}
}

// Sequence parses the numeric part of an identifier such as INC-1001.
func Sequence(id string) (int64, bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 || i == len(id)-1 {
		return 0, false
	}
	n, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
