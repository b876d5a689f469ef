// Package store persists assembled tickets.
package store

import (
	"context"
	"strings"

	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

// DefaultLimit caps List results when Filter.Limit is unset.
const DefaultLimit = 50

// NoLimit as Filter.Limit returns every matching ticket.
const NoLimit = -1

// Store is the persistence boundary for tickets
type Store interface {
	Close() error

	// Save inserts a ticket or replaces the one with the same ID.
	Save(ctx context.Context, t ticket.Ticket) error
	Get(ctx context.Context, id string) (ticket.Ticket, bool, error)
	// List returns matching tickets, newest first.
	List(ctx context.Context, f Filter) ([]ticket.Ticket, error)
	// UpdateStatus returns an error wrapping internalerr.ErrNotFound for an
	// unknown ID.
	UpdateStatus(ctx context.Context, id, status string) error
	// LastSequence returns the highest stored sequence number for prefix,
	// or 0 when none exist.
	LastSequence(ctx context.Context, prefix string) (int64, error)
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Category string
	Priority string
	Status   string
	Limit    int
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t ticket.Ticket) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, t.Category) {
		return false
	}
	if f.Priority != "" && !strings.EqualFold(f.Priority, t.Priority) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(f.Status, t.Status) {
		return false
	}
	return true
}

// EffectiveLimit returns Limit, DefaultLimit when it is zero, or -1 for
// an unbounded listing.
func (f Filter) EffectiveLimit() int {
	switch {
	case f.Limit < 0:
		return NoLimit
	case f.Limit == 0:
		return DefaultLimit
	}
	return f.Limit
}

// SplitID separates an identifier into prefix and sequence number.
func SplitID(id string) (string, int64, bool) {
	seq, ok := ticket.Sequence(id)
	if !ok {
		return "", 0, false
	}
	return id[:strings.LastIndexByte(id, '-')], seq, true
}
