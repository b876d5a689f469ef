package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/ticketai/pkg/ticketai/entities"
	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/store"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

// Store is an in-memory implementation of store.Store for tests and the CLI.
type Store struct {
	mu      sync.RWMutex
	tickets map[string]ticket.Ticket
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{tickets: make(map[string]ticket.Ticket)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Save inserts or replaces a ticket, keyed by ID.
func (s *Store) Save(ctx context.Context, t ticket.Ticket) error {
	if _, _, ok := store.SplitID(t.ID); !ok {
		return fmt.Errorf("ticket id %q: %w", t.ID, internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = copyTicket(t)
	return nil
}

// Get returns a ticket by ID.
func (s *Store) Get(ctx context.Context, id string) (ticket.Ticket, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.tickets[id]; ok {
		return copyTicket(t), true, nil
	}
	return ticket.Ticket{}, false, nil
}

// List returns matching tickets, newest first.
func (s *Store) List(ctx context.Context, f store.Filter) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []ticket.Ticket{}
	for _, t := range s.tickets {
		if f.Matches(t) {
			out = append(out, copyTicket(t))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].CreatedAt.Time(), out[j].CreatedAt.Time()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		si, _ := ticket.Sequence(out[i].ID)
		sj, _ := ticket.Sequence(out[j].ID)
		return si > sj
	})

	if limit := f.EffectiveLimit(); limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus changes the status of a stored ticket.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return fmt.Errorf("ticket %s: %w", id, internalerr.ErrNotFound)
	}
	t.Status = status
	s.tickets[id] = t
	return nil
}

// LastSequence returns the highest sequence stored under prefix.
func (s *Store) LastSequence(ctx context.Context, prefix string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last int64
	for id := range s.tickets {
		p, seq, ok := store.SplitID(id)
		if ok && p == prefix && seq > last {
			last = seq
		}
	}
	return last, nil
}

func copyTicket(t ticket.Ticket) ticket.Ticket {
	b := entities.NewBundle()
	b.Usernames = append(b.Usernames, t.Entities.Usernames...)
	b.Devices = append(b.Devices, t.Entities.Devices...)
	b.ErrorCodes = append(b.ErrorCodes, t.Entities.ErrorCodes...)
	b.Emails = append(b.Emails, t.Entities.Emails...)
	b.URLs = append(b.URLs, t.Entities.URLs...)
	b.FilePaths = append(b.FilePaths, t.Entities.FilePaths...)
	t.Entities = b
	return t
}
