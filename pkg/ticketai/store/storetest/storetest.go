// Package storetest holds the behaviour every store.Store implementation
// must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/ticketai/pkg/ticketai/entities"
	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/store"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

var base = time.Date(2025, 1, 16, 14, 30, 0, 0, time.Local)

// Ticket builds a ticket created minutes after a fixed base time.
func Ticket(id, category, priority string, minutes int) ticket.Ticket {
	ents := entities.NewBundle()
	ents.Devices = []string{"laptop"}
	ents.Emails = []string{"John@corp.com"}
	return ticket.Ticket{
		ID:                 id,
		Title:              "Title " + id,
		Description:        "Description of " + id,
		CleanedDescription: "description",
		Category:           category,
		CategoryConfidence: 0.9,
		Priority:           priority,
		PriorityConfidence: 0.7,
		AvgConfidence:      0.8,
		Entities:           ents,
		Status:             ticket.StatusOpen,
		CreatedAt:          ticket.Timestamp(base.Add(time.Duration(minutes) * time.Minute)),
	}
}

// Run exercises s against the store.Store contract. s must be empty.
func Run(t *testing.T, s store.Store) {
	ctx := context.Background()

	seed := []ticket.Ticket{
		Ticket("INC-1001", "Network", "High", 0),
		Ticket("INC-1002", "Access", "Medium", 1),
		Ticket("INC-1003", "Network", "Low", 2),
		Ticket("REQ-7", "Hardware", "High", 3),
	}
	for _, tk := range seed {
		if err := s.Save(ctx, tk); err != nil {
			t.Fatalf("Save(%s): %v", tk.ID, err)
		}
	}

	t.Run("get round trip", func(t *testing.T) {
		got, ok, err := s.Get(ctx, "INC-1001")
		if err != nil || !ok {
			t.Fatalf("Get = %v, %v", ok, err)
		}
		want := seed[0]
		if got.Title != want.Title || got.Category != want.Category || got.AvgConfidence != want.AvgConfidence {
			t.Errorf("Get = %+v, want %+v", got, want)
		}
		if !got.CreatedAt.Time().Equal(want.CreatedAt.Time()) {
			t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
		}
		if len(got.Entities.Emails) != 1 || got.Entities.Emails[0] != "John@corp.com" {
			t.Errorf("entities = %+v", got.Entities)
		}
		if got.Entities.URLs == nil {
			t.Error("empty entity list decoded as nil")
		}
	})

	t.Run("get missing", func(t *testing.T) {
		_, ok, err := s.Get(ctx, "INC-9999")
		if err != nil || ok {
			t.Errorf("Get missing = %v, %v", ok, err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		got, err := s.List(ctx, store.Filter{})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"REQ-7", "INC-1003", "INC-1002", "INC-1001"}
		if len(got) != len(want) {
			t.Fatalf("List returned %d tickets, want %d", len(got), len(want))
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("List[%d] = %s, want %s", i, got[i].ID, id)
			}
		}
	})

	t.Run("list filters", func(t *testing.T) {
		tests := []struct {
			name   string
			filter store.Filter
			want   int
		}{
			{"category", store.Filter{Category: "network"}, 2},
			{"priority", store.Filter{Priority: "High"}, 2},
			{"category and priority", store.Filter{Category: "Network", Priority: "Low"}, 1},
			{"limit", store.Filter{Limit: 3}, 3},
			{"unbounded", store.Filter{Limit: store.NoLimit}, 4},
			{"no match", store.Filter{Category: "Storage"}, 0},
		}
		for _, tt := range tests {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("%s: got %d tickets, want %d", tt.name, len(got), tt.want)
			}
			if got == nil {
				t.Errorf("%s: nil slice", tt.name)
			}
		}
	})

	t.Run("update status", func(t *testing.T) {
		if err := s.UpdateStatus(ctx, "INC-1002", ticket.StatusResolved); err != nil {
			t.Fatal(err)
		}
		got, _, _ := s.Get(ctx, "INC-1002")
		if got.Status != ticket.StatusResolved {
			t.Errorf("status = %q", got.Status)
		}

		resolved, err := s.List(ctx, store.Filter{Status: ticket.StatusResolved})
		if err != nil || len(resolved) != 1 {
			t.Errorf("resolved list = %v, %v", resolved, err)
		}

		err = s.UpdateStatus(ctx, "INC-404", ticket.StatusClosed)
		if !errors.Is(err, internalerr.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("save replaces", func(t *testing.T) {
		tk := seed[2]
		tk.Title = "Renamed"
		if err := s.Save(ctx, tk); err != nil {
			t.Fatal(err)
		}
		got, _, _ := s.Get(ctx, tk.ID)
		if got.Title != "Renamed" {
			t.Errorf("title = %q", got.Title)
		}
		all, _ := s.List(ctx, store.Filter{})
		if len(all) != len(seed) {
			t.Errorf("replace created a duplicate: %d tickets", len(all))
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		if err := s.Save(ctx, Ticket("nodash", "Network", "Low", 0)); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("last sequence", func(t *testing.T) {
		tests := []struct {
			prefix string
			want   int64
		}{
			{"INC", 1003},
			{"REQ", 7},
			{"CHG", 0},
		}
		for _, tt := range tests {
			got, err := s.LastSequence(ctx, tt.prefix)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("LastSequence(%s) = %d, want %d", tt.prefix, got, tt.want)
			}
		}
	})
}
