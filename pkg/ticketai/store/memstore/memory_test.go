package memstore

import (
	"context"
	"testing"

	"github.com/cognicore/ticketai/pkg/ticketai/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, New())
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Save(ctx, storetest.Ticket("INC-1", "Network", "High", 0)); err != nil {
		t.Fatal(err)
	}

	got, _, _ := s.Get(ctx, "INC-1")
	got.Entities.Devices[0] = "mutated"

	again, _, _ := s.Get(ctx, "INC-1")
	if again.Entities.Devices[0] != "laptop" {
		t.Errorf("stored ticket was mutated through a returned copy: %v", again.Entities.Devices)
	}
}
