package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

var testNow = time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)

func testCustomers() []model.CustomerRecord {
	return []model.CustomerRecord{
		{ID: "1", Name: "Rajesh", NextServiceDate: "2025-01-12", ServiceType: model.ServiceTypeBoth},
		{ID: "2", Name: "Priya", NextServiceDate: "2025-01-10", ServiceType: model.ServiceTypeSump},
		{ID: "3", Name: "Amit", NextServiceDate: "2025-01-13", ServiceType: model.ServiceTypeTank},
		{ID: "4", Name: "Sunita", NextServiceDate: "2025-01-14", ServiceType: model.ServiceTypeBoth},
		{ID: "5", Name: "Vikram", NextServiceDate: "2025-01-09", ServiceType: model.ServiceTypeSump},
		{ID: "6", Name: "Nobody"},
		{ID: "7", Name: "Broken", NextServiceDate: "soon"},
	}
}

func TestUpcoming(t *testing.T) {
	got := Upcoming(testCustomers(), testNow, DefaultWindowDays)

	wantIDs := []string{"2", "1", "3"}
	wantDays := []int{0, 2, 3}
	if len(got) != len(wantIDs) {
		t.Fatalf("Upcoming returned %d services, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i := range got {
		if got[i].Customer.ID != wantIDs[i] || got[i].DaysUntil != wantDays[i] {
			t.Fatalf("Upcoming[%d] = (%s, %d), want (%s, %d)", i, got[i].Customer.ID, got[i].DaysUntil, wantIDs[i], wantDays[i])
		}
	}
}

func TestDefaultMessage(t *testing.T) {
	msg := DefaultMessage(model.CustomerRecord{NextServiceDate: "2025-01-12", ServiceType: model.ServiceTypeTank})

	if !strings.Contains(msg, "water tank cleaning is due on 12 Jan 2025") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestServiceLabel(t *testing.T) {
	tests := map[model.ServiceType]string{
		model.ServiceTypeSump:  "sump cleaning",
		model.ServiceTypeTank:  "water tank cleaning",
		model.ServiceTypeBoth:  "water tank and sump cleaning",
		model.ServiceTypeOther: "water tank and sump cleaning",
		"Borewell":             "borewell",
	}
	for st, want := range tests {
		if got := ServiceLabel(st); got != want {
			t.Fatalf("ServiceLabel(%q) = %q, want %q", st, got, want)
		}
	}
}

func TestWhatsAppLink(t *testing.T) {
	link, err := WhatsAppLink("98765 43210", "Hi there & bye")
	if err != nil {
		t.Fatalf("WhatsAppLink error: %v", err)
	}
	want := "https://wa.me/919876543210?text=Hi%20there%20%26%20bye"
	if link != want {
		t.Fatalf("link = %q, want %q", link, want)
	}

	_, err = WhatsAppLink("12345", "hi")
	if !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

type staticSource []model.CustomerRecord

func (s staticSource) Customers() []model.CustomerRecord { return s }

func TestScheduler_RunDigest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewScheduler(staticSource(testCustomers()), zap.New(core), time.UTC, 0)
	s.now = func() time.Time { return testNow }

	got := s.RunDigest()
	if len(got) != 3 {
		t.Fatalf("RunDigest returned %d services, want 3", len(got))
	}
	if n := logs.FilterMessage("upcoming service").Len(); n != 3 {
		t.Fatalf("logged %d upcoming services, want 3", n)
	}
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(staticSource(nil), zap.NewNop(), time.UTC, 3)

	if err := s.Start("not a cron spec"); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s := NewScheduler(staticSource(nil), zap.NewNop(), time.UTC, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "@daily") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after context cancel")
	}
}
