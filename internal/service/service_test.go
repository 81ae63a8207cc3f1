package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmeshcher/suraksha-service/internal/model"
	"github.com/mmeshcher/suraksha-service/internal/store"
	"github.com/mmeshcher/suraksha-service/internal/validation"
)

var testNow = time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

type memStorage struct {
	customers   []model.CustomerRecord
	initialized bool
	saveErr     error
	saves       int
}

func (m *memStorage) LoadCustomers(ctx context.Context) ([]model.CustomerRecord, error) {
	return model.CloneAll(m.customers), nil
}

func (m *memStorage) SaveCustomers(ctx context.Context, customers []model.CustomerRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.customers = model.CloneAll(customers)
	return nil
}

func (m *memStorage) IsInitialized(ctx context.Context) (bool, error) { return m.initialized, nil }

func (m *memStorage) MarkInitialized(ctx context.Context) error {
	m.initialized = true
	return nil
}

type stubSyncer struct {
	ok   bool
	sent []model.CustomerRecord
}

func (s *stubSyncer) Send(ctx context.Context, record model.CustomerRecord) bool {
	s.sent = append(s.sent, record)
	return s.ok
}

func newTestService(t *testing.T, syncer Syncer) (*Service, *memStorage) {
	t.Helper()

	storage := &memStorage{}
	st := store.New(storage, nil)
	if err := st.Init(context.Background(), store.SeedCustomers()); err != nil {
		t.Fatalf("init store: %v", err)
	}

	svc := NewService(st, syncer, nil, time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc, storage
}

func TestLogVisit_NormalizesAndSyncs(t *testing.T) {
	syncer := &stubSyncer{ok: true}
	svc, _ := newTestService(t, syncer)

	res, err := svc.LogVisit(context.Background(), model.CustomerRecord{
		Name:              " Meera Nair ",
		Phone:             "99887 76655",
		Address:           "12 Indiranagar",
		ServiceDate:       "2025-01-10",
		ServiceType:       model.ServiceTypeTank,
		CustomServiceType: "ignored",
		Price:             1500,
	})
	if err != nil {
		t.Fatalf("LogVisit error: %v", err)
	}

	if !res.Synced {
		t.Fatalf("expected synced result")
	}
	if res.Customer.ID == "" {
		t.Fatalf("expected generated id")
	}
	if res.Customer.Phone != "+919988776655" {
		t.Fatalf("phone = %q, want +919988776655", res.Customer.Phone)
	}
	if res.Customer.Name != "Meera Nair" {
		t.Fatalf("name = %q, want trimmed", res.Customer.Name)
	}
	if res.Customer.CustomServiceType != "" {
		t.Fatalf("custom label must be cleared for %s", res.Customer.ServiceType)
	}
	if len(syncer.sent) != 1 || syncer.sent[0].ID != res.Customer.ID {
		t.Fatalf("syncer received %+v", syncer.sent)
	}

	all := svc.Customers(Filter{})
	if len(all) != 6 || all[0].ID != res.Customer.ID {
		t.Fatalf("new visit must be first of 6 records, got %d", len(all))
	}
}

func TestLogVisit_MergesByNormalizedPhone(t *testing.T) {
	svc, _ := newTestService(t, nil)

	res, err := svc.LogVisit(context.Background(), model.CustomerRecord{
		Name:        "Amit Patel",
		Phone:       "7654321098",
		Address:     "789 Koramangala, Bangalore",
		ServiceDate: "2025-01-09",
		ServiceType: model.ServiceTypeBoth,
		Price:       2200,
	})
	if err != nil {
		t.Fatalf("LogVisit error: %v", err)
	}

	if res.Synced {
		t.Fatalf("result without syncer must not be synced")
	}
	if res.Customer.ID != "3" {
		t.Fatalf("merged id = %q, want 3", res.Customer.ID)
	}
	if len(res.Customer.History) != 1 || res.Customer.History[0].Date != "2024-02-05" {
		t.Fatalf("unexpected history: %+v", res.Customer.History)
	}
}

func TestLogVisit_SyncFailureKeepsLocalChange(t *testing.T) {
	syncer := &stubSyncer{ok: false}
	svc, storage := newTestService(t, syncer)

	res, err := svc.LogVisit(context.Background(), model.CustomerRecord{
		ID:          "1",
		Name:        "Rajesh Kumar",
		Phone:       "+919876543210",
		ServiceDate: "2025-01-10",
		ServiceType: model.ServiceTypeSump,
		Price:       900,
	})
	if err != nil {
		t.Fatalf("LogVisit error: %v", err)
	}
	if res.Synced {
		t.Fatalf("expected unsynced result")
	}
	if storage.customers[0].ID != "1" || storage.customers[0].Price != 900 {
		t.Fatalf("local change must be persisted, got %+v", storage.customers[0])
	}
}

func TestLogVisit_Invalid(t *testing.T) {
	svc, storage := newTestService(t, nil)
	saves := storage.saves

	tests := []struct {
		name  string
		visit model.CustomerRecord
	}{
		{
			name:  "unknown service type",
			visit: model.CustomerRecord{Name: "A", Phone: "9999999999", ServiceType: "Well", Price: 10},
		},
		{
			name:  "other without label",
			visit: model.CustomerRecord{Name: "A", Phone: "9999999999", ServiceType: model.ServiceTypeOther, Price: 10},
		},
		{
			name:  "negative price",
			visit: model.CustomerRecord{Name: "A", Phone: "9999999999", ServiceType: model.ServiceTypeSump, Price: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LogVisit(context.Background(), tt.visit)
			if !errors.Is(err, validation.ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}

	if storage.saves != saves {
		t.Fatalf("invalid visits must not be persisted")
	}
}

func TestUpdateVisit(t *testing.T) {
	syncer := &stubSyncer{ok: true}
	svc, _ := newTestService(t, syncer)

	res, err := svc.UpdateVisit(context.Background(), "2", model.VisitUpdate{
		Name:              "Priya S.",
		Phone:             "8765432109",
		Address:           "New address",
		ServiceDate:       "2024-01-21",
		ServiceType:       model.ServiceTypeOther,
		CustomServiceType: " Pipe flushing ",
		Price:             1300,
	})
	if err != nil {
		t.Fatalf("UpdateVisit error: %v", err)
	}

	if !res.Synced || len(syncer.sent) != 1 {
		t.Fatalf("update must be synced")
	}
	if res.Customer.Phone != "+918765432109" || res.Customer.CustomServiceType != "Pipe flushing" {
		t.Fatalf("unexpected record: %+v", res.Customer)
	}
	if res.Customer.NextServiceDate != "" {
		t.Fatalf("next service date must be replaced, got %q", res.Customer.NextServiceDate)
	}
}

func TestUpdateVisit_NotFound(t *testing.T) {
	syncer := &stubSyncer{ok: true}
	svc, _ := newTestService(t, syncer)

	_, err := svc.UpdateVisit(context.Background(), "missing", model.VisitUpdate{ServiceType: model.ServiceTypeSump})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(syncer.sent) != 0 {
		t.Fatalf("missing record must not be synced")
	}
}

func TestIngest_RejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t, nil)

	seed := store.SeedCustomers()
	seed[1].ID = seed[0].ID

	_, err := svc.Ingest(context.Background(), seed)
	if !errors.Is(err, validation.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if len(svc.Customers(Filter{})) != 5 {
		t.Fatalf("rejected ingest must not change the collection")
	}
}

func TestMarkReminderSent(t *testing.T) {
	svc, _ := newTestService(t, nil)

	c, err := svc.MarkReminderSent(context.Background(), "1", nil)
	if err != nil {
		t.Fatalf("MarkReminderSent error: %v", err)
	}
	if !c.ReminderSent || c.ReminderSentAt == nil || !c.ReminderSentAt.Equal(testNow) {
		t.Fatalf("unexpected reminder state: %+v", c)
	}

	at := testNow.Add(time.Hour)
	c, err = svc.MarkReminderSent(context.Background(), "1", &at)
	if err != nil {
		t.Fatalf("MarkReminderSent error: %v", err)
	}
	if !c.ReminderSentAt.Equal(at) {
		t.Fatalf("reminderSentAt = %v, want %v", c.ReminderSentAt, at)
	}

	if _, err := svc.MarkReminderSent(context.Background(), "missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecord(t *testing.T) {
	svc, _ := newTestService(t, nil)

	if err := svc.DeleteRecord(context.Background(), "4"); err != nil {
		t.Fatalf("DeleteRecord error: %v", err)
	}
	if _, err := svc.Customer("4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteRecord(context.Background(), "4"); err != nil {
		t.Fatalf("deleting missing record must not fail: %v", err)
	}
}

func TestDeleteRecord_PersistenceError(t *testing.T) {
	svc, storage := newTestService(t, nil)
	storage.saveErr = errors.New("disk full")

	if err := svc.DeleteRecord(context.Background(), "4"); err == nil {
		t.Fatalf("expected persistence error")
	}
	if _, err := svc.Customer("4"); err != nil {
		t.Fatalf("record must survive failed delete: %v", err)
	}
}

func TestReminder(t *testing.T) {
	svc, _ := newTestService(t, nil)

	msg, err := svc.Reminder("2")
	if err != nil {
		t.Fatalf("Reminder error: %v", err)
	}
	if !strings.Contains(msg.Message, "sump cleaning is due on 10 Jan 2025") {
		t.Fatalf("unexpected message: %s", msg.Message)
	}
	if !strings.HasPrefix(msg.Link, "https://wa.me/918765432109?text=") {
		t.Fatalf("unexpected link: %s", msg.Link)
	}

	if _, err := svc.Reminder("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpcoming_DefaultWindow(t *testing.T) {
	svc, _ := newTestService(t, nil)

	got := svc.Upcoming(0)
	want := []string{"2", "3", "1", "4"}
	if len(got) != len(want) {
		t.Fatalf("Upcoming returned %d services, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].Customer.ID != id {
			t.Fatalf("Upcoming[%d] = %s, want %s", i, got[i].Customer.ID, id)
		}
	}
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t, nil)

	rep := svc.Stats()
	if rep.TotalIncome != 10000 {
		t.Fatalf("total income = %d, want 10000", rep.TotalIncome)
	}
	if len(rep.MonthlySeries) != 2 || rep.MonthlySeries[0].Month != "2024-01" || rep.MonthlySeries[0].Income != 3700 {
		t.Fatalf("unexpected monthly series: %+v", rep.MonthlySeries)
	}

	if d := svc.Dashboard(); d.TotalCustomers != 5 || d.TopServiceType != string(model.ServiceTypeSump) {
		t.Fatalf("unexpected dashboard: %+v", d)
	}
	if types := svc.ServiceTypes(); len(types) != 3 {
		t.Fatalf("unexpected breakdown: %+v", types)
	}
	if perf := svc.Performance(0); len(perf) != 0 {
		t.Fatalf("seed visits are older than six months, got %+v", perf)
	}
	if perf := svc.Performance(12); len(perf) != 2 {
		t.Fatalf("expected two months of performance, got %+v", perf)
	}
}

func TestExports(t *testing.T) {
	svc, _ := newTestService(t, nil)

	var csvBuf bytes.Buffer
	if err := svc.ExportCSV(&csvBuf); err != nil {
		t.Fatalf("ExportCSV error: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(csvBuf.String()), "\n"); lines != 5 {
		t.Fatalf("csv must contain header and 5 rows, got %d newlines", lines)
	}

	var txt bytes.Buffer
	if err := svc.ExportReport(&txt); err != nil {
		t.Fatalf("ExportReport error: %v", err)
	}
	if !strings.Contains(txt.String(), "Customers (5)") {
		t.Fatalf("unexpected report: %s", txt.String())
	}
}
