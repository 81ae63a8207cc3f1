// Package service реализует бизнес-логику сервиса учёта обслуживания резервуаров.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/suraksha-service/internal/model"
	"github.com/mmeshcher/suraksha-service/internal/reminder"
	"github.com/mmeshcher/suraksha-service/internal/report"
	"github.com/mmeshcher/suraksha-service/internal/stats"
	"github.com/mmeshcher/suraksha-service/internal/validation"
)

// DefaultPerformanceMonths задаёт глубину помесячной динамики по умолчанию.
const DefaultPerformanceMonths = 6

// ErrNotFound возвращается, если клиент с указанным идентификатором отсутствует.
var ErrNotFound = errors.New("customer not found")

// Store описывает хранилище записей клиентов, используемое сервисом.
type Store interface {
	Customers() []model.CustomerRecord
	Customer(id string) (model.CustomerRecord, bool)
	Ingest(ctx context.Context, customers []model.CustomerRecord) ([]model.CustomerRecord, error)
	LogVisit(ctx context.Context, visit model.CustomerRecord) ([]model.CustomerRecord, error)
	UpdateVisit(ctx context.Context, id string, upd model.VisitUpdate) ([]model.CustomerRecord, error)
	DeleteRecord(ctx context.Context, id string) ([]model.CustomerRecord, error)
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time) ([]model.CustomerRecord, error)
}

// Syncer передаёт запись во внешнюю систему и сообщает, удалась ли передача.
type Syncer interface {
	Send(ctx context.Context, record model.CustomerRecord) bool
}

// Service содержит бизнес-логику сервиса.
type Service struct {
	store  Store
	syncer Syncer
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// VisitResult содержит запись клиента после изменения и результат её передачи во внешнюю систему.
type VisitResult struct {
	Customer model.CustomerRecord `json:"customer"`
	Synced   bool                 `json:"synced"`
}

// StatsReport содержит показатели дохода вместе с помесячным рядом.
type StatsReport struct {
	stats.Stats
	MonthlySeries []stats.MonthIncome `json:"monthlySeries"`
}

// ReminderMessage содержит готовое напоминание для ручной отправки.
type ReminderMessage struct {
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
	Link       string `json:"link"`
}

// NewService создаёт сервис. Календарные даты вычисляются в часовом поясе loc.
func NewService(store Store, syncer Syncer, logger *zap.Logger, loc *time.Location) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:  store,
		syncer: syncer,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// Now возвращает текущее время в рабочем часовом поясе.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Customers возвращает записи клиентов, удовлетворяющие фильтру.
func (s *Service) Customers(f Filter) []model.CustomerRecord {
	all := s.store.Customers()
	if f.IsZero() {
		return all
	}

	res := make([]model.CustomerRecord, 0, len(all))
	for _, c := range all {
		if f.Match(c, s.loc) {
			res = append(res, c)
		}
	}
	return res
}

// Customer возвращает запись клиента по идентификатору.
func (s *Service) Customer(id string) (model.CustomerRecord, error) {
	c, ok := s.store.Customer(id)
	if !ok {
		return model.CustomerRecord{}, ErrNotFound
	}
	return c, nil
}

// Ingest заменяет коллекцию целиком. Записи проверяются, но не изменяются.
func (s *Service) Ingest(ctx context.Context, customers []model.CustomerRecord) ([]model.CustomerRecord, error) {
	seen := make(map[string]struct{}, len(customers))
	for i, c := range customers {
		if err := validation.CheckRecord(c); err != nil {
			return nil, fmt.Errorf("customers[%d]: %w", i, err)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("customers[%d]: %w: duplicate id %q", i, validation.ErrInvalidRecord, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	return s.store.Ingest(ctx, customers)
}

// LogVisit регистрирует визит клиента и передаёт итоговую запись во внешнюю систему.
// Результат передачи не влияет на локальное изменение.
func (s *Service) LogVisit(ctx context.Context, visit model.CustomerRecord) (VisitResult, error) {
	visit.ID = strings.TrimSpace(visit.ID)
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}
	visit.Name = strings.TrimSpace(visit.Name)
	visit.Address = strings.TrimSpace(visit.Address)
	visit.Phone = validation.NormalizePhoneNumber(visit.Phone)
	visit.CustomServiceType = customLabel(visit.ServiceType, visit.CustomServiceType)
	visit.ReminderSent = false
	visit.ReminderSentAt = nil
	visit.History = nil

	if err := validation.CheckRecord(visit); err != nil {
		return VisitResult{}, err
	}

	customers, err := s.store.LogVisit(ctx, visit)
	if err != nil {
		return VisitResult{}, err
	}

	record := customers[0]
	s.logger.Info("visit logged",
		zap.String("id", record.ID),
		zap.String("serviceDate", record.ServiceDate),
		zap.Int("history", len(record.History)),
	)

	return VisitResult{Customer: record, Synced: s.sync(ctx, record)}, nil
}

// UpdateVisit редактирует запись клиента и передаёт её во внешнюю систему.
func (s *Service) UpdateVisit(ctx context.Context, id string, upd model.VisitUpdate) (VisitResult, error) {
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Address = strings.TrimSpace(upd.Address)
	upd.Phone = validation.NormalizePhoneNumber(upd.Phone)
	upd.CustomServiceType = customLabel(upd.ServiceType, upd.CustomServiceType)

	check := model.CustomerRecord{
		ID:                id,
		ServiceType:       upd.ServiceType,
		CustomServiceType: upd.CustomServiceType,
		Price:             upd.Price,
	}
	if err := validation.CheckRecord(check); err != nil {
		return VisitResult{}, err
	}

	customers, err := s.store.UpdateVisit(ctx, id, upd)
	if err != nil {
		return VisitResult{}, err
	}

	record, ok := find(customers, id)
	if !ok {
		return VisitResult{}, ErrNotFound
	}

	return VisitResult{Customer: record, Synced: s.sync(ctx, record)}, nil
}

// DeleteRecord удаляет запись клиента.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	_, err := s.store.DeleteRecord(ctx, id)
	return err
}

// MarkReminderSent отмечает отправку напоминания. Если sentAt не задано, используется текущее время.
func (s *Service) MarkReminderSent(ctx context.Context, id string, sentAt *time.Time) (model.CustomerRecord, error) {
	at := s.Now()
	if sentAt != nil {
		at = *sentAt
	}

	customers, err := s.store.MarkReminderSent(ctx, id, at)
	if err != nil {
		return model.CustomerRecord{}, err
	}

	record, ok := find(customers, id)
	if !ok {
		return model.CustomerRecord{}, ErrNotFound
	}
	return record, nil
}

// Reminder готовит текст напоминания и ссылку WhatsApp для клиента.
func (s *Service) Reminder(id string) (ReminderMessage, error) {
	c, err := s.Customer(id)
	if err != nil {
		return ReminderMessage{}, err
	}

	msg := reminder.DefaultMessage(c)
	link, err := reminder.WhatsAppLink(c.Phone, msg)
	if err != nil {
		return ReminderMessage{}, err
	}

	return ReminderMessage{CustomerID: c.ID, Message: msg, Link: link}, nil
}

// Upcoming возвращает клиентов, чьё обслуживание наступает в ближайшие days дней.
func (s *Service) Upcoming(days int) []reminder.UpcomingService {
	if days <= 0 {
		days = reminder.DefaultWindowDays
	}
	return reminder.Upcoming(s.store.Customers(), s.Now(), days)
}

// Stats возвращает показатели дохода на текущий момент.
func (s *Service) Stats() StatsReport {
	st := stats.Compute(s.store.Customers(), s.Now())
	return StatsReport{Stats: st, MonthlySeries: stats.MonthlySeries(st.MonthlyIncome)}
}

// Dashboard возвращает сводку для главного экрана.
func (s *Service) Dashboard() stats.DashboardSummary {
	return stats.Dashboard(s.store.Customers(), s.Now())
}

// ServiceTypes возвращает распределение визитов по категориям услуг.
func (s *Service) ServiceTypes() []stats.ServiceTypeSummary {
	return stats.ServiceTypeBreakdown(s.store.Customers())
}

// Performance возвращает помесячную динамику за последние months месяцев.
func (s *Service) Performance(months int) []stats.MonthPerformance {
	if months <= 0 {
		months = DefaultPerformanceMonths
	}
	return stats.RecentPerformance(s.store.Customers(), s.Now(), months)
}

// ExportCSV записывает все визиты в CSV.
func (s *Service) ExportCSV(w io.Writer) error {
	return report.WriteCSV(w, s.store.Customers())
}

// ExportReport записывает текстовый отчёт о доходах.
func (s *Service) ExportReport(w io.Writer) error {
	return report.WriteText(w, s.store.Customers(), s.Now())
}

func (s *Service) sync(ctx context.Context, record model.CustomerRecord) bool {
	if s.syncer == nil {
		return false
	}
	return s.syncer.Send(ctx, record)
}

// customLabel оставляет собственную метку услуги только для категории Other.
func customLabel(st model.ServiceType, label string) string {
	if st != model.ServiceTypeOther {
		return ""
	}
	return strings.TrimSpace(label)
}

func find(customers []model.CustomerRecord, id string) (model.CustomerRecord, bool) {
	for _, c := range customers {
		if c.ID == id {
			return c, true
		}
	}
	return model.CustomerRecord{}, false
}
