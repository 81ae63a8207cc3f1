package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Source предоставляет текущую коллекцию клиентов.
type Source interface {
	Customers() []model.CustomerRecord
}

// Scheduler периодически записывает в журнал сводку предстоящих обслуживаний.
// Отправка напоминаний остаётся ручной.
type Scheduler struct {
	source Source
	logger *zap.Logger
	days   int
	loc    *time.Location
	now    func() time.Time
	sched  *cron.Cron
}

// NewScheduler создаёт планировщик сводки в указанном часовом поясе.
func NewScheduler(source Source, logger *zap.Logger, loc *time.Location, days int) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if days <= 0 {
		days = DefaultWindowDays
	}
	return &Scheduler{
		source: source,
		logger: logger,
		days:   days,
		loc:    loc,
		now:    time.Now,
		sched:  cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
	}
}

// Start регистрирует задачу по расписанию в формате cron и запускает планировщик.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.sched.AddFunc(spec, func() { s.RunDigest() }); err != nil {
		return fmt.Errorf("add reminder job: %w", err)
	}
	s.sched.Start()
	return nil
}

// Run запускает планировщик и останавливает его при отмене контекста.
func (s *Scheduler) Run(ctx context.Context, spec string) error {
	if err := s.Start(spec); err != nil {
		return err
	}
	<-ctx.Done()
	<-s.sched.Stop().Done()
	return nil
}

// RunDigest находит предстоящие обслуживания и записывает их в журнал.
func (s *Scheduler) RunDigest() []UpcomingService {
	upcoming := Upcoming(s.source.Customers(), s.now().In(s.loc), s.days)

	s.logger.Info("upcoming services digest", zap.Int("count", len(upcoming)), zap.Int("days", s.days))
	for _, u := range upcoming {
		s.logger.Info("upcoming service",
			zap.String("id", u.Customer.ID),
			zap.String("name", u.Customer.Name),
			zap.String("nextServiceDate", u.Customer.NextServiceDate),
			zap.Int("daysUntil", u.DaysUntil),
			zap.Bool("reminderSent", u.Customer.ReminderSent),
		)
	}
	return upcoming
}
