// Package store реализует хранилище записей клиентов с объединением визитов по идентичности клиента.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

// Storage описывает контракт постоянного хранения коллекции, используемый хранилищем.
type Storage interface {
	LoadCustomers(ctx context.Context) ([]model.CustomerRecord, error)
	SaveCustomers(ctx context.Context, customers []model.CustomerRecord) error
	IsInitialized(ctx context.Context) (bool, error)
	MarkInitialized(ctx context.Context) error
}

// Store владеет коллекцией записей клиентов. Каждая мутация строит новую коллекцию,
// сохраняет её и только после успешного сохранения делает её текущей.
type Store struct {
	mu        sync.RWMutex
	storage   Storage
	logger    *zap.Logger
	customers []model.CustomerRecord
}

// New создаёт хранилище с пустой коллекцией. Для загрузки данных вызовите Init.
func New(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		storage:   storage,
		logger:    logger,
		customers: []model.CustomerRecord{},
	}
}

// Init загружает сохранённую коллекцию. Демонстрационные данные устанавливаются только при первом
// запуске, когда хранилище пусто и ещё не инициализировалось.
func (s *Store) Init(ctx context.Context, seed []model.CustomerRecord) error {
	stored, err := s.storage.LoadCustomers(ctx)
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}

	initialized, err := s.storage.IsInitialized(ctx)
	if err != nil {
		return fmt.Errorf("check initialized: %w", err)
	}

	if !initialized && len(stored) == 0 {
		if _, err := s.Ingest(ctx, seed); err != nil {
			return err
		}
		if err := s.storage.MarkInitialized(ctx); err != nil {
			return fmt.Errorf("mark initialized: %w", err)
		}
		s.logger.Info("seed data installed", zap.Int("customers", len(seed)))
		return nil
	}

	if _, err := s.Ingest(ctx, stored); err != nil {
		return err
	}
	s.logger.Info("customers loaded", zap.Int("customers", len(stored)))
	return nil
}

// Customers возвращает копию текущей коллекции.
func (s *Store) Customers() []model.CustomerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAll(s.customers)
}

// Customer возвращает копию записи по идентификатору.
func (s *Store) Customer(id string) (model.CustomerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return model.CustomerRecord{}, false
}

// Ingest заменяет коллекцию целиком без объединения. Пустая коллекция не сохраняется,
// чтобы неудачная загрузка не стёрла ранее сохранённые данные.
func (s *Store) Ingest(ctx context.Context, customers []model.CustomerRecord) ([]model.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := model.CloneAll(customers)
	if next == nil {
		next = []model.CustomerRecord{}
	}

	if len(next) > 0 {
		if err := s.storage.SaveCustomers(ctx, next); err != nil {
			return nil, fmt.Errorf("save customers: %w", err)
		}
	}

	s.customers = next
	return model.CloneAll(next), nil
}

// LogVisit регистрирует новый визит. Если клиент уже известен (по идентификатору, иначе по телефону),
// его текущий визит переносится в начало истории со статусом Paid, а запись с новыми данными
// перемещается в начало коллекции. Иначе добавляется новая запись с пустой историей.
func (s *Store) LogVisit(ctx context.Context, visit model.CustomerRecord) ([]model.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.matchIdentity(visit)

	next := make([]model.CustomerRecord, 0, len(s.customers)+1)
	if idx < 0 {
		fresh := visit.Clone()
		fresh.History = []model.ServiceVisit{}
		next = append(next, fresh)
		next = append(next, s.customers...)
	} else {
		existing := s.customers[idx]

		merged := visit.Clone()
		merged.ID = existing.ID
		merged.History = make([]model.ServiceVisit, 0, len(existing.History)+1)
		merged.History = append(merged.History, existing.CurrentVisit())
		merged.History = append(merged.History, existing.Clone().History...)

		next = append(next, merged)
		next = append(next, s.customers[:idx]...)
		next = append(next, s.customers[idx+1:]...)
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return model.CloneAll(next), nil
}

// matchIdentity ищет существующую запись: сначала по идентификатору, затем по телефону.
// Если совпадение по идентификатору и другая запись с тем же телефоном существуют одновременно,
// побеждает идентификатор, а конфликт записывается в журнал.
func (s *Store) matchIdentity(visit model.CustomerRecord) int {
	byID, byPhone := -1, -1
	for i, c := range s.customers {
		if byID < 0 && visit.ID != "" && c.ID == visit.ID {
			byID = i
		}
		if byPhone < 0 && visit.Phone != "" && c.Phone == visit.Phone {
			byPhone = i
		}
	}

	if byID >= 0 {
		if byPhone >= 0 && byPhone != byID {
			s.logger.Warn("identity conflict: id and phone match different customers",
				zap.String("id", visit.ID),
				zap.String("phone", visit.Phone),
				zap.String("phoneOwnerID", s.customers[byPhone].ID),
			)
		}
		return byID
	}
	return byPhone
}

// UpdateVisit заменяет контактные данные и поля текущего визита. История, идентификатор и
// состояние напоминания не изменяются. Неизвестный идентификатор не является ошибкой.
func (s *Store) UpdateVisit(ctx context.Context, id string, upd model.VisitUpdate) ([]model.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := model.CloneAll(s.customers)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		c := &next[i]
		c.Name = upd.Name
		c.Phone = upd.Phone
		c.Address = upd.Address
		c.ServiceDate = upd.ServiceDate
		c.ServiceType = upd.ServiceType
		c.CustomServiceType = upd.CustomServiceType
		c.Price = upd.Price
		c.Notes = upd.Notes
		c.NextServiceDate = upd.NextServiceDate
		break
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return model.CloneAll(next), nil
}

// DeleteRecord удаляет запись по идентификатору. Неизвестный идентификатор не является ошибкой.
func (s *Store) DeleteRecord(ctx context.Context, id string) ([]model.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.CustomerRecord, 0, len(s.customers))
	for _, c := range s.customers {
		if c.ID != id {
			next = append(next, c)
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return model.CloneAll(next), nil
}

// MarkReminderSent отмечает отправку напоминания о следующем обслуживании. Повторный вызов
// перезаписывает время отправки.
func (s *Store) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) ([]model.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := model.CloneAll(s.customers)
	for i := range next {
		if next[i].ID == id {
			at := sentAt
			next[i].ReminderSent = true
			next[i].ReminderSentAt = &at
			break
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return model.CloneAll(next), nil
}

// commit сохраняет коллекцию и делает её текущей. Вызывается под блокировкой.
func (s *Store) commit(ctx context.Context, next []model.CustomerRecord) error {
	if err := s.storage.SaveCustomers(ctx, next); err != nil {
		return fmt.Errorf("save customers: %w", err)
	}
	s.customers = next
	return nil
}
