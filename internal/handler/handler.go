// Package handler содержит HTTP-обработчики API сервиса учёта обслуживания.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/suraksha-service/internal/model"
	"github.com/mmeshcher/suraksha-service/internal/reminder"
	"github.com/mmeshcher/suraksha-service/internal/service"
	"github.com/mmeshcher/suraksha-service/internal/stats"
	"github.com/mmeshcher/suraksha-service/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Now() time.Time
	Customers(f service.Filter) []model.CustomerRecord
	Customer(id string) (model.CustomerRecord, error)
	Ingest(ctx context.Context, customers []model.CustomerRecord) ([]model.CustomerRecord, error)
	LogVisit(ctx context.Context, visit model.CustomerRecord) (service.VisitResult, error)
	UpdateVisit(ctx context.Context, id string, upd model.VisitUpdate) (service.VisitResult, error)
	DeleteRecord(ctx context.Context, id string) error
	MarkReminderSent(ctx context.Context, id string, sentAt *time.Time) (model.CustomerRecord, error)
	Reminder(id string) (service.ReminderMessage, error)
	Upcoming(days int) []reminder.UpcomingService
	Stats() service.StatsReport
	Dashboard() stats.DashboardSummary
	ServiceTypes() []stats.ServiceTypeSummary
	Performance(months int) []stats.MonthPerformance
	ExportCSV(w io.Writer) error
	ExportReport(w io.Writer) error
}

// Handler реализует HTTP-обработчики API сервиса.
type Handler struct {
	service   Service
	logger    *zap.Logger
	validator *validation.Validator
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service:   s,
		logger:    logger,
		validator: validation.NewValidator(),
	}
}

type visitRequest struct {
	ID                string            `json:"id" validate:"omitempty,max=64"`
	Name              string            `json:"name" validate:"required,max=200"`
	Phone             string            `json:"phone" validate:"required,max=32"`
	Address           string            `json:"address" validate:"max=500"`
	ServiceDate       string            `json:"serviceDate" validate:"required,datetime=2006-01-02"`
	ServiceType       model.ServiceType `json:"serviceType" validate:"required,servicetype"`
	CustomServiceType string            `json:"customServiceType" validate:"required_if=ServiceType Other"`
	Price             int64             `json:"price" validate:"gte=0"`
	Notes             string            `json:"notes"`
	NextServiceDate   string            `json:"nextServiceDate" validate:"omitempty,datetime=2006-01-02"`
}

func (req visitRequest) record() model.CustomerRecord {
	return model.CustomerRecord{
		ID:                req.ID,
		Name:              req.Name,
		Phone:             req.Phone,
		Address:           req.Address,
		ServiceDate:       req.ServiceDate,
		ServiceType:       req.ServiceType,
		CustomServiceType: req.CustomServiceType,
		Price:             req.Price,
		Notes:             req.Notes,
		NextServiceDate:   req.NextServiceDate,
	}
}

func (req visitRequest) update() model.VisitUpdate {
	return model.VisitUpdate{
		Name:              req.Name,
		Phone:             req.Phone,
		Address:           req.Address,
		ServiceDate:       req.ServiceDate,
		ServiceType:       req.ServiceType,
		CustomServiceType: req.CustomServiceType,
		Price:             req.Price,
		Notes:             req.Notes,
		NextServiceDate:   req.NextServiceDate,
	}
}

// ListCustomers возвращает записи клиентов с учётом фильтров search, serviceType, from и to.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Customers(f))
}

// GetCustomer возвращает запись клиента по идентификатору.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Customer(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "get customer error", err)
		return
	}

	h.writeJSON(w, http.StatusOK, c)
}

// ReplaceCustomers заменяет коллекцию клиентов целиком.
func (h *Handler) ReplaceCustomers(w http.ResponseWriter, r *http.Request) {
	var customers []model.CustomerRecord
	if err := json.NewDecoder(r.Body).Decode(&customers); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.service.Ingest(r.Context(), customers)
	if err != nil {
		h.writeError(w, "replace customers error", err)
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

// LogVisit регистрирует визит клиента.
func (h *Handler) LogVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if !h.decodeVisit(w, r, &req) {
		return
	}

	res, err := h.service.LogVisit(r.Context(), req.record())
	if err != nil {
		h.writeError(w, "log visit error", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, res)
}

// UpdateVisit редактирует запись клиента.
func (h *Handler) UpdateVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if !h.decodeVisit(w, r, &req) {
		return
	}

	res, err := h.service.UpdateVisit(r.Context(), chi.URLParam(r, "id"), req.update())
	if err != nil {
		h.writeError(w, "update visit error", err)
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

// DeleteCustomer удаляет запись клиента.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, "delete customer error", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reminderSentRequest struct {
	SentAt *time.Time `json:"sentAt"`
}

// MarkReminderSent отмечает отправку напоминания клиенту.
func (h *Handler) MarkReminderSent(w http.ResponseWriter, r *http.Request) {
	var req reminderSentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	c, err := h.service.MarkReminderSent(r.Context(), chi.URLParam(r, "id"), req.SentAt)
	if err != nil {
		h.writeError(w, "mark reminder error", err)
		return
	}

	h.writeJSON(w, http.StatusOK, c)
}

// GetReminder возвращает текст напоминания и ссылку WhatsApp.
func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.Reminder(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "get reminder error", err)
		return
	}

	h.writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) decodeVisit(w http.ResponseWriter, r *http.Request, req *visitRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func (h *Handler) parseFilter(r *http.Request) (service.Filter, error) {
	q := r.URL.Query()
	loc := h.service.Now().Location()

	f := service.Filter{
		Search:      q.Get("search"),
		ServiceType: model.ServiceType(q.Get("serviceType")),
	}

	for param, dst := range map[string]**time.Time{"from": &f.DateFrom, "to": &f.DateTo} {
		v := strings.TrimSpace(q.Get(param))
		if v == "" {
			continue
		}
		t, err := dateparse.ParseIn(v, loc)
		if err != nil {
			return service.Filter{}, errors.New("invalid " + param + " date")
		}
		*dst = &t
	}

	return f, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, validation.ErrInvalidRecord), errors.Is(err, reminder.ErrInvalidPhone):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error(msg, zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
