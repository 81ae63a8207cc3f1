// Package webhook предоставляет клиент для передачи записей клиентов во внешнюю систему автоматизации.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

// Статусы записи в системе автоматизации.
const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
)

// Client инкапсулирует HTTP-взаимодействие с вебхуком системы автоматизации.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// Payload описывает упрощённое представление записи клиента, отправляемое во внешнюю систему.
type Payload struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	Address         string  `json:"address"`
	ServiceType     string  `json:"serviceType"`
	Price           int64   `json:"price"`
	ServiceDate     string  `json:"serviceDate"`
	NextServiceDate *string `json:"nextServiceDate"`
	Notes           string  `json:"notes"`
	Status          string  `json:"status"`
	Timestamp       int64   `json:"timestamp"`
}

// NewClient создаёт клиент для указанного адреса вебхука.
func NewClient(url string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	url = strings.TrimSpace(url)
	if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}
}

// NewPayload строит представление записи для отправки.
func NewPayload(c model.CustomerRecord, sentAt time.Time) Payload {
	p := Payload{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Address:     c.Address,
		ServiceType: c.ServiceLabel(),
		Price:       c.Price,
		ServiceDate: c.ServiceDate,
		Notes:       c.Notes,
		Status:      StatusCompleted,
		Timestamp:   sentAt.UnixMilli(),
	}
	if c.NextServiceDate != "" {
		next := c.NextServiceDate
		p.NextServiceDate = &next
		p.Status = StatusActive
	}
	return p
}

// Send отправляет запись во внешнюю систему. Любая ошибка превращается в false и
// записывается в журнал; локальные данные от результата не зависят.
func (c *Client) Send(ctx context.Context, record model.CustomerRecord) bool {
	if c == nil || c.url == "" {
		return false
	}

	if err := c.send(ctx, NewPayload(record, c.now())); err != nil {
		c.logger.Warn("webhook sync failed", zap.String("id", record.ID), zap.Error(err))
		return false
	}

	c.logger.Info("webhook sync succeeded", zap.String("id", record.ID))
	return true
}

func (c *Client) send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
