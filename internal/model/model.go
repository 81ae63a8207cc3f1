// Package model содержит доменные сущности сервиса учёта обслуживания резервуаров.
package model

import "time"

// DateLayout задаёт формат календарных дат в записях (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ServiceType описывает категорию оказанной услуги.
type ServiceType string

const (
	ServiceTypeSump  ServiceType = "Sump"
	ServiceTypeTank  ServiceType = "Tank"
	ServiceTypeBoth  ServiceType = "Both"
	ServiceTypeOther ServiceType = "Other"
)

// ServiceTypes перечисляет все допустимые категории услуг.
var ServiceTypes = []ServiceType{ServiceTypeSump, ServiceTypeTank, ServiceTypeBoth, ServiceTypeOther}

// PaymentStatus описывает статус оплаты архивного визита.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
)

// ServiceVisit описывает одно прошедшее обслуживание. После архивации не изменяется.
type ServiceVisit struct {
	Date              string        `json:"date"`
	ServiceType       ServiceType   `json:"serviceType"`
	CustomServiceType string        `json:"customServiceType,omitempty"`
	Price             int64         `json:"price"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	ReminderSent      bool          `json:"reminderSent,omitempty"`
	ReminderSentAt    *time.Time    `json:"reminderSentAt,omitempty"`
	Notes             string        `json:"notes,omitempty"`
}

// CustomerRecord описывает текущий визит клиента и всю историю его обслуживания.
type CustomerRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	ServiceDate       string      `json:"serviceDate"`
	ServiceType       ServiceType `json:"serviceType"`
	CustomServiceType string      `json:"customServiceType,omitempty"`
	Price             int64       `json:"price"`
	Notes             string      `json:"notes,omitempty"`

	NextServiceDate string     `json:"nextServiceDate,omitempty"`
	ReminderSent    bool       `json:"reminderSent,omitempty"`
	ReminderSentAt  *time.Time `json:"reminderSentAt,omitempty"`

	// History упорядочена от самого свежего визита к самому старому.
	History []ServiceVisit `json:"history,omitempty"`
}

// VisitUpdate содержит поля, заменяемые при редактировании записи клиента.
type VisitUpdate struct {
	Name              string
	Phone             string
	Address           string
	ServiceDate       string
	ServiceType       ServiceType
	CustomServiceType string
	Price             int64
	Notes             string
	NextServiceDate   string
}

// ServiceLabel возвращает отображаемое название услуги: собственную метку для Other, иначе категорию.
func (c CustomerRecord) ServiceLabel() string {
	if c.CustomServiceType != "" {
		return c.CustomServiceType
	}
	return string(c.ServiceType)
}

// CurrentVisit представляет текущий визит в виде записи истории.
func (c CustomerRecord) CurrentVisit() ServiceVisit {
	return ServiceVisit{
		Date:              c.ServiceDate,
		ServiceType:       c.ServiceType,
		CustomServiceType: c.CustomServiceType,
		Price:             c.Price,
		PaymentStatus:     PaymentStatusPaid,
		ReminderSent:      c.ReminderSent,
		ReminderSentAt:    cloneTime(c.ReminderSentAt),
		Notes:             c.Notes,
	}
}

// Visits возвращает текущий визит и затем историю в порядке хранения.
func (c CustomerRecord) Visits() []ServiceVisit {
	visits := make([]ServiceVisit, 0, len(c.History)+1)
	visits = append(visits, c.CurrentVisit())
	visits = append(visits, c.History...)
	return visits
}

// Clone возвращает глубокую копию записи.
func (c CustomerRecord) Clone() CustomerRecord {
	out := c
	out.ReminderSentAt = cloneTime(c.ReminderSentAt)
	if c.History != nil {
		out.History = make([]ServiceVisit, len(c.History))
		for i, v := range c.History {
			v.ReminderSentAt = cloneTime(v.ReminderSentAt)
			out.History[i] = v
		}
	}
	return out
}

// CloneAll возвращает глубокую копию коллекции.
func CloneAll(records []CustomerRecord) []CustomerRecord {
	if records == nil {
		return nil
	}
	out := make([]CustomerRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
