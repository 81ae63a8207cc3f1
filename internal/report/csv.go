// Package report формирует выгрузки коллекции клиентов: CSV и текстовый отчёт о доходах.
package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

// Виды строк выгрузки.
const (
	VisitCurrent = "current"
	VisitHistory = "history"
)

// VisitRow описывает строку CSV-выгрузки: один визит вместе с данными клиента.
type VisitRow struct {
	CustomerID      string `csv:"customer_id"`
	Name            string `csv:"name"`
	Phone           string `csv:"phone"`
	Address         string `csv:"address"`
	Kind            string `csv:"kind"`
	VisitDate       string `csv:"visit_date"`
	ServiceType     string `csv:"service_type"`
	Price           int64  `csv:"price"`
	PaymentStatus   string `csv:"payment_status"`
	ReminderSent    bool   `csv:"reminder_sent"`
	NextServiceDate string `csv:"next_service_date"`
	Notes           string `csv:"notes"`
}

// VisitRows разворачивает коллекцию в строки: для каждого клиента сначала текущий визит, затем история.
// Статус оплаты заполняется только для архивных визитов.
func VisitRows(customers []model.CustomerRecord) []*VisitRow {
	rows := make([]*VisitRow, 0, len(customers))
	for _, c := range customers {
		for i, v := range c.Visits() {
			row := &VisitRow{
				CustomerID:    c.ID,
				Name:          c.Name,
				Phone:         c.Phone,
				Address:       c.Address,
				Kind:          VisitHistory,
				VisitDate:     v.Date,
				ServiceType:   visitLabel(v),
				Price:         v.Price,
				PaymentStatus: string(v.PaymentStatus),
				ReminderSent:  v.ReminderSent,
				Notes:         v.Notes,
			}
			if i == 0 {
				row.Kind = VisitCurrent
				row.PaymentStatus = ""
				row.NextServiceDate = c.NextServiceDate
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV записывает визиты всех клиентов в CSV с заголовком.
func WriteCSV(w io.Writer, customers []model.CustomerRecord) error {
	if err := gocsv.Marshal(VisitRows(customers), w); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}

func visitLabel(v model.ServiceVisit) string {
	if v.CustomServiceType != "" {
		return v.CustomServiceType
	}
	return string(v.ServiceType)
}
