// Package reminder находит предстоящие обслуживания и готовит напоминания клиентам.
package reminder

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmeshcher/suraksha-service/internal/model"
	"github.com/mmeshcher/suraksha-service/internal/validation"
)

// DefaultWindowDays задаёт горизонт поиска предстоящих обслуживаний в днях.
const DefaultWindowDays = 3

const displayDateLayout = "02 Jan 2006"

// ErrInvalidPhone возвращается, если номер не годится для ссылки WhatsApp.
var ErrInvalidPhone = errors.New("invalid phone number")

// UpcomingService описывает клиента, чьё следующее обслуживание попадает в горизонт.
type UpcomingService struct {
	Customer  model.CustomerRecord `json:"customer"`
	DaysUntil int                  `json:"daysUntil"`
}

// Upcoming возвращает клиентов со следующим обслуживанием в интервале [сегодня, сегодня+days],
// упорядоченных по дате.
func Upcoming(customers []model.CustomerRecord, now time.Time, days int) []UpcomingService {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	until := today.AddDate(0, 0, days)

	var res []UpcomingService
	for _, c := range customers {
		if c.NextServiceDate == "" {
			continue
		}
		next, err := time.ParseInLocation(model.DateLayout, c.NextServiceDate, now.Location())
		if err != nil {
			continue
		}
		if next.Before(today) || next.After(until) {
			continue
		}
		res = append(res, UpcomingService{
			Customer:  c.Clone(),
			DaysUntil: daysBetween(today, next),
		})
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].DaysUntil != res[j].DaysUntil {
			return res[i].DaysUntil < res[j].DaysUntil
		}
		return res[i].Customer.Name < res[j].Customer.Name
	})
	return res
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ServiceLabel переводит категорию услуги в текст для сообщения.
func ServiceLabel(st model.ServiceType) string {
	switch st {
	case model.ServiceTypeSump:
		return "sump cleaning"
	case model.ServiceTypeTank:
		return "water tank cleaning"
	case model.ServiceTypeBoth, model.ServiceTypeOther:
		return "water tank and sump cleaning"
	}
	return strings.ToLower(string(st))
}

// DefaultMessage формирует стандартный текст напоминания о следующем обслуживании.
func DefaultMessage(c model.CustomerRecord) string {
	next := c.NextServiceDate
	if d, err := time.Parse(model.DateLayout, c.NextServiceDate); err == nil {
		next = d.Format(displayDateLayout)
	}

	return fmt.Sprintf("Hi Dear Sir/Madam, this is a gentle reminder from Suraksha Service. "+
		"Your next %s is due on %s. Please confirm if we should book your slot, or let us know a better time. "+
		"Thank you for trusting us with your water tank/sump cleaning needs!", ServiceLabel(c.ServiceType), next)
}

// WhatsAppLink строит ссылку wa.me для отправки сообщения вручную.
func WhatsAppLink(phone, message string) (string, error) {
	if !validation.IsValidPhone(phone) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + validation.PhoneDigits(phone) + "?text=" + text, nil
}
