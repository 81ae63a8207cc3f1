package service

import (
	"strings"
	"time"

	"github.com/mmeshcher/suraksha-service/internal/model"
	"github.com/mmeshcher/suraksha-service/internal/validation"
)

// Filter задаёт условия отбора записей клиентов.
type Filter struct {
	// Search ищется в имени без учёта регистра и в телефоне. Запрос, похожий на номер,
	// сравнивается только по цифрам.
	Search      string
	ServiceType model.ServiceType
	// DateFrom и DateTo ограничивают дату текущего визита включительно.
	DateFrom *time.Time
	DateTo   *time.Time
}

// IsZero сообщает, что фильтр не задаёт ни одного условия.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && f.ServiceType == "" && f.DateFrom == nil && f.DateTo == nil
}

// Match проверяет запись на соответствие фильтру. Границы дат сравниваются как календарные дни,
// дата визита разбирается в loc.
func (f Filter) Match(c model.CustomerRecord, loc *time.Location) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		nameMatch := strings.Contains(strings.ToLower(c.Name), q)
		phoneMatch := strings.Contains(c.Phone, q)
		if isPhoneQuery(q) && strings.Contains(validation.DigitsOnly(c.Phone), validation.DigitsOnly(q)) {
			phoneMatch = true
		}
		if !nameMatch && !phoneMatch {
			return false
		}
	}

	if f.ServiceType != "" {
		if c.ServiceType != f.ServiceType {
			return false
		}
		if f.ServiceType == model.ServiceTypeOther && c.CustomServiceType == "" {
			return false
		}
	}

	if f.DateFrom == nil && f.DateTo == nil {
		return true
	}

	d, err := time.ParseInLocation(model.DateLayout, c.ServiceDate, loc)
	if err != nil {
		return false
	}
	if f.DateFrom != nil && d.Before(day(*f.DateFrom, loc)) {
		return false
	}
	if f.DateTo != nil && d.After(day(*f.DateTo, loc)) {
		return false
	}
	return true
}

// isPhoneQuery сообщает, что запрос похож на номер телефона: цифры, пробелы и символы + - ( ).
func isPhoneQuery(q string) bool {
	hasDigit := false
	for _, ch := range q {
		switch {
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case strings.ContainsRune(" +-()", ch):
		default:
			return false
		}
	}
	return hasDigit
}

func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
