// Package stats вычисляет показатели дохода по коллекции клиентов с учётом истории визитов.
package stats

import (
	"sort"
	"time"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

const monthLayout = "2006-01"

// Stats содержит производные показатели дохода.
type Stats struct {
	TotalIncome   int64            `json:"totalIncome"`
	MonthlyIncome map[string]int64 `json:"monthlyIncome"`
	WeeklyIncome  int64            `json:"weeklyIncome"`
	DailyIncome   int64            `json:"dailyIncome"`
}

// Compute пересчитывает показатели по всем визитам (текущим и архивным) всех клиентов.
// Неделя начинается в воскресенье и содержит now. Визит с нераспознанной датой
// учитывается только в общем доходе.
func Compute(customers []model.CustomerRecord, now time.Time) Stats {
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 6)

	res := Stats{MonthlyIncome: make(map[string]int64)}

	for _, c := range customers {
		for _, v := range c.Visits() {
			res.TotalIncome += v.Price

			d, ok := parseDate(v.Date, now.Location())
			if !ok {
				continue
			}

			res.MonthlyIncome[d.Format(monthLayout)] += v.Price

			if !d.Before(weekStart) && !d.After(weekEnd) {
				res.WeeklyIncome += v.Price
			}
			if d.Equal(today) {
				res.DailyIncome += v.Price
			}
		}
	}

	return res
}

// MonthIncome содержит доход за один календарный месяц.
type MonthIncome struct {
	Month  string `json:"month"`
	Income int64  `json:"income"`
}

// MonthlySeries возвращает помесячный доход в порядке возрастания месяцев.
func MonthlySeries(monthly map[string]int64) []MonthIncome {
	res := make([]MonthIncome, 0, len(monthly))
	for month, income := range monthly {
		res = append(res, MonthIncome{Month: month, Income: income})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Month < res[j].Month })
	return res
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	d, err := time.ParseInLocation(model.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
