package stats

import (
	"sort"
	"time"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

// ServiceTypeSummary содержит число визитов и доход по одной категории услуг.
type ServiceTypeSummary struct {
	ServiceType model.ServiceType `json:"serviceType"`
	Visits      int               `json:"visits"`
	Income      int64             `json:"income"`
}

// ServiceTypeBreakdown распределяет все визиты по категориям услуг.
// Порядок: по убыванию числа визитов, затем по названию.
func ServiceTypeBreakdown(customers []model.CustomerRecord) []ServiceTypeSummary {
	byType := make(map[model.ServiceType]*ServiceTypeSummary)
	for _, c := range customers {
		for _, v := range c.Visits() {
			s, ok := byType[v.ServiceType]
			if !ok {
				s = &ServiceTypeSummary{ServiceType: v.ServiceType}
				byType[v.ServiceType] = s
			}
			s.Visits++
			s.Income += v.Price
		}
	}

	res := make([]ServiceTypeSummary, 0, len(byType))
	for _, s := range byType {
		res = append(res, *s)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Visits != res[j].Visits {
			return res[i].Visits > res[j].Visits
		}
		return res[i].ServiceType < res[j].ServiceType
	})
	return res
}

// DashboardSummary содержит сводку для главного экрана.
type DashboardSummary struct {
	Stats
	CurrentMonth       string `json:"currentMonth"`
	CurrentMonthIncome int64  `json:"currentMonthIncome"`
	CustomersThisMonth int    `json:"customersThisMonth"`
	TotalCustomers     int    `json:"totalCustomers"`
	TopServiceType     string `json:"topServiceType"`
}

// Dashboard строит сводку. Число клиентов месяца и самая частая услуга считаются по текущим визитам.
func Dashboard(customers []model.CustomerRecord, now time.Time) DashboardSummary {
	st := Compute(customers, now)
	month := now.Format(monthLayout)

	res := DashboardSummary{
		Stats:              st,
		CurrentMonth:       month,
		CurrentMonthIncome: st.MonthlyIncome[month],
		TotalCustomers:     len(customers),
		TopServiceType:     "N/A",
	}

	counts := make(map[model.ServiceType]int)
	for _, c := range customers {
		if d, ok := parseDate(c.ServiceDate, now.Location()); ok && d.Format(monthLayout) == month {
			res.CustomersThisMonth++
		}
		counts[c.ServiceType]++
	}

	best := 0
	for _, t := range model.ServiceTypes {
		if counts[t] > best {
			best = counts[t]
			res.TopServiceType = string(t)
		}
	}

	return res
}

// MonthPerformance содержит число визитов и доход за месяц.
type MonthPerformance struct {
	Month  string `json:"month"`
	Visits int    `json:"visits"`
	Income int64  `json:"income"`
}

// RecentPerformance группирует по месяцам визиты не старше months месяцев от now.
func RecentPerformance(customers []model.CustomerRecord, now time.Time, months int) []MonthPerformance {
	since := startOfDay(now).AddDate(0, -months, 0)

	byMonth := make(map[string]*MonthPerformance)
	for _, c := range customers {
		for _, v := range c.Visits() {
			d, ok := parseDate(v.Date, now.Location())
			if !ok || d.Before(since) {
				continue
			}
			key := d.Format(monthLayout)
			p, ok := byMonth[key]
			if !ok {
				p = &MonthPerformance{Month: key}
				byMonth[key] = p
			}
			p.Visits++
			p.Income += v.Price
		}
	}

	res := make([]MonthPerformance, 0, len(byMonth))
	for _, p := range byMonth {
		res = append(res, *p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Month < res[j].Month })
	return res
}
