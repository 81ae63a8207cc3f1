package report

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mmeshcher/suraksha-service/internal/model"
	"github.com/mmeshcher/suraksha-service/internal/stats"
)

var reportLanguage = language.MustParse("en-IN")

// WriteText записывает текстовый отчёт о доходах на момент now.
// Суммы форматируются с разделителями разрядов индийской локали.
func WriteText(w io.Writer, customers []model.CustomerRecord, now time.Time) error {
	p := message.NewPrinter(reportLanguage)
	bw := bufio.NewWriter(w)

	st := stats.Compute(customers, now)

	p.Fprintf(bw, "Suraksha Service report\n")
	p.Fprintf(bw, "Generated: %s\n\n", now.Format("02 Jan 2006 15:04"))

	p.Fprintf(bw, "Income\n")
	p.Fprintf(bw, "  Total:      Rs. %d\n", st.TotalIncome)
	p.Fprintf(bw, "  This month: Rs. %d\n", st.MonthlyIncome[now.Format("2006-01")])
	p.Fprintf(bw, "  This week:  Rs. %d\n", st.WeeklyIncome)
	p.Fprintf(bw, "  Today:      Rs. %d\n\n", st.DailyIncome)

	p.Fprintf(bw, "Monthly income\n")
	for _, m := range stats.MonthlySeries(st.MonthlyIncome) {
		p.Fprintf(bw, "  %s  Rs. %d\n", m.Month, m.Income)
	}
	p.Fprintf(bw, "\n")

	p.Fprintf(bw, "Services\n")
	for _, s := range stats.ServiceTypeBreakdown(customers) {
		p.Fprintf(bw, "  %-6s %d visits  Rs. %d\n", s.ServiceType, s.Visits, s.Income)
	}
	p.Fprintf(bw, "\n")

	p.Fprintf(bw, "Customers (%d)\n", len(customers))
	for _, c := range customers {
		next := c.NextServiceDate
		if next == "" {
			next = "-"
		}
		p.Fprintf(bw, "  %s | %s | %s | last %s | next %s | visits %d\n",
			c.Name, c.Phone, c.ServiceLabel(), c.ServiceDate, next, len(c.History)+1)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
