package handler

import (
	"bytes"
	"net/http"
)

// GetStats возвращает показатели дохода и помесячный ряд.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Stats())
}

// GetDashboard возвращает сводку для главного экрана.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Dashboard())
}

// GetServiceTypes возвращает распределение визитов по категориям услуг.
func (h *Handler) GetServiceTypes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.ServiceTypes())
}

// GetPerformance возвращает помесячную динамику за последние months месяцев.
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Performance(months))
}

// GetUpcoming возвращает клиентов, чьё обслуживание наступает в ближайшие days дней.
func (h *Handler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Upcoming(days))
}

// ExportCSV отдаёт все визиты в формате CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(&buf); err != nil {
		h.writeError(w, "export csv error", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="customers.csv"`)
	_, _ = w.Write(buf.Bytes())
}

// ExportReport отдаёт текстовый отчёт о доходах.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportReport(&buf); err != nil {
		h.writeError(w, "export report error", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
