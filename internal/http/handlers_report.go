package http

import (
	"net/http"

	"expensetracker/internal/core"
)

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ym, err := pathMonth(r)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	summary, err := s.svc.Reports.MonthlySummary(r.Context(), userID, ym)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(summaryResponse(summary)).Write(w)
}

func (s *Server) handleMonthlyTotal(w http.ResponseWriter, r *http.Request) {
	userID, ym, err := pathMonth(r)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	total, err := s.svc.Reports.MonthlyTotal(r.Context(), userID, ym)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"total": total.String()}).Write(w)
}

func (s *Server) handleMonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ym, err := pathMonth(r)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	es, err := s.svc.Reports.MonthlyExpenses(r.Context(), userID, ym.Year, ym.Month)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newExpenseResponses(es)).Write(w)
}

type overviewResponse struct {
	Month      string              `json:"month"`
	Total      string              `json:"total"`
	ByCategory []categoryAmountDTO `json:"byCategory"`
}

type categoryAmountDTO struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

func newOverviewResponse(ov core.MonthOverview) overviewResponse {
	out := overviewResponse{
		Month:      core.YearMonth{Year: ov.Year, Month: ov.Month}.String(),
		Total:      ov.Total.String(),
		ByCategory: make([]categoryAmountDTO, 0, len(ov.ByCategory)),
	}
	for _, c := range ov.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryAmountDTO{Name: c.Name, Amount: c.Amount.String()})
	}
	return out
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	userID, ym, err := pathMonth(r)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	ov, err := s.svc.Reports.MonthOverview(r.Context(), userID, ym)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newOverviewResponse(ov)).Write(w)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	userID, ym, err := pathMonth(r)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	ref, err := s.svc.Reports.ExportMonth(r.Context(), userID, ym)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"ref": ref, "month": ym.String()}).Write(w)
}
