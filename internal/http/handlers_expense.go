package http

import (
	"fmt"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	es, err := s.svc.Expenses.List(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newExpenseResponses(es)).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	var opts []services.FetchOption
	if r.URL.Query().Get("include") == "user" {
		opts = append(opts, services.WithUser())
	}
	e, err := s.svc.Expenses.Get(r.Context(), id, opts...)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newExpenseResponse(e)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	e, err := req.toExpense()
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	s.createExpense(w, r, e)
}

// handleCreateExpenseParams creates an expense from individual form or
// query parameters instead of a JSON document.
func (s *Server) handleCreateExpenseParams(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	for _, key := range []string{"description", "amount", "date", "userId", "categoryId"} {
		if !p.Has(key) {
			BadRequestError(fmt.Sprintf("missing parameter %q", key)).Write(w)
			return
		}
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	userID, err := parseID("userId", p.Get("userId"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	categoryID, err := parseID("categoryId", p.Get("categoryId"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}

	s.createExpense(w, r, core.Expense{
		Description: p.Get("description"),
		Amount:      amount,
		Date:        date,
		Location:    p.Get("location"),
		UserID:      userID,
		CategoryID:  categoryID,
	})
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request, e core.Expense) {
	created, err := s.svc.Expenses.Create(r.Context(), e)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Location(fmt.Sprintf("/api/expenses/%d", created.ID)).
		Body(newExpenseResponse(created)).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	patch, err := req.toExpense()
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	e, err := s.svc.Expenses.Update(r.Context(), id, patch)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newExpenseResponse(e)).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	if err := s.svc.Expenses.Delete(r.Context(), id); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]bool{"deleted": true}).Write(w)
}

func (s *Server) handleExpensesByUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	es, err := s.svc.Expenses.ListByUser(r.Context(), id)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newExpenseResponses(es)).Write(w)
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "categoryId")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	es, err := s.svc.Expenses.ListByCategory(r.Context(), id)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newExpenseResponses(es)).Write(w)
}
