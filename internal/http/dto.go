package http

import (
	"strings"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u userRequest) toUser() core.User {
	return core.User{Name: sanitizeInput(u.Name), Email: sanitizeInput(u.Email)}
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Admin: u.Admin}
}

func newUserResponses(us []core.User) []userResponse {
	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, newUserResponse(u))
	}
	return out
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newCategoryResponses(cs []core.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name})
	}
	return out
}

type idRef struct {
	ID int64 `json:"id"`
}

// expenseRequest accepts both flat ids and nested {"category":{"id":..}}
// references. Nested references win when both are present.
type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Location    string          `json:"location"`
	CategoryID  int64           `json:"categoryId"`
	UserID      int64           `json:"userId"`
	Category    *idRef          `json:"category"`
	User        *idRef          `json:"user"`
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	amount, err := core.MoneyFromDecimal(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
		Location:    sanitizeInput(req.Location),
		CategoryID:  req.CategoryID,
		UserID:      req.UserID,
	}
	if req.Category != nil {
		e.CategoryID = req.Category.ID
	}
	if req.User != nil {
		e.UserID = req.User.ID
	}
	return e, nil
}

type expenseResponse struct {
	ID          int64             `json:"id"`
	Description string            `json:"description"`
	Amount      string            `json:"amount"`
	Date        string            `json:"date"`
	Location    string            `json:"location"`
	UserID      int64             `json:"userId"`
	Category    *categoryResponse `json:"category,omitempty"`
	User        *userResponse     `json:"user,omitempty"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	out := expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.String(),
		Date:        e.Date.String(),
		Location:    e.Location,
		UserID:      e.UserID,
	}
	if e.Category != nil {
		out.Category = &categoryResponse{ID: e.Category.ID, Name: e.Category.Name}
	}
	if e.User != nil {
		u := newUserResponse(*e.User)
		out.User = &u
	}
	return out
}

func newExpenseResponses(es []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(es))
	for _, e := range es {
		out = append(out, newExpenseResponse(e))
	}
	return out
}

// summaryResponse renders category totals as fixed two-decimal strings.
func summaryResponse(summary map[string]core.Money) map[string]string {
	out := make(map[string]string, len(summary))
	for name, m := range summary {
		out[name] = m.String()
	}
	return out
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
