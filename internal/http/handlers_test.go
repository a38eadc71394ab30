package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reg := decode[authResponse](t, rec)
	assert.Equal(t, "User registered successfully", reg.Message)
	assert.NotZero(t, reg.User.ID)

	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{"name": "Other", "email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists", decode[messageResponse](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[authResponse](t, rec)
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, reg.User.ID, login.User.ID)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"name": "Eve", "email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[messageResponse](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email and name are required", decode[messageResponse](t, rec).Message)
}

func TestUserEndpoints(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "Ada", "ada@example.com")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", u.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u, decode[userResponse](t, rec))

	rec = env.do(t, http.MethodGet, "/api/users/exists/email/ada@example.com", nil)
	assert.Equal(t, map[string]bool{"exists": true}, decode[map[string]bool](t, rec))
	rec = env.do(t, http.MethodGet, "/api/users/exists/email/nobody@example.com", nil)
	assert.Equal(t, map[string]bool{"exists": false}, decode[map[string]bool](t, rec))

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", u.ID), map[string]string{"name": "Ada L.", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada L.", decode[userResponse](t, rec).Name)

	rec = env.do(t, http.MethodPut, "/api/users/999", map[string]string{"name": "Ghost", "email": "g@example.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/users", nil)
	assert.Len(t, decode[[]userResponse](t, rec), 1)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", u.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", u.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", u.ID), nil).Code)
}

func TestBadRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"non numeric id", http.MethodGet, "/api/users/abc", nil},
		{"negative id", http.MethodGet, "/api/expenses/-1", nil},
		{"malformed json", http.MethodPost, "/api/users", "{not json"},
		{"empty body", http.MethodPost, "/api/categories", ""},
		{"missing name", http.MethodPost, "/api/users", map[string]string{"email": "x@example.com"}},
		{"bad year", http.MethodGet, "/api/expenses/total/1/abcd/3", nil},
		{"month 13", http.MethodGet, "/api/expenses/total/1/2024/13", nil},
		{"month 0", http.MethodGet, "/api/expenses/summary/1/2024/0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[messageResponse](t, rec).Message)
		})
	}
}

func TestCategoryDeletePermission(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "Ada", "ada@example.com")
	_, err := env.svc.Users.SetAdmin(context.Background(), admin.ID, true)
	require.NoError(t, err)
	env.createUser(t, "Bob", "bob@example.com")
	c := env.createCategory(t, "Food")
	e := env.createExpense(t, admin.ID, c.ID, `"10.00"`, "2024-03-05")

	path := fmt.Sprintf("/api/categories/%d", c.ID)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, path, nil).Code)

	rec := env.do(t, http.MethodDelete, path+"?userEmail=bob@example.com", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decode[messageResponse](t, rec).Message, "only administrators")
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, nil).Code)

	rec = env.do(t, http.MethodDelete, path+"?userEmail=nobody@example.com", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[messageResponse](t, rec).Message, "user not found")

	rec = env.do(t, http.MethodDelete, path+"?userEmail=ada@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"deleted": true}, decode[map[string]bool](t, rec))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/%d", e.ID), nil).Code)
}

func TestCategoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCategory(t, "Food")

	rec := env.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Food"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/categories/exists/name/Food", nil)
	assert.Equal(t, map[string]bool{"exists": true}, decode[map[string]bool](t, rec))

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/categories/%d", c.ID), map[string]string{"name": "Groceries"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Groceries", decode[categoryResponse](t, rec).Name)

	rec = env.do(t, http.MethodGet, "/api/categories", nil)
	assert.Equal(t, []categoryResponse{{ID: c.ID, Name: "Groceries"}}, decode[[]categoryResponse](t, rec))
}

func TestExpenseEndpoints(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "Ada", "ada@example.com")
	food := env.createCategory(t, "Food")
	transit := env.createCategory(t, "Transit")

	e := env.createExpense(t, u.ID, food.ID, "12.345", "2024-03-05")
	assert.Equal(t, "12.35", e.Amount, "amounts round half up to cents")
	require.NotNil(t, e.Category)
	assert.Equal(t, "Food", e.Category.Name)
	assert.Nil(t, e.User)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/%d?include=user", e.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	withUser := decode[expenseResponse](t, rec)
	require.NotNil(t, withUser.User)
	assert.Equal(t, "ada@example.com", withUser.User.Email)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/expenses/%d", e.ID), map[string]any{
		"description": "Train",
		"amount":      "7",
		"date":        "2024-03-06",
		"categoryId":  transit.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[expenseResponse](t, rec)
	assert.Equal(t, "7.00", updated.Amount)
	assert.Equal(t, "Transit", updated.Category.Name)
	assert.Equal(t, u.ID, updated.UserID)

	rec = env.do(t, http.MethodPost, "/api/expenses", map[string]any{
		"description": "x", "amount": "1", "date": "2024-03-05", "userId": 999, "categoryId": food.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown user reference")

	rec = env.do(t, http.MethodPost, "/api/expenses", map[string]any{
		"description": "x", "amount": "-1", "date": "2024-03-05", "userId": u.ID, "categoryId": food.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "negative amount")

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/user/%d", u.ID), nil)
	assert.Len(t, decode[[]expenseResponse](t, rec), 1)
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/category/%d", food.ID), nil)
	assert.Empty(t, decode[[]expenseResponse](t, rec))
	rec = env.do(t, http.MethodGet, "/api/expenses", nil)
	assert.Len(t, decode[[]expenseResponse](t, rec), 1)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", e.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", e.ID), nil).Code)
}

func TestExpenseAmountExponentRejected(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "Ada", "ada@example.com")
	c := env.createCategory(t, "Food")

	for _, amount := range []string{"1e100000000", "1e-100000000"} {
		start := time.Now()
		rec := env.do(t, http.MethodPost, "/api/expenses", map[string]any{
			"description": "x", "amount": json.Number(amount), "date": "2024-03-05", "userId": u.ID, "categoryId": c.ID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %s", amount)
		assert.Less(t, time.Since(start), time.Second, "amount %s", amount)

		rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/expenses/create?description=x&amount=%s&date=2024-03-05&userId=%d&categoryId=%d", amount, u.ID, c.ID), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %s", amount)
	}
}

func TestCreateExpenseWithParams(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "Ada", "ada@example.com")
	c := env.createCategory(t, "Food")

	form := fmt.Sprintf("description=Lunch&amount=12,50&date=2024-03-05&location=Milan&userId=%d&categoryId=%d", u.ID, c.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/expenses/create", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decode[expenseResponse](t, rec)
	assert.Equal(t, "12.50", e.Amount)
	assert.Equal(t, "Milan", e.Location)
	assert.Equal(t, fmt.Sprintf("/api/expenses/%d", e.ID), rec.Header().Get("Location"))

	// Query parameters work as well.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/expenses/create?description=Tea&amount=2&date=2024-03-06&userId=%d&categoryId=%d", u.ID, c.ID), nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/expenses/create?description=Tea&amount=2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[messageResponse](t, rec).Message, "date")
}

func TestMonthlyReports(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "Ada", "ada@example.com")
	food := env.createCategory(t, "Food")
	transit := env.createCategory(t, "Transit")
	env.createExpense(t, u.ID, food.ID, `"10.00"`, "2024-03-05")
	env.createExpense(t, u.ID, food.ID, `"5.00"`, "2024-03-31")
	env.createExpense(t, u.ID, transit.ID, `"7.00"`, "2024-03-01")
	env.createExpense(t, u.ID, food.ID, `"100.00"`, "2024-04-01")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/summary/%d/2024/3", u.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"Food": "15.00", "Transit": "7.00"}, decode[map[string]string](t, rec))

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/total/%d/2024/3", u.ID), nil)
	assert.Equal(t, map[string]string{"total": "22.00"}, decode[map[string]string](t, rec))

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/total/%d/2024/5", u.ID), nil)
	assert.Equal(t, map[string]string{"total": "0.00"}, decode[map[string]string](t, rec))

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/monthly/%d/2024/3", u.ID), nil)
	monthly := decode[[]expenseResponse](t, rec)
	require.Len(t, monthly, 3)
	assert.Equal(t, "2024-03-01", monthly[0].Date)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/expenses/overview/%d/2024/3", u.ID), nil)
	ov := decode[overviewResponse](t, rec)
	assert.Equal(t, "22.00", ov.Total)
	require.Len(t, ov.ByCategory, 2)
	assert.Equal(t, "Food", ov.ByCategory[0].Name)
}

func TestExportReport(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "Ada", "ada@example.com")
	c := env.createCategory(t, "Food")
	env.createExpense(t, u.ID, c.ID, `"3.00"`, "2024-03-05")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/reports/export/%d/2024/3", u.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "mem:1", decode[map[string]string](t, rec)["ref"])
	assert.Len(t, env.exporter.Reports(), 1)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/reports/export/999/2024/3", nil).Code)

	noExport := newTestEnvWith(t, false, 1000)
	rec = noExport.do(t, http.MethodPost, "/api/reports/export/1/2024/3", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
