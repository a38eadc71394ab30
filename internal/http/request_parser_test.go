package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		body     string
		wantJSON bool
		want     map[string]string
	}{
		{
			name:     "json body",
			target:   "/",
			body:     `{"email":" ada@example.com ","amount":12.5,"admin":true}`,
			wantJSON: true,
			want:     map[string]string{"email": "ada@example.com", "amount": "12.5", "admin": "true"},
		},
		{
			name:   "form body",
			target: "/",
			body:   "description=Lunch&amount=3,20",
			want:   map[string]string{"description": "Lunch", "amount": "3,20"},
		},
		{
			name:   "query parameters",
			target: "/?userId=7",
			want:   map[string]string{"userId": "7", "missing": ""},
		},
		{
			name:   "control characters are dropped",
			target: "/",
			body:   "description=a%00b",
			want:   map[string]string{"description": "ab"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			p := NewRequestBodyParser(req)
			require.NoError(t, p.Parse())
			assert.Equal(t, tt.wantJSON, p.isJSON())
			for k, v := range tt.want {
				assert.Equal(t, v, p.Get(k), k)
			}
		})
	}
}

func TestRequestBodyParserHas(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/?location=", strings.NewReader(`{"name":"x","nothing":null}`))
	p := NewRequestBodyParser(req)
	require.NoError(t, p.Parse())
	assert.True(t, p.Has("name"))
	assert.True(t, p.Has("location"))
	assert.False(t, p.Has("nothing"))
	assert.False(t, p.Has("email"))
}

func TestRequestBodyParserMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	p := NewRequestBodyParser(req)
	err := p.Parse()
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Equal(t, err, p.Parse(), "parse result is memoised")
}

func TestPathMonth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("userId", "4")
	req.SetPathValue("year", "2024")
	req.SetPathValue("month", "2")

	id, ym, err := pathMonth(req)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.Equal(t, core.YearMonth{Year: 2024, Month: 2}, ym)

	req.SetPathValue("userId", "0")
	_, _, err = pathMonth(req)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\tb", sanitizeInput("  a\tb\x07 "))
	assert.Equal(t, "", sanitizeInput("   "))
}
