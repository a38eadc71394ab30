package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestJSONLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Writer: &buf, Component: ComponentStorage})

	l.InfoContext(context.Background(), "hello", FieldUserID, 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, ComponentStorage, rec[FieldComponent])
	assert.EqualValues(t, 7, rec[FieldUserID])
}

func TestMiddlewareStoresTaggedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Writer: &buf, Component: ComponentHTTP})

	h := Middleware(base, func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec[FieldRequestID])
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithOperation(OpCreate).WithExpense(1, 2, 3, 450).WithMonth(2024, 3)
	assert.Equal(t, OpCreate, f[FieldOperation])
	assert.Equal(t, int64(450), f[FieldAmountCents])
	assert.Len(t, f.ToSlice(), len(f)*2)
}
