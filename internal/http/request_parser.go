// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: JSON bodies, form bodies and path parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

// maxBodyBytes caps request bodies; every payload here is a handful of
// short fields.
const maxBodyBytes = 64 << 10

// RequestBodyParser reads a body that may be JSON or form encoded and
// exposes its top-level fields as strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	// Query parameters count as form values, as for @RequestParam style
	// endpoints.
	p.formData = r.URL.Query()
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: malformed JSON body", core.ErrInvalidArgument)
		}
		return p.err
	}

	form, err := url.ParseQuery(trimmed)
	if err != nil {
		p.err = fmt.Errorf("%w: malformed form body", core.ErrInvalidArgument)
		return p.err
	}
	for k, vs := range form {
		for _, v := range vs {
			p.formData.Add(k, v)
		}
	}
	return nil
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was present at all, even if empty.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		if v, ok := p.jsonData[key]; ok && v != nil {
			return true
		}
	}
	return p.formData != nil && p.formData.Has(key)
}

func (p *RequestBodyParser) isJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON scalar to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// decodeJSON strictly decodes a single JSON object from r into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", core.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", core.ErrInvalidArgument, err)
	}
	return nil
}

// pathID parses the named path value as a positive id.
func pathID(r *http.Request, name string) (int64, error) {
	return parseID(name, r.PathValue(name))
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", core.ErrInvalidArgument, name)
	}
	return id, nil
}

// pathMonth parses the {userId}/{year}/{month} triple of the report routes.
// Month range checking is left to the services.
func pathMonth(r *http.Request) (userID int64, ym core.YearMonth, err error) {
	if userID, err = pathID(r, "userId"); err != nil {
		return 0, core.YearMonth{}, err
	}
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		return 0, core.YearMonth{}, fmt.Errorf("%w: year must be an integer", core.ErrInvalidArgument)
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil {
		return 0, core.YearMonth{}, fmt.Errorf("%w: month must be an integer", core.ErrInvalidArgument)
	}
	return userID, core.YearMonth{Year: year, Month: month}, nil
}
