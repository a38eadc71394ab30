// Package memory is a ReportExporter that keeps exported reports in
// process, for tests of code that exports.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	reports []sheets.MonthReport
}

func New() *Exporter {
	return &Exporter{}
}

// ExportMonth records the report and returns a synthetic reference.
func (e *Exporter) ExportMonth(_ context.Context, report sheets.MonthReport) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, report)
	return fmt.Sprintf("mem:%d", len(e.reports)), nil
}

// Reports returns a copy of everything exported so far.
func (e *Exporter) Reports() []sheets.MonthReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.MonthReport(nil), e.reports...)
}
