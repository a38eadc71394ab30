package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// MonthReport is everything a spreadsheet export of one user's month holds.
type MonthReport struct {
	User     core.User
	Overview core.MonthOverview
	Expenses []core.Expense
}

// ReportExporter writes a monthly report to an external spreadsheet and
// returns a reference to the written range.
type ReportExporter interface {
	ExportMonth(ctx context.Context, report MonthReport) (ref string, err error)
}
