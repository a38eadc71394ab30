package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets"
	"expensetracker/internal/storage"
)

// ErrExportUnavailable is returned by ExportMonth when no exporter is
// configured.
var ErrExportUnavailable = errors.New("report export not configured")

// ReportService computes monthly aggregates over a user's expenses. Every
// query covers the month from its first to its last day inclusive. A user
// without expenses, or an unknown user, yields empty results.
type ReportService struct {
	expenses storage.ExpenseStore
	users    *UserService
	exporter sheets.ReportExporter
	options
}

// NewReportService wires the aggregation engine. exporter may be nil.
func NewReportService(expenses storage.ExpenseStore, users *UserService, exporter sheets.ReportExporter, opts ...Option) *ReportService {
	return &ReportService{
		expenses: expenses,
		users:    users,
		exporter: exporter,
		options:  buildOptions(applog.ComponentReport, opts),
	}
}

func (s *ReportService) inMonth(ctx context.Context, userID int64, ym core.YearMonth) ([]core.Expense, error) {
	if err := ym.Validate(); err != nil {
		return nil, err
	}
	es, err := s.expenses.FindExpensesByUserIDAndDateBetween(ctx, userID, ym.FirstDay(), ym.LastDay())
	if err != nil {
		return nil, fmt.Errorf("load expenses for %s: %w", ym, err)
	}
	return es, nil
}

// MonthlySummary sums amounts per category name. Categories without
// expenses in the month are absent.
func (s *ReportService) MonthlySummary(ctx context.Context, userID int64, ym core.YearMonth) (map[string]core.Money, error) {
	es, err := s.inMonth(ctx, userID, ym)
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	return core.SummarizeByCategory(es), nil
}

// MonthlyTotal returns zero when nothing matches.
func (s *ReportService) MonthlyTotal(ctx context.Context, userID int64, ym core.YearMonth) (core.Money, error) {
	es, err := s.inMonth(ctx, userID, ym)
	if err != nil {
		return core.Money{}, fmt.Errorf("monthly total: %w", err)
	}
	return core.Total(es), nil
}

// MonthlyExpenses returns the raw expenses behind the aggregates.
func (s *ReportService) MonthlyExpenses(ctx context.Context, userID int64, year, month int) ([]core.Expense, error) {
	ym, err := core.NewYearMonth(year, month)
	if err != nil {
		return nil, fmt.Errorf("monthly expenses: %w", err)
	}
	es, err := s.inMonth(ctx, userID, ym)
	if err != nil {
		return nil, fmt.Errorf("monthly expenses: %w", err)
	}
	return es, nil
}

func (s *ReportService) MonthOverview(ctx context.Context, userID int64, ym core.YearMonth) (core.MonthOverview, error) {
	es, err := s.inMonth(ctx, userID, ym)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("month overview: %w", err)
	}
	return core.BuildMonthOverview(ym, es), nil
}

// ExportMonth writes the user's month to the configured spreadsheet. Unlike
// the read queries it fails with core.ErrNotFound for an unknown user.
func (s *ReportService) ExportMonth(ctx context.Context, userID int64, ym core.YearMonth) (string, error) {
	if s.exporter == nil {
		return "", ErrExportUnavailable
	}
	if err := ym.Validate(); err != nil {
		return "", fmt.Errorf("export month: %w", err)
	}

	var (
		user core.User
		es   []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.Get(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		es, err = s.inMonth(gctx, userID, ym)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("export month: %w", err)
	}

	ref, err := s.exporter.ExportMonth(ctx, sheets.MonthReport{
		User:     user,
		Overview: core.BuildMonthOverview(ym, es),
		Expenses: es,
	})
	if err != nil {
		return "", fmt.Errorf("export month: %w", err)
	}
	fields := applog.NewFields().WithOperation(applog.OpExport).WithMonth(ym.Year, ym.Month)
	fields[applog.FieldUserID] = userID
	fields[applog.FieldSheetsRef] = ref
	s.logger.InfoContext(ctx, "Monthly report exported", fields.ToSlice()...)
	return ref, nil
}
