package core

import (
	"fmt"
	"sort"
	"time"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Total      Money
	ByCategory []CategoryAmount
}

// NewYearMonth validates month and returns the YearMonth. Months outside
// 1-12 fail instead of rolling into a neighbouring year.
func NewYearMonth(year, month int) (YearMonth, error) {
	ym := YearMonth{Year: year, Month: month}
	if err := ym.Validate(); err != nil {
		return YearMonth{}, err
	}
	return ym, nil
}

func (ym YearMonth) Validate() error {
	if ym.Month < 1 || ym.Month > 12 {
		return fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidArgument, ym.Month)
	}
	return nil
}

// FirstDay returns the first calendar day of the month.
func (ym YearMonth) FirstDay() Date {
	return NewDate(ym.Year, ym.Month, 1)
}

// LastDay returns the last calendar day of the month.
func (ym YearMonth) LastDay() Date {
	return Date{Time: time.Date(ym.Year, time.Month(ym.Month)+1, 0, 0, 0, 0, 0, time.UTC)}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// SummarizeByCategory sums amounts per category name. Categories without
// expenses are absent from the result.
func SummarizeByCategory(expenses []Expense) map[string]Money {
	out := make(map[string]Money)
	for _, e := range expenses {
		name := e.CategoryName()
		out[name] = out[name].Add(e.Amount)
	}
	return out
}

// Total sums the amounts of all expenses. An empty slice yields zero.
func Total(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// BuildMonthOverview aggregates expenses into a MonthOverview with
// categories ordered by amount, largest first, then by name.
func BuildMonthOverview(ym YearMonth, expenses []Expense) MonthOverview {
	sums := SummarizeByCategory(expenses)
	ov := MonthOverview{
		Year:       ym.Year,
		Month:      ym.Month,
		Total:      Total(expenses),
		ByCategory: make([]CategoryAmount, 0, len(sums)),
	}
	for name, amount := range sums {
		ov.ByCategory = append(ov.ByCategory, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(ov.ByCategory, func(i, j int) bool {
		a, b := ov.ByCategory[i], ov.ByCategory[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Name < b.Name
	})
	return ov
}

