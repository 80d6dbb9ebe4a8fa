// Package engine derives summary views from an expense snapshot.
//
// Every function is pure: it reads the snapshot handed to it, never mutates
// it, and recomputes from scratch on each call so results can never go stale
// behind a mutation. Sums are accumulated in integer cents.
package engine

import (
	"fmt"
	"time"

	"spendwise/internal/core"
)

// startOfDay returns local midnight for the instant's calendar day.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns local midnight of the most recent Sunday, treating
// Sunday itself as the week start.
func startOfWeek(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

// startOfMonth returns local midnight of the first day of the instant's
// calendar month.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TodayTotal sums expenses dated within the half-open interval
// [midnight, midnight+24h) of now's local calendar day. A record dated
// exactly at midnight counts; one dated at the next midnight does not.
func TodayTotal(now time.Time, expenses []core.Expense) core.Money {
	start := startOfDay(now)
	end := start.AddDate(0, 0, 1)
	return sumBetween(expenses, start, end)
}

// WeekTotal sums expenses dated on or after the start of the current
// Sunday-based week, with no upper bound.
func WeekTotal(now time.Time, expenses []core.Expense) core.Money {
	return sumSince(expenses, startOfWeek(now))
}

// MonthTotal sums expenses dated on or after the first day of the current
// calendar month, with no upper bound.
func MonthTotal(now time.Time, expenses []core.Expense) core.Money {
	return sumSince(expenses, startOfMonth(now))
}

// Total sums the whole snapshot.
func Total(expenses []core.Expense) core.Money {
	var cents int64
	for _, e := range expenses {
		cents += e.Amount.Cents
	}
	return core.Money{Cents: cents}
}

// CategoryTotals maps each category present in the snapshot to its summed
// amount. Categories with no records are absent, not zero.
func CategoryTotals(expenses []core.Expense) map[core.Category]core.Money {
	totals := make(map[core.Category]core.Money)
	for _, e := range expenses {
		t := totals[e.Category]
		t.Cents += e.Amount.Cents
		totals[e.Category] = t
	}
	return totals
}

// MonthlySeries maps a "YYYY-MM" key to the summed amount for that calendar
// month, across the full record history. Keys are derived from the record's
// date in UTC, matching how the server-side gateway groups stored dates.
func MonthlySeries(expenses []core.Expense) map[string]core.Money {
	series := make(map[string]core.Money)
	for _, e := range expenses {
		d := e.Date.UTC()
		key := fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
		t := series[key]
		t.Cents += e.Amount.Cents
		series[key] = t
	}
	return series
}

func sumSince(expenses []core.Expense, start time.Time) core.Money {
	var cents int64
	for _, e := range expenses {
		if !e.Date.Before(start) {
			cents += e.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}

func sumBetween(expenses []core.Expense, start, end time.Time) core.Money {
	var cents int64
	for _, e := range expenses {
		if !e.Date.Before(start) && e.Date.Before(end) {
			cents += e.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}
