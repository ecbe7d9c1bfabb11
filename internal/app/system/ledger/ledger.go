// Package ledger computes client-selectable windows and summary aggregates
// over a household's transactions. Everything here is pure: the live feed
// hands over full snapshots and these helpers slice them.
package ledger

import (
	"sort"
	"strings"

	"github.com/exodologio/exodologio/internal/domain/models"
)

// InMonth reports whether the transaction's date falls in the given
// "YYYY-MM" month.
func InMonth(date, month string) bool {
	return month != "" && strings.HasPrefix(date, month)
}

// InRange reports whether date lies in [start, end] inclusive. Empty bounds
// are open. ISO "YYYY-MM-DD" strings compare lexicographically in calendar
// order, so plain string comparison is correct.
func InRange(date, start, end string) bool {
	if date == "" {
		return false
	}
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}

// FilterMonth returns the transactions dated within month.
func FilterMonth(txs []models.Transaction, month string) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if InMonth(t.Date, month) {
			out = append(out, t)
		}
	}
	return out
}

// FilterRange returns the transactions dated within [start, end] inclusive.
func FilterRange(txs []models.Transaction, start, end string) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if InRange(t.Date, start, end) {
			out = append(out, t)
		}
	}
	return out
}

// Summary holds the derived aggregates for a window.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
	Count   int     `json:"count"`
}

// Summarize sums income and expense amounts over the window.
func Summarize(txs []models.Transaction) Summary {
	var s Summary
	for _, t := range txs {
		if t.Type == models.TypeIncome {
			s.Income += t.Amount
		} else {
			s.Expense += t.Amount
		}
	}
	s.Net = s.Income - s.Expense
	s.Count = len(txs)
	return s
}

// Total is a (label, amount) pair used by the per-category breakdowns.
type Total struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// ExpenseByCategory groups expense amounts by category, largest first.
// Uncategorized entries are grouped under the empty string; callers decide
// how to label it.
func ExpenseByCategory(txs []models.Transaction) []Total {
	sums := map[string]float64{}
	for _, t := range txs {
		if t.Type != models.TypeExpense {
			continue
		}
		key := strings.TrimSpace(t.ExpenseCategory)
		sums[key] += t.Amount
	}
	return sortTotals(sums)
}

// IncomeBySource groups income amounts by resolved source (the custom text
// when the source is "other"), largest first.
func IncomeBySource(txs []models.Transaction) []Total {
	sums := map[string]float64{}
	for _, t := range txs {
		if t.Type != models.TypeIncome {
			continue
		}
		key := strings.TrimSpace(t.IncomeSource)
		if key == models.IncomeSourceOtherLabel {
			if other := strings.TrimSpace(t.IncomeSourceOther); other != "" {
				key = other
			}
		}
		sums[key] += t.Amount
	}
	return sortTotals(sums)
}

func sortTotals(sums map[string]float64) []Total {
	out := make([]Total, 0, len(sums))
	for name, total := range sums {
		out = append(out, Total{Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthOptions returns the distinct months present in txs, newest first.
func MonthOptions(txs []models.Transaction) []string {
	seen := map[string]bool{}
	for _, t := range txs {
		if t.Date == "" {
			continue
		}
		seen[models.MonthOf(t.Date)] = true
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}
