package main

import (
	"sort"
	"time"
)

// Analysis windows default to the trailing 30 days.
const defaultAnalysisWindow = 30 * 24 * time.Hour

// maxRecentTransactions caps the recent-transaction list in a context.
const maxRecentTransactions = 20

// uncategorizedLabel groups expenses that have no category assigned.
const uncategorizedLabel = "Uncategorized"

// CategoryExpense is the aggregated spend for one expense category.
type CategoryExpense struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// TransactionSummary is the projection of a transaction carried inside a
// FinancialContext.
type TransactionSummary struct {
	ID           int     `json:"id"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
	CategoryName string  `json:"categoryName,omitempty"`
	Source       string  `json:"source,omitempty"`
}

// DateRange is an inclusive ISO date window.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FinancialContext is a normalized summary of a transaction window. It is
// rebuilt per request and has no persisted identity.
type FinancialContext struct {
	TotalExpenses      float64              `json:"totalExpenses"`
	TotalIncome        float64              `json:"totalIncome"`
	Balance            float64              `json:"balance"`
	ExpensesByCategory []CategoryExpense    `json:"expensesByCategory"`
	RecentTransactions []TransactionSummary `json:"recentTransactions"`
	DateRange          DateRange            `json:"dateRange"`
}

// BuildFinancialContext aggregates a window of transactions into a
// FinancialContext. Pure function of its inputs: totals, a per-category
// expense breakdown sorted descending by amount (stable on ties), and the
// newest-first recent-transaction list capped at 20 entries.
func BuildFinancialContext(transactions []Transaction, start, end time.Time) FinancialContext {
	var totalIncome, totalExpenses float64

	type categoryAcc struct {
		expense CategoryExpense
		order   int
	}
	groups := make(map[string]*categoryAcc)
	groupOrder := 0

	for _, tx := range transactions {
		switch tx.Type {
		case TypeIncome:
			totalIncome += tx.Amount
		case TypeExpense:
			totalExpenses += tx.Amount

			name := uncategorizedLabel
			if tx.CategoryName != nil && *tx.CategoryName != "" {
				name = *tx.CategoryName
			}
			acc, ok := groups[name]
			if !ok {
				acc = &categoryAcc{expense: CategoryExpense{Category: name}, order: groupOrder}
				groups[name] = acc
				groupOrder++
			}
			acc.expense.Amount += tx.Amount
			acc.expense.Count++
		}
	}

	byCategory := make([]*categoryAcc, 0, len(groups))
	for _, acc := range groups {
		byCategory = append(byCategory, acc)
	}
	sort.SliceStable(byCategory, func(i, j int) bool {
		if byCategory[i].expense.Amount != byCategory[j].expense.Amount {
			return byCategory[i].expense.Amount > byCategory[j].expense.Amount
		}
		// ties keep first-seen input order
		return byCategory[i].order < byCategory[j].order
	})
	expensesByCategory := make([]CategoryExpense, 0, len(byCategory))
	for _, acc := range byCategory {
		expensesByCategory = append(expensesByCategory, acc.expense)
	}

	recent := make([]Transaction, len(transactions))
	copy(recent, transactions)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date > recent[j].Date
	})
	if len(recent) > maxRecentTransactions {
		recent = recent[:maxRecentTransactions]
	}

	recentSummaries := make([]TransactionSummary, 0, len(recent))
	for _, tx := range recent {
		s := TransactionSummary{
			ID:          tx.ID,
			Type:        tx.Type,
			Amount:      tx.Amount,
			Description: tx.Description,
			Date:        tx.Date,
		}
		if tx.CategoryName != nil {
			s.CategoryName = *tx.CategoryName
		}
		if tx.Source != nil {
			s.Source = *tx.Source
		}
		recentSummaries = append(recentSummaries, s)
	}

	return FinancialContext{
		TotalExpenses:      totalExpenses,
		TotalIncome:        totalIncome,
		Balance:            totalIncome - totalExpenses,
		ExpensesByCategory: expensesByCategory,
		RecentTransactions: recentSummaries,
		DateRange: DateRange{
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
		},
	}
}

// DefaultAnalysisRange returns the default trailing-30-day window ending now.
func DefaultAnalysisRange(now time.Time) (time.Time, time.Time) {
	return now.Add(-defaultAnalysisWindow), now
}
