package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer() *SavingsAnalyzer {
	return NewSavingsAnalyzer(DefaultAnalyzerConfig())
}

func TestAnalyzeEmptyContext(t *testing.T) {
	t.Parallel()

	analysis := newTestAnalyzer().Analyze(FinancialContext{})

	assert.Empty(t, analysis.Insights)
	assert.Equal(t, 0.0, analysis.TotalPotentialSavings)
	assert.Equal(t, 100, analysis.HealthScore)
	assert.NotEmpty(t, analysis.MotivationalMessage)
}

func TestAnalyzeDeficit(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		TotalIncome:   1_000_000,
		TotalExpenses: 1_200_000,
		Balance:       -200_000,
	}

	analysis := newTestAnalyzer().Analyze(fc)

	require.Len(t, analysis.Insights, 1)
	in := analysis.Insights[0]
	assert.Equal(t, InsightWarning, in.Type)
	assert.Equal(t, PriorityHigh, in.Priority)
	assert.Equal(t, "Expenses exceed income", in.Title)
	assert.Equal(t, 200_000.0, in.Impact)
	assert.True(t, in.Actionable)

	assert.Equal(t, 200_000.0, analysis.TotalPotentialSavings)
	// 100 - 40 (deficit) - 30 (ratio > 1) - 15 (one high warning)
	assert.Equal(t, 15, analysis.HealthScore)
	assert.Less(t, analysis.HealthScore, 70)
}

func TestAnalyzeCategoryConcentration(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		TotalIncome:   1_000_000,
		TotalExpenses: 850_000,
		Balance:       150_000,
		ExpensesByCategory: []CategoryExpense{
			{Category: "Entertainment", Amount: 450_000, Count: 5},
			{Category: "Food", Amount: 250_000, Count: 8},
			{Category: "Transport", Amount: 150_000, Count: 4},
		},
	}

	analysis := newTestAnalyzer().Analyze(fc)

	var entertainment *SavingsInsight
	for i := range analysis.Insights {
		if analysis.Insights[i].Category == "Entertainment" {
			entertainment = &analysis.Insights[i]
		}
	}
	require.NotNil(t, entertainment, "expected an Entertainment insight")
	assert.Equal(t, InsightWarning, entertainment.Type)
	assert.Equal(t, PriorityHigh, entertainment.Priority)
	// 450,000 - 850,000*0.3
	assert.InDelta(t, 195_000, entertainment.Impact, 0.01)

	// Ratio warning (85%) also fires: impact 850,000 - 700,000.
	assert.InDelta(t, 150_000+195_000, analysis.TotalPotentialSavings, 0.01)
	// 100 - 10 (ratio > 0.8) - 15*2 (two high warnings)
	assert.Equal(t, 60, analysis.HealthScore)
}

func TestAnalyzeHealthySavings(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		TotalIncome:   1_000_000,
		TotalExpenses: 550_000,
		Balance:       450_000,
	}

	analysis := newTestAnalyzer().Analyze(fc)

	require.Len(t, analysis.Insights, 2)
	for _, in := range analysis.Insights {
		assert.Equal(t, InsightSuccess, in.Type)
		assert.Equal(t, PriorityLow, in.Priority)
		assert.False(t, in.Actionable)
	}

	assert.Equal(t, 0.0, analysis.TotalPotentialSavings)
	assert.GreaterOrEqual(t, analysis.HealthScore, 80)
}

func TestAnalyzeLatteFactor(t *testing.T) {
	t.Parallel()

	recent := []TransactionSummary{
		{ID: 1, Type: TypeExpense, Amount: 15_000, Description: "Coffee", Date: "2026-08-01"},
		{ID: 2, Type: TypeExpense, Amount: 15_000, Description: "Snack", Date: "2026-08-03"},
		{ID: 3, Type: TypeExpense, Amount: 15_000, Description: "Bakery", Date: "2026-08-05"},
		{ID: 4, Type: TypeExpense, Amount: 15_000, Description: "Juice", Date: "2026-08-08"},
		{ID: 5, Type: TypeExpense, Amount: 15_000, Description: "Candy", Date: "2026-08-10"},
		{ID: 6, Type: TypeExpense, Amount: 15_000, Description: "Arepa", Date: "2026-08-12"},
	}
	fc := FinancialContext{
		TotalExpenses:      90_000,
		Balance:            -90_000,
		RecentTransactions: recent,
	}

	analysis := newTestAnalyzer().Analyze(fc)

	require.Len(t, analysis.Insights, 1)
	in := analysis.Insights[0]
	assert.Equal(t, InsightInfo, in.Type)
	assert.Equal(t, PriorityLow, in.Priority)
	assert.InDelta(t, 27_000, in.Impact, 0.01)

	// info insights never contribute to the savings total
	assert.Equal(t, 0.0, analysis.TotalPotentialSavings)
}

func TestAnalyzeRecurringExpenses(t *testing.T) {
	t.Parallel()

	recent := []TransactionSummary{
		{ID: 1, Type: TypeExpense, Amount: 35_000, Description: "Netflix", Date: "2026-08-01"},
		{ID: 2, Type: TypeExpense, Amount: 35_000, Description: "Netflix", Date: "2026-08-08"},
		{ID: 3, Type: TypeExpense, Amount: 35_000, Description: "Netflix", Date: "2026-08-15"},
		{ID: 4, Type: TypeExpense, Amount: 60_000, Description: "Gym", Date: "2026-08-02"},
		{ID: 5, Type: TypeExpense, Amount: 60_000, Description: "Gym", Date: "2026-08-09"},
		{ID: 6, Type: TypeExpense, Amount: 60_000, Description: "Gym", Date: "2026-08-16"},
		{ID: 7, Type: TypeExpense, Amount: 40_000, Description: "Cinema", Date: "2026-08-20"},
		{ID: 8, Type: TypeExpense, Amount: 40_000, Description: "Cinema", Date: "2026-08-21"},
		{ID: 9, Type: TypeExpense, Amount: 40_000, Description: "Cinema", Date: "2026-08-22"},
		{ID: 10, Type: TypeExpense, Amount: 500_000, Description: "", Date: "2026-08-23"},
	}
	fc := FinancialContext{
		TotalExpenses:      785_000,
		Balance:            -785_000,
		RecentTransactions: recent,
	}

	analysis := newTestAnalyzer().Analyze(fc)

	// Three groups hit the frequency floor; only the top two by amount fire.
	var recurring []SavingsInsight
	for _, in := range analysis.Insights {
		if in.Type == InsightOpportunity {
			recurring = append(recurring, in)
		}
	}
	require.Len(t, recurring, 2)
	assert.Equal(t, "Frequent expense: Gym", recurring[0].Title)
	assert.InDelta(t, 180_000*0.15, recurring[0].Impact, 0.01)
	assert.Equal(t, "Frequent expense: Netflix", recurring[1].Title)
	assert.InDelta(t, 105_000*0.15, recurring[1].Impact, 0.01)
}

func TestAnalyzeSavingsRateGoal(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		TotalIncome:   2_000_000,
		TotalExpenses: 1_900_000,
		Balance:       100_000, // 5% savings rate
	}

	analysis := newTestAnalyzer().Analyze(fc)

	var goal *SavingsInsight
	for i := range analysis.Insights {
		if analysis.Insights[i].Title == "Recommended savings goal" {
			goal = &analysis.Insights[i]
		}
	}
	require.NotNil(t, goal)
	assert.Equal(t, InsightOpportunity, goal.Type)
	assert.Equal(t, PriorityMedium, goal.Priority)
	// 2,000,000*0.10 - 100,000
	assert.InDelta(t, 100_000, goal.Impact, 0.01)
}

func TestAnalyzeTruncatesToFiveSorted(t *testing.T) {
	t.Parallel()

	recent := []TransactionSummary{
		{ID: 1, Type: TypeExpense, Amount: 35_000, Description: "Netflix", Date: "2026-08-01"},
		{ID: 2, Type: TypeExpense, Amount: 35_000, Description: "Netflix", Date: "2026-08-08"},
		{ID: 3, Type: TypeExpense, Amount: 35_000, Description: "Netflix", Date: "2026-08-15"},
		{ID: 4, Type: TypeExpense, Amount: 10_000, Description: "Coffee 1", Date: "2026-08-02"},
		{ID: 5, Type: TypeExpense, Amount: 10_000, Description: "Coffee 2", Date: "2026-08-03"},
		{ID: 6, Type: TypeExpense, Amount: 10_000, Description: "Coffee 3", Date: "2026-08-04"},
		{ID: 7, Type: TypeExpense, Amount: 10_000, Description: "Coffee 4", Date: "2026-08-05"},
		{ID: 8, Type: TypeExpense, Amount: 10_000, Description: "Coffee 5", Date: "2026-08-06"},
	}
	fc := FinancialContext{
		TotalIncome:   1_000_000,
		TotalExpenses: 950_000,
		Balance:       50_000,
		ExpensesByCategory: []CategoryExpense{
			{Category: "Rent", Amount: 400_000, Count: 1},
			{Category: "Groceries", Amount: 310_000, Count: 6},
			{Category: "Transport", Amount: 240_000, Count: 5},
		},
		RecentTransactions: recent,
	}

	analysis := newTestAnalyzer().Analyze(fc)

	// Fired: ratio warning, Rent warning, Groceries opportunity, Netflix
	// opportunity, savings-goal opportunity, latte info. Six insights, the
	// low-priority info falls off the cap.
	require.Len(t, analysis.Insights, 5)
	for i := 1; i < len(analysis.Insights); i++ {
		assert.LessOrEqual(t,
			priorityWeight(analysis.Insights[i-1].Priority),
			priorityWeight(analysis.Insights[i].Priority),
			"insights must be ordered high to low")
	}
	assert.Equal(t, PriorityHigh, analysis.Insights[0].Priority)
	assert.Equal(t, PriorityHigh, analysis.Insights[1].Priority)

	// Savings total counts every fired warning/opportunity, including any
	// that the 5-item cap dropped, and never the info insight.
	// ratio: 950,000-700,000; Rent: 400,000-285,000; Groceries: 31,000;
	// Netflix: 15,750; goal: 50,000.
	assert.InDelta(t, 250_000+115_000+31_000+15_750+50_000, analysis.TotalPotentialSavings, 0.01)
}

func TestAnalyzeScoreClampedToZero(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		TotalIncome:   100_000,
		TotalExpenses: 1_000_000,
		Balance:       -900_000,
		ExpensesByCategory: []CategoryExpense{
			{Category: "Rent", Amount: 500_000, Count: 1},
			{Category: "Debt", Amount: 500_000, Count: 1},
		},
	}

	analysis := newTestAnalyzer().Analyze(fc)

	assert.Equal(t, 0, analysis.HealthScore)
	assert.GreaterOrEqual(t, analysis.HealthScore, 0)
	assert.LessOrEqual(t, analysis.HealthScore, 100)
}

func TestAnalyzeIdempotent(t *testing.T) {
	t.Parallel()

	fc := FinancialContext{
		TotalIncome:   1_000_000,
		TotalExpenses: 950_000,
		Balance:       50_000,
		ExpensesByCategory: []CategoryExpense{
			{Category: "Rent", Amount: 500_000, Count: 1},
			{Category: "Food", Amount: 450_000, Count: 12},
		},
		RecentTransactions: []TransactionSummary{
			{ID: 1, Type: TypeExpense, Amount: 12_000, Description: "Coffee", Date: "2026-08-01"},
			{ID: 2, Type: TypeExpense, Amount: 12_000, Description: "Coffee", Date: "2026-08-02"},
			{ID: 3, Type: TypeExpense, Amount: 12_000, Description: "Coffee", Date: "2026-08-03"},
			{ID: 4, Type: TypeExpense, Amount: 12_000, Description: "Tea", Date: "2026-08-04"},
			{ID: 5, Type: TypeExpense, Amount: 12_000, Description: "Tea", Date: "2026-08-05"},
			{ID: 6, Type: TypeExpense, Amount: 12_000, Description: "Tea", Date: "2026-08-06"},
		},
	}

	engine := newTestAnalyzer()
	first := engine.Analyze(fc)
	second := engine.Analyze(fc)

	assert.Equal(t, first, second)
}

func TestMotivationalMessageBands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, motivationalMessage(80), motivationalMessage(100))
	assert.Equal(t, motivationalMessage(60), motivationalMessage(79))
	assert.Equal(t, motivationalMessage(40), motivationalMessage(59))
	assert.Equal(t, motivationalMessage(0), motivationalMessage(39))

	messages := map[string]bool{
		motivationalMessage(90): true,
		motivationalMessage(70): true,
		motivationalMessage(50): true,
		motivationalMessage(10): true,
	}
	assert.Len(t, messages, 4, "each band has its own message")
}

func TestFormatCOP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatCOP(0))
	assert.Equal(t, "950", formatCOP(950))
	assert.Equal(t, "20.000", formatCOP(20000))
	assert.Equal(t, "1.234.568", formatCOP(1234567.89))
	assert.Equal(t, "-200.000", formatCOP(-200000))
}
