package main

import (
	"fmt"
	"sort"
	"strconv"
)

// Insight types.
const (
	InsightWarning     = "warning"
	InsightOpportunity = "opportunity"
	InsightSuccess     = "success"
	InsightInfo        = "info"
)

// Insight priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// SavingsInsight is a single observation about spending behavior.
type SavingsInsight struct {
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Impact     float64 `json:"impact"`
	Priority   string  `json:"priority"`
	Category   string  `json:"category,omitempty"`
	Actionable bool    `json:"actionable"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// CategoryTrend describes the direction of spend in one category.
type CategoryTrend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Trend    string  `json:"trend"`
}

// SaveRecommendation is a concrete action with its expected saving.
type SaveRecommendation struct {
	Action          string  `json:"action"`
	Category        string  `json:"category"`
	ExpectedSavings float64 `json:"expectedSavings"`
}

// SavingsAnalysis is the analyzer output: at most five insights sorted by
// priority, the potential-savings total, and a 0-100 health score.
type SavingsAnalysis struct {
	Insights              []SavingsInsight     `json:"insights"`
	Summary               string               `json:"summary,omitempty"`
	TotalPotentialSavings float64              `json:"totalPotentialSavings"`
	HealthScore           int                  `json:"healthScore"`
	Trends                []CategoryTrend      `json:"trends,omitempty"`
	Recommendations       []SaveRecommendation `json:"recommendations,omitempty"`
	MotivationalMessage   string               `json:"motivationalMessage,omitempty"`
}

// AnalyzerConfig holds the rule thresholds and score weights. The defaults
// are tuned for Colombian peso magnitudes; the scoring policy is a product
// decision, so everything is adjustable.
type AnalyzerConfig struct {
	// Expense-to-income ratio rule (percent bands).
	HighExpenseRatioPct float64 // warning above this
	LowExpenseRatioPct  float64 // success below this
	TargetExpenseShare  float64 // fraction of income expenses should fit in

	// Category concentration rule (percent of total expenses).
	CategoryWarningSharePct     float64
	CategoryOpportunitySharePct float64
	CategoryTargetShare         float64 // fraction of total expenses per category
	CategoryTrimFraction        float64 // suggested reduction for warnings
	CategoryOpportunityCut      float64 // assumed saving for opportunities

	// Recurring-description rule.
	RecurringMinCount int
	RecurringTopN     int
	RecurringCut      float64

	// Small-transaction ("latte factor") rule.
	SmallTxCeiling  float64
	SmallTxMinCount int
	SmallTxCut      float64

	// Savings-rate rule (percent of income).
	MinSavingsRatePct  float64
	GoodSavingsRatePct float64
	SavingsTargetShare float64

	// Health score weights.
	DeficitPenalty       int
	RatioSeverePenalty   int // ratio > 1.0
	RatioHighPenalty     int // ratio > 0.9
	RatioElevatedPenalty int // ratio > 0.8
	WarningPenalty       int // per high-priority warning
	SuccessBonus         int // per success insight
}

// DefaultAnalyzerConfig returns the reference thresholds.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		HighExpenseRatioPct: 80,
		LowExpenseRatioPct:  60,
		TargetExpenseShare:  0.7,

		CategoryWarningSharePct:     40,
		CategoryOpportunitySharePct: 30,
		CategoryTargetShare:         0.3,
		CategoryTrimFraction:        0.25,
		CategoryOpportunityCut:      0.10,

		RecurringMinCount: 3,
		RecurringTopN:     2,
		RecurringCut:      0.15,

		SmallTxCeiling:  20000,
		SmallTxMinCount: 5,
		SmallTxCut:      0.30,

		MinSavingsRatePct:  10,
		GoodSavingsRatePct: 20,
		SavingsTargetShare: 0.10,

		DeficitPenalty:       40,
		RatioSeverePenalty:   30,
		RatioHighPenalty:     20,
		RatioElevatedPenalty: 10,
		WarningPenalty:       15,
		SuccessBonus:         10,
	}
}

// SavingsAnalyzer is the deterministic rule engine. It performs no I/O and
// holds no mutable state, so a single instance is safe for concurrent use.
type SavingsAnalyzer struct {
	cfg AnalyzerConfig
}

func NewSavingsAnalyzer(cfg AnalyzerConfig) *SavingsAnalyzer {
	return &SavingsAnalyzer{cfg: cfg}
}

// Analyze evaluates every rule against the context and merges the results
// into a SavingsAnalysis. Identical contexts always produce identical output.
func (a *SavingsAnalyzer) Analyze(fc FinancialContext) SavingsAnalysis {
	var insights []SavingsInsight

	insights = append(insights, a.expenseRatioInsights(fc)...)
	insights = append(insights, a.categoryInsights(fc)...)
	insights = append(insights, a.recurringExpenseInsights(fc)...)
	insights = append(insights, a.smallExpenseInsights(fc)...)
	insights = append(insights, a.savingsRateInsights(fc)...)

	sort.SliceStable(insights, func(i, j int) bool {
		return priorityWeight(insights[i].Priority) < priorityWeight(insights[j].Priority)
	})

	// Warning and opportunity impacts count toward the savings total;
	// success and info never do. Summed before the 5-insight cap.
	var totalPotentialSavings float64
	for _, in := range insights {
		if in.Type == InsightWarning || in.Type == InsightOpportunity {
			totalPotentialSavings += in.Impact
		}
	}

	healthScore := a.healthScore(fc, insights)

	limited := insights
	if len(limited) > 5 {
		limited = limited[:5]
	}
	if limited == nil {
		limited = []SavingsInsight{}
	}

	return SavingsAnalysis{
		Insights:              limited,
		TotalPotentialSavings: totalPotentialSavings,
		HealthScore:           healthScore,
		MotivationalMessage:   motivationalMessage(healthScore),
	}
}

func priorityWeight(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// expenseRatioInsights covers the overall expense-to-income ratio.
func (a *SavingsAnalyzer) expenseRatioInsights(fc FinancialContext) []SavingsInsight {
	if fc.TotalIncome <= 0 {
		return nil
	}
	ratio := fc.TotalExpenses / fc.TotalIncome * 100

	switch {
	case ratio > 100:
		return []SavingsInsight{{
			Type:       InsightWarning,
			Title:      "Expenses exceed income",
			Message:    fmt.Sprintf("You are spending %.0f%% of your income and running a deficit of $%s COP.", ratio, formatCOP(-fc.Balance)),
			Impact:     -fc.Balance,
			Priority:   PriorityHigh,
			Actionable: true,
			Suggestion: "Review your fixed expenses and look for areas to cut. Consider increasing your income or dropping non-essential spending.",
		}}
	case ratio > a.cfg.HighExpenseRatioPct:
		excess := fc.TotalExpenses - fc.TotalIncome*a.cfg.TargetExpenseShare
		return []SavingsInsight{{
			Type:       InsightWarning,
			Title:      "Very high expenses",
			Message:    fmt.Sprintf("You are spending %.0f%% of your income. Keeping expenses under %.0f%% is the usual target.", ratio, a.cfg.TargetExpenseShare*100),
			Impact:     excess,
			Priority:   PriorityHigh,
			Actionable: true,
			Suggestion: fmt.Sprintf("Bringing expenses down to %.0f%% of your income would free up $%s COP.", a.cfg.TargetExpenseShare*100, formatCOP(excess)),
		}}
	case ratio < a.cfg.LowExpenseRatioPct:
		return []SavingsInsight{{
			Type:       InsightSuccess,
			Title:      "Excellent expense control",
			Message:    fmt.Sprintf("You only spend %.0f%% of your income. Keep it up!", ratio),
			Impact:     fc.Balance,
			Priority:   PriorityLow,
			Actionable: false,
		}}
	}
	return nil
}

// categoryInsights flags categories that dominate total spend. Several
// categories can fire independently.
func (a *SavingsAnalyzer) categoryInsights(fc FinancialContext) []SavingsInsight {
	if fc.TotalExpenses <= 0 {
		return nil
	}

	var insights []SavingsInsight
	for _, cat := range fc.ExpensesByCategory {
		share := cat.Amount / fc.TotalExpenses * 100

		if share > a.cfg.CategoryWarningSharePct {
			saving := cat.Amount - fc.TotalExpenses*a.cfg.CategoryTargetShare
			insights = append(insights, SavingsInsight{
				Type:       InsightWarning,
				Title:      fmt.Sprintf("Heavy spending on %s", cat.Category),
				Message:    fmt.Sprintf("%s makes up %.0f%% of your total expenses ($%s COP).", cat.Category, share, formatCOP(cat.Amount)),
				Impact:     saving,
				Priority:   PriorityHigh,
				Category:   cat.Category,
				Actionable: true,
				Suggestion: fmt.Sprintf("Cutting %s by %.0f%% would save you around $%s COP.", cat.Category, a.cfg.CategoryTrimFraction*100, formatCOP(saving*a.cfg.CategoryTrimFraction)),
			})
		} else if share > a.cfg.CategoryOpportunitySharePct {
			saving := cat.Amount * a.cfg.CategoryOpportunityCut
			insights = append(insights, SavingsInsight{
				Type:       InsightOpportunity,
				Title:      fmt.Sprintf("Opportunity in %s", cat.Category),
				Message:    fmt.Sprintf("%s is one of your main categories (%.0f%%).", cat.Category, share),
				Impact:     saving,
				Priority:   PriorityMedium,
				Category:   cat.Category,
				Actionable: true,
				Suggestion: fmt.Sprintf("Look for cheaper alternatives in %s. A %.0f%% cut would be $%s COP.", cat.Category, a.cfg.CategoryOpportunityCut*100, formatCOP(saving)),
			})
		}
	}
	return insights
}

// recurringExpenseInsights groups expenses by exact description and flags the
// two largest groups seen at least RecurringMinCount times.
func (a *SavingsAnalyzer) recurringExpenseInsights(fc FinancialContext) []SavingsInsight {
	type group struct {
		description string
		amount      float64
		count       int
		order       int
	}
	groups := make(map[string]*group)
	order := 0

	for _, tx := range fc.RecentTransactions {
		if tx.Type != TypeExpense || tx.Description == "" {
			continue
		}
		g, ok := groups[tx.Description]
		if !ok {
			g = &group{description: tx.Description, order: order}
			groups[tx.Description] = g
			order++
		}
		g.amount += tx.Amount
		g.count++
	}

	frequent := make([]*group, 0, len(groups))
	for _, g := range groups {
		if g.count >= a.cfg.RecurringMinCount {
			frequent = append(frequent, g)
		}
	}
	sort.SliceStable(frequent, func(i, j int) bool {
		if frequent[i].amount != frequent[j].amount {
			return frequent[i].amount > frequent[j].amount
		}
		return frequent[i].order < frequent[j].order
	})
	if len(frequent) > a.cfg.RecurringTopN {
		frequent = frequent[:a.cfg.RecurringTopN]
	}

	var insights []SavingsInsight
	for _, g := range frequent {
		saving := g.amount * a.cfg.RecurringCut
		insights = append(insights, SavingsInsight{
			Type:       InsightOpportunity,
			Title:      fmt.Sprintf("Frequent expense: %s", g.description),
			Message:    fmt.Sprintf("You logged %d similar expenses totaling $%s COP.", g.count, formatCOP(g.amount)),
			Impact:     saving,
			Priority:   PriorityMedium,
			Actionable: true,
			Suggestion: fmt.Sprintf("Cutting back on these could save you up to $%s COP.", formatCOP(saving)),
		})
	}
	return insights
}

// smallExpenseInsights is the "latte factor": many small purchases add up.
func (a *SavingsAnalyzer) smallExpenseInsights(fc FinancialContext) []SavingsInsight {
	var count int
	var total float64
	for _, tx := range fc.RecentTransactions {
		if tx.Type == TypeExpense && tx.Amount > 0 && tx.Amount < a.cfg.SmallTxCeiling {
			count++
			total += tx.Amount
		}
	}
	if count < a.cfg.SmallTxMinCount {
		return nil
	}

	saving := total * a.cfg.SmallTxCut
	return []SavingsInsight{{
		Type:       InsightInfo,
		Title:      "Frequent small expenses",
		Message:    fmt.Sprintf("You have %d small expenses (under $%s) adding up to $%s COP.", count, formatCOP(a.cfg.SmallTxCeiling), formatCOP(total)),
		Impact:     saving,
		Priority:   PriorityLow,
		Actionable: true,
		Suggestion: fmt.Sprintf("Small expenses add up. Trimming them by %.0f%% would save $%s COP.", a.cfg.SmallTxCut*100, formatCOP(saving)),
	}}
}

// savingsRateInsights checks the savings rate against the 10%/20% targets.
func (a *SavingsAnalyzer) savingsRateInsights(fc FinancialContext) []SavingsInsight {
	if fc.TotalIncome <= 0 || fc.Balance <= 0 {
		return nil
	}
	rate := fc.Balance / fc.TotalIncome * 100

	switch {
	case rate < a.cfg.MinSavingsRatePct:
		needed := fc.TotalIncome*a.cfg.SavingsTargetShare - fc.Balance
		return []SavingsInsight{{
			Type:       InsightOpportunity,
			Title:      "Recommended savings goal",
			Message:    fmt.Sprintf("Your current savings rate is %.1f%%. Saving at least %.0f%% of your income is recommended.", rate, a.cfg.MinSavingsRatePct),
			Impact:     needed,
			Priority:   PriorityMedium,
			Actionable: true,
			Suggestion: fmt.Sprintf("To reach the %.0f%% goal, reduce expenses or raise income by $%s COP.", a.cfg.MinSavingsRatePct, formatCOP(needed)),
		}}
	case rate >= a.cfg.GoodSavingsRatePct:
		return []SavingsInsight{{
			Type:       InsightSuccess,
			Title:      "Great savings!",
			Message:    fmt.Sprintf("You are saving %.1f%% of your income ($%s COP). Keep going!", rate, formatCOP(fc.Balance)),
			Impact:     fc.Balance,
			Priority:   PriorityLow,
			Actionable: false,
		}}
	}
	return nil
}

// healthScore summarizes the context into a 0-100 score. Counts use the
// full insight list, before the 5-item cap.
func (a *SavingsAnalyzer) healthScore(fc FinancialContext, insights []SavingsInsight) int {
	score := 100

	if fc.Balance < 0 {
		score -= a.cfg.DeficitPenalty
	}

	if fc.TotalIncome > 0 {
		ratio := fc.TotalExpenses / fc.TotalIncome
		switch {
		case ratio > 1:
			score -= a.cfg.RatioSeverePenalty
		case ratio > 0.9:
			score -= a.cfg.RatioHighPenalty
		case ratio > 0.8:
			score -= a.cfg.RatioElevatedPenalty
		}
	}

	for _, in := range insights {
		if in.Type == InsightWarning && in.Priority == PriorityHigh {
			score -= a.cfg.WarningPenalty
		}
		if in.Type == InsightSuccess {
			score += a.cfg.SuccessBonus
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// motivationalMessage picks one fixed message per health-score band.
func motivationalMessage(score int) string {
	switch {
	case score >= 80:
		return "Excellent handling of your finances! Your discipline is paying off. Keep it up and consider investing to grow your wealth."
	case score >= 60:
		return "You are on the right track. With a few adjustments to your spending you can improve your finances significantly."
	case score >= 40:
		return "Your situation needs attention, but don't get discouraged. Small consistent changes add up to big improvements."
	default:
		return "It's time to take action. Focus on cutting non-essential expenses and look for ways to raise your income. You can do it!"
	}
}

// formatCOP renders an amount with thousands separators, peso style.
func formatCOP(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(int64(amount+0.5), 10)

	var out []byte
	for i, d := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
