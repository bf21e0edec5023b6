package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrEmptyAnalysis reports a model reply that validated but carried no
// insights, trends, or recommendations. Callers fall back to the rule engine.
var ErrEmptyAnalysis = errors.New("model returned an empty analysis")

// ModelClient is the single blocking call the AI analyzer needs. Satisfied by
// the Anthropic-backed client in production and by stubs in tests.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AnthropicModel calls the Anthropic Messages API.
type AnthropicModel struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropicModel(apiKey, model string) *AnthropicModel {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicModel{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 2000,
	}
}

// Complete sends a single user message and concatenates the text blocks of
// the reply. One attempt, no retry; the caller owns the timeout.
func (m *AnthropicModel) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     m.model,
		MaxTokens: m.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages call: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// AIAnalyzer asks a language model for a richer analysis of the same context
// the rule engine sees, then normalizes the reply into a SavingsAnalysis.
// Any failure is returned as an error; it never substitutes the rule engine
// itself - that is the caller's decision.
type AIAnalyzer struct {
	model ModelClient
}

func NewAIAnalyzer(model ModelClient) *AIAnalyzer {
	return &AIAnalyzer{model: model}
}

// aiAnalysisResponse mirrors the JSON shape the prompt requests. The three
// array fields decode individually so one bad field does not reject the rest.
type aiAnalysisResponse struct {
	HealthScore         float64         `json:"healthScore"`
	HealthStatus        string          `json:"healthStatus"`
	Summary             string          `json:"summary"`
	KeyInsights         json.RawMessage `json:"keyInsights"`
	Trends              json.RawMessage `json:"trends"`
	Recommendations     json.RawMessage `json:"recommendations"`
	MotivationalMessage string          `json:"motivationalMessage"`
}

type aiInsight struct {
	Type       string  `json:"type"`
	Category   string  `json:"category"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Impact     float64 `json:"impact"`
	Priority   string  `json:"priority"`
	Actionable bool    `json:"actionable"`
	Suggestion string  `json:"suggestion"`
}

type aiTrend struct {
	Trend    string `json:"trend"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Analyze builds the prompt, performs one model call, and normalizes the
// structured reply. Strict parse-or-fail: one decode attempt, no salvaging of
// malformed output.
func (a *AIAnalyzer) Analyze(ctx context.Context, fc FinancialContext) (SavingsAnalysis, error) {
	prompt, err := buildAnalysisPrompt(fc)
	if err != nil {
		return SavingsAnalysis{}, err
	}

	reply, err := a.model.Complete(ctx, prompt)
	if err != nil {
		return SavingsAnalysis{}, err
	}

	var resp aiAnalysisResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &resp); err != nil {
		return SavingsAnalysis{}, fmt.Errorf("decoding model reply: %w", err)
	}

	// Non-array fields degrade to empty rather than rejecting the reply.
	var insights []aiInsight
	if err := json.Unmarshal(resp.KeyInsights, &insights); err != nil {
		insights = nil
	}
	var trends []aiTrend
	if err := json.Unmarshal(resp.Trends, &trends); err != nil {
		trends = nil
	}
	var recommendations []string
	if err := json.Unmarshal(resp.Recommendations, &recommendations); err != nil {
		recommendations = nil
	}

	if len(insights) == 0 && len(trends) == 0 && len(recommendations) == 0 {
		return SavingsAnalysis{}, ErrEmptyAnalysis
	}

	analysis := SavingsAnalysis{
		HealthScore:         clampScore(resp.HealthScore),
		Summary:             resp.Summary,
		MotivationalMessage: resp.MotivationalMessage,
		Insights:            make([]SavingsInsight, 0, len(insights)),
		Trends:              make([]CategoryTrend, 0, len(trends)),
		Recommendations:     make([]SaveRecommendation, 0, len(recommendations)),
	}

	// The savings total is recomputed from the model's own insights rather
	// than trusting a model-provided number.
	for _, in := range insights {
		analysis.Insights = append(analysis.Insights, SavingsInsight{
			Type:       in.Type,
			Title:      in.Title,
			Message:    in.Message,
			Impact:     in.Impact,
			Priority:   in.Priority,
			Category:   in.Category,
			Actionable: in.Actionable,
			Suggestion: in.Suggestion,
		})
		if in.Type == InsightWarning || in.Type == InsightOpportunity {
			analysis.TotalPotentialSavings += in.Impact
		}
	}

	for _, t := range trends {
		var amount float64
		for _, cat := range fc.ExpensesByCategory {
			if strings.EqualFold(cat.Category, t.Category) {
				amount = cat.Amount
				break
			}
		}
		analysis.Trends = append(analysis.Trends, CategoryTrend{
			Category: t.Category,
			Amount:   amount,
			Trend:    t.Trend,
		})
	}

	for _, rec := range recommendations {
		analysis.Recommendations = append(analysis.Recommendations, SaveRecommendation{Action: rec})
	}

	return analysis, nil
}

func clampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score + 0.5)
}

// buildAnalysisPrompt embeds the same aggregates the rule engine sees.
func buildAnalysisPrompt(fc FinancialContext) (string, error) {
	incomeCount, expenseCount := 0, 0
	for _, tx := range fc.RecentTransactions {
		switch tx.Type {
		case TypeIncome:
			incomeCount++
		case TypeExpense:
			expenseCount++
		}
	}

	ratio := "N/A"
	if fc.TotalIncome > 0 {
		ratio = fmt.Sprintf("%.1f", fc.TotalExpenses/fc.TotalIncome*100)
	}

	recent := fc.RecentTransactions
	if len(recent) > 10 {
		recent = recent[:10]
	}
	type promptTx struct {
		Type     string  `json:"type"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category,omitempty"`
		Date     string  `json:"date"`
	}
	promptTxs := make([]promptTx, 0, len(recent))
	for _, tx := range recent {
		promptTxs = append(promptTxs, promptTx{
			Type:     tx.Type,
			Amount:   tx.Amount,
			Category: tx.CategoryName,
			Date:     tx.Date,
		})
	}

	data, err := json.MarshalIndent(map[string]any{
		"period": fmt.Sprintf("%s to %s", fc.DateRange.Start, fc.DateRange.End),
		"income": map[string]any{
			"total":        fc.TotalIncome,
			"transactions": incomeCount,
		},
		"expenses": map[string]any{
			"total":        fc.TotalExpenses,
			"transactions": expenseCount,
			"byCategory":   fc.ExpensesByCategory,
		},
		"balance":            fc.Balance,
		"expenseIncomeRatio": ratio,
		"recentTransactions": promptTxs,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding analysis data: %w", err)
	}

	return fmt.Sprintf(`You are a personal financial advisor specialized in Colombian personal finance.

Analyze the following financial context and produce a complete, personalized analysis.

FINANCIAL DATA:
%s

ANALYSIS RULES:
1. "healthScore": 0-100 weighing balance sign (30%%), expense/income ratio (30%%), expense diversification (20%%), income consistency (20%%).
2. "healthStatus": "excellent" (80-100), "good" (60-79), "fair" (40-59) or "critical" (0-39).
3. "keyInsights": 3-5 ACTIONABLE insights. Each has "type" (warning|opportunity|success|info), optional "category", "title", "message", "impact" (COP amount), "priority" (high|medium|low), "actionable" (boolean) and optional "suggestion".
4. "trends": per-category entries with "trend" (increasing|decreasing|stable), "category" and "message".
5. "recommendations": 3-5 specific, actionable strings with concrete amounts where possible.
6. "motivationalMessage": at most two sentences, personalized.

All amounts are Colombian pesos (COP). Be specific with numbers and percentages.

Respond ONLY with valid JSON, no additional text.`, data), nil
}
