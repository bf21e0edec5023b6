package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// analysisTimeout bounds the whole AI-analysis endpoint, including the
// model call.
const analysisTimeout = 30 * time.Second

// queryTransactionsBetween fetches the transactions inside an inclusive date
// window, joined with their category names for the context builder.
func queryTransactionsBetween(start, end time.Time) ([]Transaction, error) {
	query := `
		SELECT t.id, t.date, t.description, t.amount, t.category_id, t.type, t.notes, t.source, t.created_at,
		       c.name as category_name, c.color as category_color
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.date >= $1 AND t.date <= $2
		ORDER BY t.date DESC
	`

	rows, err := db.Query(query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.Date, &t.Description, &t.Amount, &t.CategoryID, &t.Type, &t.Notes, &t.Source, &t.CreatedAt,
			&t.CategoryName, &t.CategoryColor,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// latestTransactionID returns the id of the newest transaction in the whole
// dataset, zero when there are none. Used as the analysis-cache change token.
func latestTransactionID() (int, error) {
	var id int
	err := db.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM transactions`).Scan(&id)
	return id, err
}

// analyzeSavings runs the deterministic rule engine over the trailing-30-day
// window and returns the analysis together with the context it was built on.
func analyzeSavings(engine *SavingsAnalyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end := DefaultAnalysisRange(time.Now())

		transactions, err := queryTransactionsBetween(start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "failed to analyze savings opportunities",
			})
			return
		}

		fc := BuildFinancialContext(transactions, start, end)
		analysis := engine.Analyze(fc)

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"analysis": analysis,
			"context":  fc,
		})
	}
}

// aiAnalysis serves the cached AI path: cache hit keyed on the newest
// transaction id, otherwise a fresh AI analysis with the rule engine as
// fallback, with a stale-cache read as the last resort on live failures.
func aiAnalysis(ai *AIAnalyzer, engine *SavingsAnalyzer, cache *AnalysisCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), analysisTimeout)
		defer cancel()

		lastID, err := latestTransactionID()
		if err != nil {
			serveStaleOrError(c, cache, err)
			return
		}
		if lastID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "not enough transaction data to analyze",
			})
			return
		}

		if analysis, ok := cache.Get(lastID); ok {
			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"analysis": analysis,
				"cached":   true,
			})
			return
		}

		start, end := DefaultAnalysisRange(time.Now())
		transactions, err := queryTransactionsBetween(start, end)
		if err != nil {
			serveStaleOrError(c, cache, err)
			return
		}
		fc := BuildFinancialContext(transactions, start, end)

		// AI overlay is strictly additive: any failure falls back to the
		// rule engine, which never fails.
		var analysis SavingsAnalysis
		fromModel := false
		if ai != nil {
			if got, err := ai.Analyze(ctx, fc); err == nil {
				analysis = got
				fromModel = true
			} else {
				log.Printf("AI analysis failed, using rule engine: %v", err)
			}
		}
		if !fromModel {
			analysis = engine.Analyze(fc)
		}

		cache.Set(analysis, lastID)

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"analysis": analysis,
			"cached":   false,
			"context": gin.H{
				"totalIncome":   fc.TotalIncome,
				"totalExpenses": fc.TotalExpenses,
				"balance":       fc.Balance,
				"dateRange":     fc.DateRange,
			},
		})
	}
}

// serveStaleOrError answers a live-path failure with the cache slot ignoring
// the transaction-id check, flagged stale. A hard error only remains when no
// previous analysis exists at all.
func serveStaleOrError(c *gin.Context, cache *AnalysisCache, err error) {
	log.Printf("Live analysis failed: %v", err)

	if analysis, ok := cache.GetStale(); ok {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"analysis": analysis,
			"cached":   true,
			"stale":    true,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "failed to generate financial analysis",
	})
}
