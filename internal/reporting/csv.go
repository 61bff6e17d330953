package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"wallet-credit-lab/internal/domain"
)

// Output table columns.
const (
	ColumnWallet         = "wallet"
	ColumnPredictedScore = "predicted_score"
	ColumnScore          = "score"
	ColumnRiskCategory   = "risk_category"
)

// RenderScoresCSV renders scored wallets as wallet,predicted_score,risk_category
// with scores at 2 decimals, in input order.
func RenderScoresCSV(scored []*domain.ScoredWallet) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	_ = w.Write([]string{ColumnWallet, ColumnPredictedScore, ColumnRiskCategory})

	// Rows
	for _, s := range scored {
		_ = w.Write([]string{
			s.Wallet,
			strconv.FormatFloat(s.PredictedScore, 'f', 2, 64),
			string(s.RiskCategory),
		})
	}

	w.Flush()
	return sb.String()
}

// RenderHeuristicScoresCSV renders heuristic labels as wallet,score.
func RenderHeuristicScoresCSV(scores []*domain.HeuristicScore) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{ColumnWallet, ColumnScore})
	for _, s := range scores {
		_ = w.Write([]string{s.Wallet, strconv.Itoa(s.Score)})
	}

	w.Flush()
	return sb.String()
}

// RenderEvaluationsCSV renders candidate evaluations as model,mae,r2,selected.
func RenderEvaluationsCSV(evals []domain.ModelEvaluation) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"model", "mae", "r2", "selected"})
	for _, e := range evals {
		_ = w.Write([]string{
			e.Model,
			strconv.FormatFloat(e.MAE, 'f', 6, 64),
			strconv.FormatFloat(e.R2, 'f', 6, 64),
			strconv.FormatBool(e.Selected),
		})
	}

	w.Flush()
	return sb.String()
}
