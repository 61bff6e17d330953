package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"wallet-credit-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Wallet Credit Score Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Wallets: %d | Selected model: %s\n\n", r.DataSummary.Wallets, orDash(r.SelectedModel)))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Input | %s |\n", orDash(r.DataSummary.InputPath)))
	sb.WriteString(fmt.Sprintf("| Transactions | %d |\n", r.DataSummary.Transactions))
	sb.WriteString(fmt.Sprintf("| Dropped (no wallet id) | %d |\n", r.DataSummary.Dropped))
	sb.WriteString(fmt.Sprintf("| Unrecognized actions | %d |\n", r.DataSummary.UnknownActions))
	sb.WriteString(fmt.Sprintf("| Wallets | %d |\n", r.DataSummary.Wallets))
	sb.WriteString(fmt.Sprintf("| Feature set | %s |\n", r.DataSummary.FeatureSet))
	sb.WriteString(fmt.Sprintf("| Features | %s |\n", strings.Join(r.DataSummary.FeatureNames, ", ")))
	sb.WriteString(fmt.Sprintf("| Train / test rows | %d / %d |\n", r.DataSummary.TrainRows, r.DataSummary.TestRows))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "WARN"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks raised warnings.** Scores were still produced; read them with care.\n\n")
		}
	} else {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	if len(r.DataQuality.Warnings) > 0 {
		sb.WriteString("### Warnings\n\n")
		for _, w := range r.DataQuality.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	// Model Comparison
	sb.WriteString("## Model Comparison\n\n")
	if len(r.ModelComparison) > 0 {
		sb.WriteString("Evaluated on the held-out partition. Highest R² wins; ties keep the earlier model.\n\n")
		sb.WriteString("| Model | MAE | R² | Selected |\n")
		sb.WriteString("|-------|-----|----|----------|\n")
		for _, e := range r.ModelComparison {
			mark := ""
			if e.Selected {
				mark = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				e.Model, formatMetric(e.MAE), formatMetric(e.R2), mark))
		}
	} else {
		sb.WriteString("No model evaluations available.\n")
	}
	sb.WriteString("\n")

	// Risk Tiers
	sb.WriteString("## Risk Tiers\n\n")
	sb.WriteString("| Risk Category | Score Range | Wallets | Share |\n")
	sb.WriteString("|---------------|-------------|---------|-------|\n")
	for _, t := range r.RiskTiers {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f%% |\n",
			t.Category, tierRange(t.Category), t.Count, t.Share*100))
	}
	sb.WriteString("\n")

	// Score Summary
	sb.WriteString("## Score Summary\n\n")
	s := r.ScoreSummary
	sb.WriteString("| Statistic | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| count | %d |\n", s.Count))
	sb.WriteString(fmt.Sprintf("| mean | %.2f |\n", s.Mean))
	sb.WriteString(fmt.Sprintf("| std | %s |\n", formatMetric(s.Stddev)))
	sb.WriteString(fmt.Sprintf("| min | %.2f |\n", s.Min))
	sb.WriteString(fmt.Sprintf("| 25%% | %.2f |\n", s.P25))
	sb.WriteString(fmt.Sprintf("| 50%% | %.2f |\n", s.Median))
	sb.WriteString(fmt.Sprintf("| 75%% | %.2f |\n", s.P75))
	sb.WriteString(fmt.Sprintf("| max | %.2f |\n", s.Max))
	sb.WriteString("\n")

	// Reproducibility
	rep := r.Reproducibility
	sb.WriteString("## Reproducibility\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Data version | `%s` |\n", orDash(rep.DataVersion)))
	sb.WriteString(fmt.Sprintf("| Run ID | `%s` |\n", orDash(rep.RunID)))
	sb.WriteString(fmt.Sprintf("| Seed | %d |\n", rep.Seed))
	sb.WriteString(fmt.Sprintf("| Test fraction | %.2f |\n", rep.TestFraction))
	sb.WriteString(fmt.Sprintf("| Generator version | %s |\n", rep.GeneratorVersion))
	if rep.Command != "" {
		sb.WriteString(fmt.Sprintf("| Command | `%s` |\n", rep.Command))
	}
	sb.WriteString("\n")

	sb.WriteString("Training labels come from a fixed heuristic over action counts, not from observed credit outcomes.\n")

	return sb.String()
}

// formatMetric renders NaN as "n/a" and everything else with 4 decimals.
func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func tierRange(c domain.RiskCategory) string {
	switch c {
	case domain.RiskLow:
		return "700 to 1000"
	case domain.RiskMedium:
		return "400 to 699.99"
	default:
		return "0 to 399.99"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
