package pipeline

import (
	"fmt"

	"wallet-credit-lab/internal/features"
	"wallet-credit-lab/internal/model"
	"wallet-credit-lab/internal/reporting"
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks plus free-form warnings.
// Failed checks never stop a run; they are surfaced in the report.
type SufficiencyResult struct {
	Checks   []SufficiencyCheck
	AllPass  bool
	Warnings []string
}

// SufficiencyThresholds configures the checks.
type SufficiencyThresholds struct {
	MinWallets         int
	MinDistinctLabels  int
	MaxDroppedFraction float64 // of all transactions
	MaxUnknownFraction float64 // of all transactions
}

// DefaultSufficiencyThresholds returns the default thresholds.
func DefaultSufficiencyThresholds() SufficiencyThresholds {
	return SufficiencyThresholds{
		MinWallets:         model.MinRows,
		MinDistinctLabels:  2,
		MaxDroppedFraction: 0.05,
		MaxUnknownFraction: 0.05,
	}
}

// SufficiencyChecker validates that the aggregated data can support model selection.
type SufficiencyChecker struct {
	thresholds SufficiencyThresholds
}

// NewSufficiencyChecker creates a new sufficiency checker.
func NewSufficiencyChecker(thresholds SufficiencyThresholds) *SufficiencyChecker {
	return &SufficiencyChecker{thresholds: thresholds}
}

// Check runs all checks over aggregation stats and the label vector.
func (c *SufficiencyChecker) Check(stats features.AggregationStats, labels []float64) *SufficiencyResult {
	result := &SufficiencyResult{
		Checks:   make([]SufficiencyCheck, 0, 4),
		AllPass:  true,
		Warnings: []string{},
	}

	add := func(check SufficiencyCheck) {
		result.Checks = append(result.Checks, check)
		if !check.Pass {
			result.AllPass = false
		}
	}

	add(c.checkWallets(stats))
	add(c.checkLabelVariety(labels))
	add(c.checkDropped(stats))
	add(c.checkUnknown(stats))

	if stats.Dropped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d transaction(s) had no wallet id and were dropped", stats.Dropped))
	}
	if stats.UnknownActions > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d transaction(s) had an unrecognized action and only count toward active days", stats.UnknownActions))
	}
	if len(labels) > 0 && distinct(labels) == 1 {
		result.Warnings = append(result.Warnings,
			"every wallet has the same heuristic label; R² is not informative")
	}

	return result
}

// checkWallets: distinct wallets >= MinWallets.
func (c *SufficiencyChecker) checkWallets(stats features.AggregationStats) SufficiencyCheck {
	return SufficiencyCheck{
		Name:      "Wallets",
		Threshold: fmt.Sprintf(">= %d", c.thresholds.MinWallets),
		Actual:    fmt.Sprintf("%d", stats.Wallets),
		Pass:      stats.Wallets >= c.thresholds.MinWallets,
	}
}

// checkLabelVariety: distinct heuristic labels >= MinDistinctLabels.
func (c *SufficiencyChecker) checkLabelVariety(labels []float64) SufficiencyCheck {
	n := distinct(labels)
	return SufficiencyCheck{
		Name:      "Distinct labels",
		Threshold: fmt.Sprintf(">= %d", c.thresholds.MinDistinctLabels),
		Actual:    fmt.Sprintf("%d", n),
		Pass:      n >= c.thresholds.MinDistinctLabels,
	}
}

func (c *SufficiencyChecker) checkDropped(stats features.AggregationStats) SufficiencyCheck {
	frac := fraction(stats.Dropped, stats.Transactions)
	return SufficiencyCheck{
		Name:      "Dropped transactions",
		Threshold: fmt.Sprintf("<= %.1f%%", c.thresholds.MaxDroppedFraction*100),
		Actual:    fmt.Sprintf("%.1f%%", frac*100),
		Pass:      frac <= c.thresholds.MaxDroppedFraction,
	}
}

func (c *SufficiencyChecker) checkUnknown(stats features.AggregationStats) SufficiencyCheck {
	frac := fraction(stats.UnknownActions, stats.Transactions)
	return SufficiencyCheck{
		Name:      "Unrecognized actions",
		Threshold: fmt.Sprintf("<= %.1f%%", c.thresholds.MaxUnknownFraction*100),
		Actual:    fmt.Sprintf("%.1f%%", frac*100),
		Pass:      frac <= c.thresholds.MaxUnknownFraction,
	}
}

func fraction(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func distinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// convertToDataQuality converts SufficiencyResult to reporting.DataQualitySection.
func convertToDataQuality(result *SufficiencyResult) reporting.DataQualitySection {
	checks := make([]reporting.SufficiencyCheckRow, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	return reporting.DataQualitySection{
		SufficiencyChecks: checks,
		Warnings:          result.Warnings,
		AllChecksPassed:   result.AllPass,
	}
}
