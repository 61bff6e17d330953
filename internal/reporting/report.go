package reporting

import (
	"time"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/metrics"
)

// GeneratorVersion is recorded in every report for reproducibility.
const GeneratorVersion = "1.0.0"

// Report represents the model report structure (MODEL_REPORT.md).
type Report struct {
	// Metadata
	GeneratedAt   time.Time
	SelectedModel string

	// Data Summary
	DataSummary DataSummary

	// Data Quality (sufficiency checks)
	DataQuality DataQualitySection

	// Candidate models in comparison order
	ModelComparison []domain.ModelEvaluation

	// Wallet counts per tier, ordered Low, Medium, High
	RiskTiers []RiskTierRow

	// Distribution of predicted scores
	ScoreSummary metrics.Summary

	Reproducibility ReproducibilityMetadata
}

// DataSummary describes the input and the aggregated table.
type DataSummary struct {
	InputPath      string
	Transactions   int
	Dropped        int // no wallet id under either field
	UnknownActions int
	Wallets        int
	FeatureSet     domain.FeatureSet
	FeatureNames   []string
	TrainRows      int
	TestRows       int
}

// DataQualitySection contains data sufficiency checks and warnings.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	Warnings          []string
	AllChecksPassed   bool
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// RiskTierRow is one row of the risk tier table.
type RiskTierRow struct {
	Category domain.RiskCategory
	Count    int
	Share    float64 // fraction of all wallets, 0 when there are none
}

// ReproducibilityMetadata identifies the run that produced the report.
type ReproducibilityMetadata struct {
	DataVersion      string // sha256 of the raw input
	RunID            string
	Seed             uint64
	TestFraction     float64
	GeneratorVersion string
	Command          string
}

// RunMetadata is what the pipeline knows about a run besides the stored rows.
type RunMetadata struct {
	RunID        string
	DataVersion  string
	InputPath    string
	Seed         uint64
	TestFraction float64
	FeatureSet   domain.FeatureSet
	Transactions int
	Dropped      int
	Unknown      int
	TrainRows    int
	TestRows     int
	Command      string
}
