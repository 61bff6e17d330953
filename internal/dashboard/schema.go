package dashboard

// LookupResponse is returned by GET /api/wallets/:name.
type LookupResponse struct {
	Name         string   `json:"name"`
	Found        bool     `json:"found"`
	Wallet       string   `json:"wallet,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	RiskCategory string   `json:"risk_category,omitempty"`
	Notice       string   `json:"notice,omitempty"`
}

// DistributionBin is one histogram bucket.
type DistributionBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// DistributionResponse is returned by GET /api/distribution.
type DistributionResponse struct {
	ScoreColumn string            `json:"score_column"`
	Total       int               `json:"total"`
	Bins        []DistributionBin `json:"bins"`
}

// RiskTier is one row of the risk breakdown.
type RiskTier struct {
	Category string `json:"risk_category"`
	Count    int    `json:"count"`
}

// RiskBreakdownResponse is returned by GET /api/risk-breakdown.
type RiskBreakdownResponse struct {
	Tiers []RiskTier `json:"tiers"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Wallets int    `json:"wallets"`
}

func toLookupResponse(name string, res LookupResult) LookupResponse {
	if !res.Found {
		return LookupResponse{Name: name, Notice: res.Notice}
	}
	score := res.Row.Score
	return LookupResponse{
		Name:         res.Row.Name,
		Found:        true,
		Wallet:       res.Row.Wallet,
		Score:        &score,
		RiskCategory: res.Row.RiskCategory.String(),
	}
}
