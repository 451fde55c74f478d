package models

// SuggestionType tags an optimization suggestion.
type SuggestionType string

const (
	SuggestVolumePlan      SuggestionType = "volume_plan"
	SuggestCacheAdjustment SuggestionType = "cache_adjustment"
	SuggestPrecompile      SuggestionType = "precompile"
	SuggestAnalyze         SuggestionType = "analyze"
	SuggestLoadBalancing   SuggestionType = "load_balancing"
	SuggestRedundant       SuggestionType = "redundant"
)

// Suggestion is one advisor finding with its supporting metrics and a
// human-readable recommendation. Only the fields relevant to Type are set.
type Suggestion struct {
	Type             SuggestionType `json:"type"`
	Pattern          string         `json:"pattern,omitempty"`
	Query            string         `json:"query,omitempty"`
	Hour             string         `json:"hour,omitempty"`
	QueryCount       int64          `json:"query_count,omitempty"`
	TotalCost        float64        `json:"total_cost,omitempty"`
	AvgCost          float64        `json:"avg_cost,omitempty"`
	EstimatedSavings float64        `json:"estimated_savings,omitempty"`
	CurrentRate      string         `json:"current_rate,omitempty"`
	Recommendation   string         `json:"suggestion"`
}
