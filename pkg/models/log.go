package models

import "time"

// QueryLogRecord is one executed query in the append-only log.
type QueryLogRecord struct {
	ID            int64     `json:"id"`
	Query         string    `json:"query"`
	ConfigID      string    `json:"config_id"`
	Collection    string    `json:"collection,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	ExecutionTime float64   `json:"execution_time"`
	Cost          float64   `json:"cost"`
	ResultCount   int       `json:"result_count"`
	Pattern       string    `json:"pattern,omitempty"`
}

// PatternStat aggregates all logged queries sharing a detected pattern.
// Averages are maintained incrementally, not recomputed from the log.
type PatternStat struct {
	Pattern              string    `json:"pattern"`
	Count                int64     `json:"count"`
	AvgExecutionTime     float64   `json:"avg_execution_time"`
	AvgCost              float64   `json:"avg_cost"`
	LastUpdated          time.Time `json:"last_updated"`
	EstimatedMonthlyCost float64   `json:"estimated_monthly_cost"`
}
