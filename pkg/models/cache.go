package models

// QueryHits pairs a cached query with its accumulated hit count.
type QueryHits struct {
	Query string `json:"query"`
	Hits  int64  `json:"hits"`
}

// CacheStats reports tier sizes and usage metrics.
type CacheStats struct {
	MemoryEntries int         `json:"memory_entries"`
	DiskEntries   int         `json:"disk_entries"`
	TotalTracked  int64       `json:"total_tracked"`
	TopQueries    []QueryHits `json:"top_queries"`
	AvgAgeSeconds float64     `json:"avg_age_seconds"`
	CacheDir      string      `json:"cache_dir"`
}
