package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/corebrain-ai/querycore/pkg/models"
)

// Suggestions mines the query log for cost-saving opportunities: overall
// volume and cache-TTL tuning over the volume window, precompilation and
// manual-review candidates over all patterns, load spikes over the load
// window's busiest hours, and redundant repeats over the last day.
func (a *Analyzer) Suggestions(ctx context.Context) ([]models.Suggestion, error) {
	var suggestions []models.Suggestion

	volume, err := a.volumeSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	suggestions = append(suggestions, volume...)

	patterns, err := a.patternSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	suggestions = append(suggestions, patterns...)

	load, err := a.loadSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	suggestions = append(suggestions, load...)

	redundant, err := a.redundantSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	suggestions = append(suggestions, redundant...)

	return suggestions, nil
}

func (a *Analyzer) volumeSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	cutoff := time.Now().AddDate(0, 0, -a.cfg.VolumeWindowDays).Unix()

	var count int64
	var totalCost float64
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(cost), 0) FROM query_log WHERE timestamp > ?`, cutoff,
	).Scan(&count, &totalCost)
	if err != nil {
		return nil, fmt.Errorf("volume stats: %w", err)
	}

	if count <= a.cfg.VolumeThreshold {
		return nil, nil
	}

	suggestions := []models.Suggestion{{
		Type:           models.SuggestVolumePlan,
		QueryCount:     count,
		TotalCost:      round2(totalCost),
		Recommendation: fmt.Sprintf("Considerar negociar un plan por volumen. Actualmente ~%d consultas/mes.", count),
	}}

	// TTL inversely proportional to the daily query rate, clamped to the
	// configured bounds.
	perDay := float64(count) / float64(a.cfg.VolumeWindowDays)
	ttlSeconds := 86400 * float64(a.cfg.VolumeThreshold) / perDay
	ttlSeconds = min(ttlSeconds, a.cfg.MaxTTL.Seconds())
	ttlSeconds = max(ttlSeconds, a.cfg.MinTTL.Seconds())

	suggestions = append(suggestions, models.Suggestion{
		Type:           models.SuggestCacheAdjustment,
		CurrentRate:    fmt.Sprintf("%.1f consultas/día", perDay),
		Recommendation: fmt.Sprintf("Ajustar TTL del caché a %.1f horas basado en su patrón de uso", ttlSeconds/3600),
	})

	return suggestions, nil
}

func (a *Analyzer) patternSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	patterns, err := a.CommonPatterns(ctx, 10)
	if err != nil {
		return nil, err
	}

	var suggestions []models.Suggestion
	for _, p := range patterns {
		if p.Count >= a.cfg.PrecompileMinCount {
			suggestions = append(suggestions, models.Suggestion{
				Type:             models.SuggestPrecompile,
				Pattern:          p.Pattern,
				QueryCount:       p.Count,
				EstimatedSavings: round2(p.AvgCost * float64(p.Count) * a.cfg.PrecompileSaving),
				Recommendation:   fmt.Sprintf("Crear una plantilla SQL para consultas del tipo '%s'", p.Pattern),
			})
		}
		if p.AvgCost > a.cfg.ExpensiveAvgCost && p.Count < a.cfg.PrecompileMinCount {
			suggestions = append(suggestions, models.Suggestion{
				Type:           models.SuggestAnalyze,
				Pattern:        p.Pattern,
				AvgCost:        p.AvgCost,
				Recommendation: fmt.Sprintf("Revisar manualmente consultas del tipo '%s' para optimizar", p.Pattern),
			})
		}
	}
	return suggestions, nil
}

func (a *Analyzer) loadSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	cutoff := time.Now().AddDate(0, 0, -a.cfg.LoadWindowDays).Unix()

	rows, err := a.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m-%d %H', timestamp, 'unixepoch') AS hour, COUNT(*), COALESCE(SUM(cost), 0)
		 FROM query_log WHERE timestamp > ?
		 GROUP BY hour ORDER BY COUNT(*) DESC LIMIT ?`,
		cutoff, a.cfg.TopHours,
	)
	if err != nil {
		return nil, fmt.Errorf("hourly load: %w", err)
	}
	defer rows.Close()

	var suggestions []models.Suggestion
	for rows.Next() {
		var hour string
		var count int64
		var totalCost float64
		if err := rows.Scan(&hour, &count, &totalCost); err != nil {
			return nil, fmt.Errorf("scan hourly load: %w", err)
		}
		if count <= a.cfg.HourlyLoadMin {
			continue
		}
		suggestions = append(suggestions, models.Suggestion{
			Type:           models.SuggestLoadBalancing,
			Hour:           hour,
			QueryCount:     count,
			TotalCost:      round2(totalCost),
			Recommendation: fmt.Sprintf("Alta carga de consultas detectada el %s (%d consultas). Considerar técnicas de agrupación.", hour, count),
		})
	}
	return suggestions, rows.Err()
}

func (a *Analyzer) redundantSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	cutoff := time.Now().AddDate(0, 0, -1).Unix()

	rows, err := a.db.QueryContext(ctx,
		`SELECT query, COUNT(*) FROM query_log WHERE timestamp > ?
		 GROUP BY query HAVING COUNT(*) > ? ORDER BY COUNT(*) DESC LIMIT 5`,
		cutoff, a.cfg.RedundantRepeatMin,
	)
	if err != nil {
		return nil, fmt.Errorf("redundant queries: %w", err)
	}
	defer rows.Close()

	var suggestions []models.Suggestion
	for rows.Next() {
		var query string
		var count int64
		if err := rows.Scan(&query, &count); err != nil {
			return nil, fmt.Errorf("scan redundant query: %w", err)
		}
		suggestions = append(suggestions, models.Suggestion{
			Type:             models.SuggestRedundant,
			Query:            query,
			QueryCount:       count,
			EstimatedSavings: round2(a.cfg.DefaultCost * float64(count-1)),
			Recommendation:   fmt.Sprintf("Implementar caché para la consulta '%s...' que se repitió %d veces", truncate(query, 50), count),
		})
	}
	return suggestions, rows.Err()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
