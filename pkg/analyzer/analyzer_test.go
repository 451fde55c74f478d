package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(filepath.Join(t.TempDir(), "query_log.db"), Config{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestDetectPattern(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"muestra todos los clientes", `muestra\s+(?:todos\s+)?los\s+clientes`},
		{"muestra los pedidos", `muestra\s+(?:todos\s+)?los\s+pedidos`},
		{"lista los pedidos", `lista\s+(?:de\s+)?(?:todos\s+)?los\s+pedidos`},
		{"cuántos clientes hay", `cu[aá]ntos\s+clientes\s+hay`},
		{"total de ventas", `total\s+de\s+ventas`},
		{"listar datos de usuarios", "lista_de_usuarios"},
		{"hola", ""},
		{"xyzzy plugh foo bar", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, detectPattern(tc.query), "query %q", tc.query)
	}
}

func TestCommonPatternOrderPinned(t *testing.T) {
	// The detection scan is first-match-wins over this exact order.
	want := []string{
		`muestra\s+(?:todos\s+)?los\s+(\w+)`,
		`lista\s+(?:de\s+)?(?:todos\s+)?los\s+(\w+)`,
		`busca\s+(\w+)\s+donde`,
		`cu[aá]ntos\s+(\w+)\s+hay`,
		`total\s+de\s+(\w+)`,
	}
	require.Len(t, commonPatterns, len(want))
	for i, re := range commonPatterns {
		assert.Equal(t, want[i], re.String())
	}
}

func TestRecordValidation(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	err := a.Record(ctx, "", "cfg-1", "", 0.1, 0.09, 1)
	assert.ErrorIs(t, err, ErrMissingQuery)

	err = a.Record(ctx, "muestra todos los clientes", "", "", 0.1, 0.09, 1)
	assert.ErrorIs(t, err, ErrMissingConfigID)
}

func TestRecordRunningAverageMatchesBatchMean(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	times := []float64{0.12, 0.31, 0.07, 0.55, 0.2, 0.44}
	costs := []float64{0.05, 0.11, 0.09, 0.3, 0.02, 0.17}

	var sumTime, sumCost float64
	for i := range times {
		require.NoError(t, a.Record(ctx, "muestra todos los clientes", "cfg-1", "", times[i], costs[i], 10))
		sumTime += times[i]
		sumCost += costs[i]
	}
	n := float64(len(times))

	stats, err := a.CommonPatterns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, `muestra\s+(?:todos\s+)?los\s+clientes`, s.Pattern)
	assert.Equal(t, int64(len(times)), s.Count)
	assert.InDelta(t, sumTime/n, s.AvgExecutionTime, 1e-9)
	assert.InDelta(t, sumCost/n, s.AvgCost, 1e-9)
}

func TestRecordConcurrent(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	const writers = 20
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- a.Record(ctx, "muestra todos los clientes", "cfg-1", "", 0.1, 0.09, 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stats, err := a.CommonPatterns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(writers), stats[0].Count)
}

func TestCommonPatternsOrderingAndMonthlyCost(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Record(ctx, "muestra todos los clientes", "cfg-1", "", 0.1, 0.2, 5))
	}
	require.NoError(t, a.Record(ctx, "cuántos pedidos hay", "cfg-1", "", 0.1, 0.5, 1))

	stats, err := a.CommonPatterns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, `muestra\s+(?:todos\s+)?los\s+clientes`, stats[0].Pattern)
	assert.Equal(t, int64(3), stats[0].Count)
	// Monthly estimate extrapolates a 7-day window: avg * count * 30/7.
	assert.InDelta(t, 0.2*3*30/7, stats[0].EstimatedMonthlyCost, 0.005)
}

func TestRecordWithoutPattern(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	require.NoError(t, a.Record(ctx, "estado general del sistema", "cfg-1", "", 0.1, 0.09, 1))

	stats, err := a.CommonPatterns(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestRecentRecords(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	require.NoError(t, a.Record(ctx, "muestra todos los clientes", "cfg-1", "clientes", 0.25, 0.09, 7))

	records, err := a.RecentRecords(ctx, time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "muestra todos los clientes", r.Query)
	assert.Equal(t, "cfg-1", r.ConfigID)
	assert.Equal(t, "clientes", r.Collection)
	assert.Equal(t, 7, r.ResultCount)
	assert.Equal(t, `muestra\s+(?:todos\s+)?los\s+clientes`, r.Pattern)
	assert.InDelta(t, 0.25, r.ExecutionTime, 1e-9)
}

func TestPurge(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Record(ctx, fmt.Sprintf("estado general numero %d", i), "cfg-1", "", 0.1, 0.09, 1))
	}

	n, err := a.Purge(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = a.Purge(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
