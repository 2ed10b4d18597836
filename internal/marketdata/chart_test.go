package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/httputil"
	"github.com/alphagen/alphagen/pkg/logger"
)

type memoryPriceRepo struct {
	saved []contracts.PriceBar
}

func (m *memoryPriceRepo) GetBySymbolAndDateRange(_ context.Context, _ string, _, _ time.Time) ([]contracts.PriceBar, error) {
	return m.saved, nil
}

func (m *memoryPriceRepo) GetLatestDate(_ context.Context, _ string) (time.Time, error) {
	return time.Time{}, nil
}

func (m *memoryPriceRepo) SaveBatch(_ context.Context, bars []contracts.PriceBar) error {
	m.saved = append(m.saved, bars...)
	return nil
}

const chartPayload = `{
	"chart": {
		"result": [{
			"timestamp": [1757462400, 1757548800, 1757635200],
			"indicators": {
				"quote": [{
					"open":   [9000, 9100, null],
					"high":   [9150, 9200, null],
					"low":    [8950, 9050, null],
					"close":  [9100, 9150, null],
					"volume": [12000000, 9500000, null]
				}]
			}
		}],
		"error": null
	}
}`

func TestCollectSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "BBCA.JK")
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartPayload))
	}))
	defer server.Close()

	repo := &memoryPriceRepo{}
	client := httputil.New(logger.NewNop(), 5*time.Second).DisableRetry()
	collector := NewChartCollector(client, server.URL, repo, logger.NewNop())

	n, err := collector.CollectSymbol(context.Background(), "BBCA.JK", 365)
	require.NoError(t, err)

	// the null third session is dropped
	assert.Equal(t, 2, n)
	require.Len(t, repo.saved, 2)
	assert.Equal(t, "BBCA.JK", repo.saved[0].Symbol)
	assert.Equal(t, 9100.0, repo.saved[0].Close)
	assert.Equal(t, int64(12000000), repo.saved[0].Volume)
}

func TestCollectSymbolAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart": {"result": [], "error": {"code": "Not Found", "description": "No data found"}}}`))
	}))
	defer server.Close()

	client := httputil.New(logger.NewNop(), 5*time.Second).DisableRetry()
	collector := NewChartCollector(client, server.URL, &memoryPriceRepo{}, logger.NewNop())

	_, err := collector.CollectSymbol(context.Background(), "XXXX.JK", 365)
	assert.ErrorContains(t, err, "No data found")
}

func TestCollectAllIsolatesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/BAD.JK" {
			w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
			return
		}
		w.Write([]byte(chartPayload))
	}))
	defer server.Close()

	client := httputil.New(logger.NewNop(), 5*time.Second).DisableRetry()
	collector := NewChartCollector(client, server.URL, &memoryPriceRepo{}, logger.NewNop())

	succeeded, failed := collector.CollectAll(context.Background(), []string{"BBCA.JK", "BAD.JK", "TLKM.JK"}, 365)
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
}

func TestRangeParam(t *testing.T) {
	assert.Equal(t, "5d", rangeParam(3))
	assert.Equal(t, "1y", rangeParam(365))
	assert.Equal(t, "2y", rangeParam(500))
}
