package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/riskos/internal/eodhd"
)

func TestEODHDSource_Closes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/eod/AAPL.US":
			assert.Equal(t, "2024-03-01", r.URL.Query().Get("to"))
			assert.Equal(t, "2023-11-30", r.URL.Query().Get("from"))
			assert.Equal(t, "d", r.URL.Query().Get("period"))
			_, _ = w.Write([]byte(`[{"date":"2024-02-28","close":10,"adjusted_close":9.5},{"date":"2024-02-29","close":11}]`))
		case "/eod/BRK-B.US":
			_, _ = w.Write([]byte(`[{"date":"2024-02-29","close":400}]`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := eodhd.NewClient("key", eodhd.WithBaseURL(server.URL), eodhd.WithRateLimit(100))
	source := NewEODHDSource(client, nil, 92, 2)
	source.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	results := source.Closes(context.Background(), []string{"aapl", "BRK.B", "NOPE"})
	require.Len(t, results, 3)

	assert.Equal(t, []float64{9.5, 11}, results["AAPL"].Closes)
	assert.Equal(t, 2, results["AAPL"].Points)
	assert.Empty(t, results["AAPL"].Error)
	assert.Equal(t, "2024-02-29", results["AAPL"].LastDate)
	assert.False(t, results["AAPL"].Stale)

	assert.Equal(t, []float64{400}, results["BRK.B"].Closes)

	assert.True(t, strings.Contains(results["NOPE"].Error, "NOPE.US"))
	assert.Empty(t, results["NOPE"].Closes)
}

func TestEODHDSource_NoAPIKey(t *testing.T) {
	source := NewEODHDSource(eodhd.NewClient(""), nil, 0, 0)

	results := source.Closes(context.Background(), []string{"AAPL"})
	require.Contains(t, results, "AAPL")
	assert.Equal(t, ErrNoAPIKey, results["AAPL"].Error)
}
