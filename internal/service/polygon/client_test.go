package polygon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockSense/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightsFollowsPagesAndFiltersTicker(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "" {
			assert.Equal(t, "/v2/reference/news", r.URL.Path)
			assert.Equal(t, "AAPL", r.URL.Query().Get("ticker"))
			assert.Equal(t, "2024-03-01", r.URL.Query().Get("published_utc"))
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"status":"OK","results":[{"id":"1","insights":[
				{"ticker":"AAPL","sentiment":"positive","sentiment_reasoning":"strong iPhone sales"},
				{"ticker":"MSFT","sentiment":"negative","sentiment_reasoning":"unrelated"}]}],
				"next_url":"` + srv.URL + `/v2/reference/news?cursor=abc"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"id":"2","insights":[
			{"ticker":"aapl","sentiment":"neutral","sentiment_reasoning":"mixed guidance"}]}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "secret", BaseURL: srv.URL, Timeout: time.Second})
	out, err := c.Insights(context.Background(), "AAPL", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []models.Sentiment{
		{Date: "2024-03-01", Sentiment: "positive", SentimentReasoning: "strong iPhone sales", Ticker: "AAPL"},
		{Date: "2024-03-01", Sentiment: "neutral", SentimentReasoning: "mixed guidance", Ticker: "AAPL"},
	}, out)
}

func TestInsightsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"ERROR"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Insights(context.Background(), "AAPL", "2024-03-01")
	assert.ErrorIs(t, err, models.ErrUpstreamService)
}
