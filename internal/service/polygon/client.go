package polygon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockSense/internal/domain/models"
	domsvc "StockSense/internal/domain/service"
	"StockSense/internal/service/metrics"
	xhttp "StockSense/pkg/http"

	"golang.org/x/time/rate"
)

const maxPages = 10

type insight struct {
	Ticker             string `json:"ticker"`
	Sentiment          string `json:"sentiment"`
	SentimentReasoning string `json:"sentiment_reasoning"`
}

type article struct {
	ID           string    `json:"id"`
	PublishedUTC string    `json:"published_utc"`
	Title        string    `json:"title"`
	Tickers      []string  `json:"tickers"`
	Insights     []insight `json:"insights"`
}

type newsResponse struct {
	Status  string    `json:"status"`
	Results []article `json:"results"`
	NextURL string    `json:"next_url"`
}

type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	PageLimit         int
}

// Client reads ticker news with per-article sentiment insights from Polygon.
type Client struct {
	http    *xhttp.Client
	cfg     Config
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 100
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &Client{
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Insights lists news published on day (YYYY-MM-DD) for ticker and returns
// one record per insight about that ticker. Pages are followed via next_url.
func (c *Client) Insights(ctx context.Context, ticker, day string) (out []models.Sentiment, err error) {
	start := time.Now()
	defer func() { metrics.Observe("polygon", "news", start, err) }()

	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    strings.TrimRight(c.cfg.BaseURL, "/") + "/v2/reference/news",
		QueryParams: map[string][]string{
			"ticker":        {ticker},
			"published_utc": {day},
			"limit":         {strconv.Itoa(c.cfg.PageLimit)},
			"apiKey":        {c.cfg.APIKey},
		},
	}

	for page := 0; page < maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		var resp newsResponse
		if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
			return nil, fmt.Errorf("%w: polygon news %s %s: %w", models.ErrUpstreamService, ticker, day, err)
		}
		for _, a := range resp.Results {
			for _, in := range a.Insights {
				if in.Ticker != "" && !strings.EqualFold(in.Ticker, ticker) {
					continue
				}
				out = append(out, models.Sentiment{
					Date:               day,
					Sentiment:          in.Sentiment,
					SentimentReasoning: in.SentimentReasoning,
					Ticker:             ticker,
				})
			}
		}
		if resp.NextURL == "" {
			break
		}
		opts = &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         resp.NextURL,
			QueryParams: map[string][]string{"apiKey": {c.cfg.APIKey}},
		}
	}
	return out, nil
}

var _ domsvc.NewsSource = (*Client)(nil)
