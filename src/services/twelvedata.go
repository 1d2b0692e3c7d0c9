package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/quantfeeds/candlekeeper/src/models"
)

const (
	defaultBaseURL = "https://api.twelvedata.com"

	// One sync batch: 100 samples at the fixed 5-minute interval.
	fetchOutputSize = 100
	fetchInterval   = "5min"
)

// TimeSeriesProvider returns a bounded batch of raw candle records for a
// base/quote pair, newest first.
type TimeSeriesProvider interface {
	FetchTimeSeries(ctx context.Context, base, quote string) (*models.TimeSeriesResponse, error)
}

// TwelveDataClient fetches time series batches over HTTP.
type TwelveDataClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewTwelveDataClient(baseURL, apiKey string) *TwelveDataClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &TwelveDataClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *TwelveDataClient) FetchTimeSeries(ctx context.Context, base, quote string) (*models.TimeSeriesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/time_series", c.baseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("FetchTimeSeries: failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("symbol", fmt.Sprintf("%s/%s", base, quote))
	q.Add("interval", fetchInterval)
	q.Add("outputsize", strconv.Itoa(fetchOutputSize))
	q.Add("apikey", c.apiKey)
	q.Add("timezone", "UTC")

	req.URL.RawQuery = q.Encode()
	req.Header.Add("Accept", "application/json")

	log.Debugf("FetchTimeSeries: fetching %s/%s from %v", base, quote, c.baseURL)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FetchTimeSeries: failed to fetch time series: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FetchTimeSeries: failed to fetch time series, http code %v", res.Status)
	}

	var dto models.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("FetchTimeSeries: failed to decode json: %w", err)
	}

	return &dto, nil
}
