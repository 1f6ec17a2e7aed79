package quotes

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/pkg/httputil"
	"github.com/wonny/qmoney/pkg/logger"
)

// ProviderAlphavantage is the Alpha Vantage daily series provider name
const ProviderAlphavantage = "alphavantage"

// AlphavantageClient fetches TIME_SERIES_DAILY from Alpha Vantage
type AlphavantageClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewAlphavantageClient creates a new Alpha Vantage client
func NewAlphavantageClient(httpClient *httputil.Client, baseURL, apiKey string, log *logger.Logger) *AlphavantageClient {
	return &AlphavantageClient{
		httpClient: httpClient,
		logger:     log.WithField("provider", ProviderAlphavantage),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Name returns "alphavantage"
func (c *AlphavantageClient) Name() string {
	return ProviderAlphavantage
}

type alphavantageResponse struct {
	TimeSeries   map[string]alphavantageCandle `json:"Time Series (Daily)"`
	ErrorMessage string                        `json:"Error Message"`
	Note         string                        `json:"Note"`
}

// Alpha Vantage sends prices as strings
type alphavantageCandle struct {
	Open  string `json:"1. open"`
	High  string `json:"2. high"`
	Low   string `json:"3. low"`
	Close string `json:"4. close"`
}

// GetQuote returns the full daily series filtered to [from, to], oldest first.
// The API has no date range parameter.
func (c *AlphavantageClient) GetQuote(ctx context.Context, symbol string, from, to time.Time) ([]contracts.Candle, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")
	params.Set("apikey", c.apiKey)

	fullURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	var raw alphavantageResponse
	if err := getJSON(ctx, c.httpClient, fullURL, &raw); err != nil {
		return nil, &ServiceError{Provider: ProviderAlphavantage, Symbol: symbol, Err: err}
	}

	if raw.TimeSeries == nil {
		err := ErrInvalidResponse
		switch {
		case raw.ErrorMessage != "":
			err = fmt.Errorf("%w: %s", ErrInvalidResponse, raw.ErrorMessage)
		case raw.Note != "":
			err = fmt.Errorf("%w: %s", ErrInvalidResponse, raw.Note)
		}
		return nil, &ServiceError{Provider: ProviderAlphavantage, Symbol: symbol, Err: err}
	}

	candles, err := parseAlphavantageSeries(raw.TimeSeries, from, to)
	if err != nil {
		return nil, &ServiceError{Provider: ProviderAlphavantage, Symbol: symbol, Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(candles),
		"series": len(raw.TimeSeries),
	}).Debug("Fetched candles")

	return candles, nil
}

// parseAlphavantageSeries keeps the dates in [from, to] and sorts them ascending
func parseAlphavantageSeries(series map[string]alphavantageCandle, from, to time.Time) ([]contracts.Candle, error) {
	from = contracts.TruncateDate(from)
	to = contracts.TruncateDate(to)

	candles := make([]contracts.Candle, 0)
	for day, bar := range series {
		date, err := contracts.ParseDate(day)
		if err != nil {
			return nil, err
		}
		if date.Before(from) || date.After(to) {
			continue
		}

		candle := contracts.Candle{Date: date}
		fields := []struct {
			raw string
			dst *float64
		}{
			{bar.Open, &candle.Open},
			{bar.High, &candle.High},
			{bar.Low, &candle.Low},
			{bar.Close, &candle.Close},
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f.raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: parse price %q: %w", day, f.raw, err)
			}
			*f.dst = v
		}

		candles = append(candles, candle)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	return candles, nil
}
