package quotes

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/pkg/httputil"
	"github.com/wonny/qmoney/pkg/logger"
)

// ProviderTiingo is the Tiingo end-of-day provider name
const ProviderTiingo = "tiingo"

// TiingoClient fetches daily prices from the Tiingo EOD API
type TiingoClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	token      string
}

// NewTiingoClient creates a new Tiingo client
func NewTiingoClient(httpClient *httputil.Client, baseURL, token string, log *logger.Logger) *TiingoClient {
	return &TiingoClient{
		httpClient: httpClient,
		logger:     log.WithField("provider", ProviderTiingo),
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// Name returns "tiingo"
func (c *TiingoClient) Name() string {
	return ProviderTiingo
}

type tiingoCandle struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	Close float64   `json:"close"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
}

// GetQuote calls GET /tiingo/daily/{symbol}/prices?startDate&endDate&token
func (c *TiingoClient) GetQuote(ctx context.Context, symbol string, from, to time.Time) ([]contracts.Candle, error) {
	params := url.Values{}
	params.Set("startDate", from.Format(contracts.DateLayout))
	params.Set("endDate", to.Format(contracts.DateLayout))
	params.Set("token", c.token)

	fullURL := fmt.Sprintf("%s/tiingo/daily/%s/prices?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var raw []tiingoCandle
	if err := getJSON(ctx, c.httpClient, fullURL, &raw); err != nil {
		return nil, &ServiceError{Provider: ProviderTiingo, Symbol: symbol, Err: err}
	}

	candles := make([]contracts.Candle, 0, len(raw))
	for _, r := range raw {
		candles = append(candles, contracts.Candle{
			Date:  contracts.TruncateDate(r.Date),
			Open:  r.Open,
			Close: r.Close,
			High:  r.High,
			Low:   r.Low,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(candles),
	}).Debug("Fetched candles")

	return candles, nil
}
