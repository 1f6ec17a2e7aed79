package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/pkg/httputil"
)

// Service fetches daily candles for a symbol
// ⭐ SSOT: 시세 조회는 이 인터페이스를 통해서만
type Service interface {
	// GetQuote returns the candles in [from, to], inclusive, in any order.
	// No candles is an empty slice, not an error.
	GetQuote(ctx context.Context, symbol string, from, to time.Time) ([]contracts.Candle, error)

	// Name is the provider name, e.g. "tiingo"
	Name() string
}

var (
	// ErrUnknownProvider is returned by NewService for an unsupported provider name
	ErrUnknownProvider = errors.New("unknown quote provider")
	// ErrInvalidResponse is returned when a provider answers 200 with an unexpected body
	ErrInvalidResponse = errors.New("invalid response")
)

// ServiceError wraps any provider failure: transport, status or decoding
type ServiceError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s quote for %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// getJSON fetches url and decodes a 200 body into out
func getJSON(ctx context.Context, client *httputil.Client, url string, out interface{}) error {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
