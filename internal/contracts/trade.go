package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptySymbol is returned when a trade has no symbol
	ErrEmptySymbol = errors.New("trade symbol is empty")
	// ErrMissingPurchaseDate is returned when a trade has no purchase date
	ErrMissingPurchaseDate = errors.New("trade purchase date is missing")
)

// TradeType is informational only; returns are computed the same way for both
type TradeType string

const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// Trade is a single holding whose return is computed against a common end date
type Trade struct {
	Symbol       string
	PurchaseDate time.Time
	Quantity     float64   // optional
	TradeType    TradeType // optional
}

// Validate checks the fields a return computation needs
func (t Trade) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return ErrEmptySymbol
	}
	if t.PurchaseDate.IsZero() {
		return fmt.Errorf("%s: %w", t.Symbol, ErrMissingPurchaseDate)
	}
	return nil
}

type tradeJSON struct {
	Symbol       string    `json:"symbol"`
	PurchaseDate string    `json:"purchaseDate"`
	Quantity     float64   `json:"quantity,omitempty"`
	TradeType    TradeType `json:"tradeType,omitempty"`
}

// MarshalJSON writes the purchase date as YYYY-MM-DD
func (t Trade) MarshalJSON() ([]byte, error) {
	out := tradeJSON{
		Symbol:    t.Symbol,
		Quantity:  t.Quantity,
		TradeType: t.TradeType,
	}
	if !t.PurchaseDate.IsZero() {
		out.PurchaseDate = t.PurchaseDate.Format(DateLayout)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads {"symbol": "AAPL", "purchaseDate": "2019-01-02"}
func (t *Trade) UnmarshalJSON(data []byte) error {
	var in tradeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var purchaseDate time.Time
	if in.PurchaseDate != "" {
		d, err := ParseDate(in.PurchaseDate)
		if err != nil {
			return fmt.Errorf("trade %s: %w", in.Symbol, err)
		}
		purchaseDate = d
	}

	*t = Trade{
		Symbol:       strings.TrimSpace(in.Symbol),
		PurchaseDate: purchaseDate,
		Quantity:     in.Quantity,
		TradeType:    TradeType(strings.ToUpper(string(in.TradeType))),
	}
	return nil
}
