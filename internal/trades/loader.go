package trades

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wonny/qmoney/internal/contracts"
)

// Load reads a trades file from path. Files ending in .yaml or .yml are
// decoded as YAML, anything else as a JSON array.
func Load(path string) ([]contracts.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trades file: %w", err)
	}
	defer f.Close()

	decode := Decode
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decode = DecodeYAML
	}

	trades, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trades, nil
}

// Decode reads a JSON array of trades and validates each one.
// An empty input is an empty list.
func Decode(r io.Reader) ([]contracts.Trade, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trades: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []contracts.Trade{}, nil
	}

	var trades []contracts.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}

	return validate(trades)
}

// tradeYAML mirrors the JSON field names so both files look alike
type tradeYAML struct {
	Symbol       string  `yaml:"symbol"`
	PurchaseDate string  `yaml:"purchaseDate"`
	Quantity     float64 `yaml:"quantity"`
	TradeType    string  `yaml:"tradeType"`
}

// DecodeYAML reads a YAML sequence of trades. Unknown fields are rejected
// so a misspelled purchaseDate fails instead of silently reading as missing.
func DecodeYAML(r io.Reader) ([]contracts.Trade, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trades: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []contracts.Trade{}, nil
	}

	var raw []tradeYAML
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}

	trades := make([]contracts.Trade, 0, len(raw))
	for i, in := range raw {
		trade := contracts.Trade{
			Symbol:    strings.TrimSpace(in.Symbol),
			Quantity:  in.Quantity,
			TradeType: contracts.TradeType(strings.ToUpper(in.TradeType)),
		}
		if in.PurchaseDate != "" {
			d, err := contracts.ParseDate(in.PurchaseDate)
			if err != nil {
				return nil, fmt.Errorf("trade #%d: %w", i, err)
			}
			trade.PurchaseDate = d
		}
		trades = append(trades, trade)
	}

	return validate(trades)
}

func validate(trades []contracts.Trade) ([]contracts.Trade, error) {
	for i, trade := range trades {
		if err := trade.Validate(); err != nil {
			return nil, fmt.Errorf("trade #%d: %w", i, err)
		}
	}

	if trades == nil {
		trades = []contracts.Trade{}
	}
	return trades, nil
}

// Symbols returns the trade symbols in file order
func Symbols(trades []contracts.Trade) []string {
	symbols := make([]string, 0, len(trades))
	for _, t := range trades {
		symbols = append(symbols, t.Symbol)
	}
	return symbols
}
