package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// AnnualizedReturn is the successful outcome of one trade
type AnnualizedReturn struct {
	Symbol           string
	AnnualizedReturn float64
	TotalReturn      float64
}

// MarshalJSON writes non-finite values as null
func (r AnnualizedReturn) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol           string   `json:"symbol"`
		AnnualizedReturn *float64 `json:"annualizedReturn"`
		TotalReturn      *float64 `json:"totalReturn"`
	}{
		Symbol:           r.Symbol,
		AnnualizedReturn: finite(r.AnnualizedReturn),
		TotalReturn:      finite(r.TotalReturn),
	})
}

// UnmarshalJSON reads null back as NaN
func (r *AnnualizedReturn) UnmarshalJSON(data []byte) error {
	var in struct {
		Symbol           string   `json:"symbol"`
		AnnualizedReturn *float64 `json:"annualizedReturn"`
		TotalReturn      *float64 `json:"totalReturn"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Symbol = in.Symbol
	r.AnnualizedReturn = orNaN(in.AnnualizedReturn)
	r.TotalReturn = orNaN(in.TotalReturn)
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// FailureKind classifies why a trade produced no return
type FailureKind int

const (
	FailureNoData FailureKind = iota + 1
	FailureServiceError
	FailureInvalidDateRange
)

var failureKindNames = map[FailureKind]string{
	FailureNoData:           "no_data",
	FailureServiceError:     "service_error",
	FailureInvalidDateRange: "invalid_date_range",
}

func (k FailureKind) String() string {
	if name, ok := failureKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("failure_kind(%d)", int(k))
}

// MarshalText encodes the kind by name
func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *FailureKind) UnmarshalText(text []byte) error {
	for kind, name := range failureKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown failure kind %q", string(text))
}

// TaskFailure is the failed outcome of one trade
type TaskFailure struct {
	Symbol  string      `json:"symbol"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f TaskFailure) Error() string {
	return fmt.Sprintf("%s: %s: %s", f.Symbol, f.Kind, f.Message)
}

// Outcome holds exactly one of Result or Failure
type Outcome struct {
	Result  *AnnualizedReturn
	Failure *TaskFailure
}

// Succeeded wraps a computed return
func Succeeded(r AnnualizedReturn) Outcome {
	return Outcome{Result: &r}
}

// Failed wraps a task failure
func Failed(symbol string, kind FailureKind, message string) Outcome {
	return Outcome{Failure: &TaskFailure{Symbol: symbol, Kind: kind, Message: message}}
}

// OK reports whether the outcome is a computed return
func (o Outcome) OK() bool {
	return o.Result != nil
}

// Symbol returns the trade symbol of either variant
func (o Outcome) Symbol() string {
	if o.Result != nil {
		return o.Result.Symbol
	}
	if o.Failure != nil {
		return o.Failure.Symbol
	}
	return ""
}

// Report is a finished batch as served by the API and persisted by history/snapshot stores
type Report struct {
	EndDate     time.Time          `json:"endDate"`
	Provider    string             `json:"provider"`
	Results     []AnnualizedReturn `json:"results"`
	Failures    []TaskFailure      `json:"failures"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// TradeCount returns the number of trades the report covers
func (r *Report) TradeCount() int {
	return len(r.Results) + len(r.Failures)
}
