package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
)

// DaysPerYear is the mean tropical year used to turn days into years
const DaysPerYear = 365.2422

// CalculateAnnualizedReturn computes the total and annualized return of a
// position bought at buyPrice on purchaseDate and valued at sellPrice on endDate.
//
//	years      = days(purchaseDate, endDate) / 365.2422
//	total      = (sell - buy) / buy
//	annualized = (1 + total)^(1/years) - 1
//
// A zero holding period or a zero buy price is ErrInvalidDateRange.
// Nothing else is checked: a negative base yields NaN from math.Pow, so
// callers that need a finite result must keep buy > 0 and sell >= 0.
func CalculateAnnualizedReturn(symbol string, purchaseDate, endDate time.Time, buyPrice, sellPrice float64) (contracts.AnnualizedReturn, error) {
	days := contracts.DaysBetween(purchaseDate, endDate)
	if days == 0 {
		return contracts.AnnualizedReturn{}, fmt.Errorf("%w: purchase date equals end date %s",
			ErrInvalidDateRange, endDate.Format(contracts.DateLayout))
	}
	if buyPrice == 0 {
		return contracts.AnnualizedReturn{}, fmt.Errorf("%w: buy price is zero", ErrInvalidDateRange)
	}

	years := float64(days) / DaysPerYear
	totalReturn := (sellPrice - buyPrice) / buyPrice
	annualized := math.Pow(1+totalReturn, 1/years) - 1

	return contracts.AnnualizedReturn{
		Symbol:           symbol,
		AnnualizedReturn: annualized,
		TotalReturn:      totalReturn,
	}, nil
}
