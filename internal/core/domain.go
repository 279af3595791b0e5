package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts and rates serialize as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Stored exchange rates are units of foreign currency per 1 USD, so USD
// itself always converts at 1.
const (
	USD Currency = "USD"
	CAD Currency = "CAD"
	CNY Currency = "CNY"
)

type (
	Currency string

	// SavingsConfig is the singleton goal/interest-rate pair. It is only
	// ever updated, never deleted.
	SavingsConfig struct {
		Goal         decimal.Decimal
		InterestRate decimal.Decimal
	}

	// SavingsRecord is a single contribution. The CAD/CNY rates active at
	// creation time are snapshotted on the row; the savings total is always
	// recomputed as the sum of amounts, never maintained incrementally.
	SavingsRecord struct {
		ID        int64
		Amount    decimal.Decimal
		CreatedAt time.Time
		RateCAD   decimal.Decimal
		RateCNY   decimal.Decimal
	}

	// EntertainmentRecord is a ledger row. Amount is signed: positive for a
	// recharge, negative for an expense. Unlike the savings total, the
	// entertainment balance is maintained incrementally in USD on every
	// insert and delete.
	EntertainmentRecord struct {
		ID        int64
		Amount    decimal.Decimal
		Currency  Currency
		Note      string
		CreatedAt time.Time
		RateCAD   decimal.Decimal
		RateCNY   decimal.Decimal
	}

	// ExchangeRate is a singleton row per currency, overwritten on each
	// refresh.
	ExchangeRate struct {
		Currency  Currency
		Rate      decimal.Decimal
		UpdatedAt time.Time
	}

	// RatePair holds the two tracked rates together.
	RatePair struct {
		CAD ExchangeRate
		CNY ExchangeRate
	}
)

// ParseCurrency validates a currency code from a request body.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case USD:
		return USD, nil
	case CAD:
		return CAD, nil
	case CNY:
		return CNY, nil
	default:
		return "", BadRequest("unsupported currency %q", s)
	}
}

// ConvertToUSD converts an amount denominated in a foreign currency to USD
// given the rate in units of that currency per 1 USD.
func ConvertToUSD(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsZero() {
		return decimal.Zero, fmt.Errorf("cannot convert with zero rate")
	}
	return amount.Div(rate), nil
}

// USDAmount converts the record amount to USD using the rates snapshotted at
// insertion time, never the current rates. Deleting a record reverses exactly
// this value.
func (r EntertainmentRecord) USDAmount() (decimal.Decimal, error) {
	switch r.Currency {
	case USD:
		return r.Amount, nil
	case CAD:
		return ConvertToUSD(r.Amount, r.RateCAD)
	case CNY:
		return ConvertToUSD(r.Amount, r.RateCNY)
	default:
		return decimal.Zero, fmt.Errorf("record %d has unknown currency %q", r.ID, r.Currency)
	}
}
