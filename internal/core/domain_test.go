package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    Currency
		wantErr bool
	}{
		{"USD", USD, false},
		{"cad", CAD, false},
		{" CNY ", CNY, false},
		{"", "", true},
		{"EUR", "", true},
		{"dollars", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if tt.wantErr {
				var badReq *BadRequestError
				assert.ErrorAs(t, err, &badReq)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertToUSD(t *testing.T) {
	got, err := ConvertToUSD(decimal.NewFromInt(50), decimal.RequireFromString("1.36"))
	require.NoError(t, err)
	// 50 / 1.36 rounds to 36.76 at cents precision.
	assert.Equal(t, "36.76", got.Round(2).String())

	_, err = ConvertToUSD(decimal.NewFromInt(50), decimal.Zero)
	assert.Error(t, err)
}

func TestUSDAmount(t *testing.T) {
	cadExpense := EntertainmentRecord{
		Amount:   decimal.RequireFromString("-50"),
		Currency: CAD,
		RateCAD:  decimal.RequireFromString("1.36"),
		RateCNY:  decimal.RequireFromString("7.25"),
	}
	usd, err := cadExpense.USDAmount()
	require.NoError(t, err)
	assert.Equal(t, "-36.76", usd.Round(2).String())

	usdRecharge := EntertainmentRecord{
		Amount:   decimal.NewFromInt(100),
		Currency: USD,
	}
	usd, err = usdRecharge.USDAmount()
	require.NoError(t, err)
	assert.True(t, usd.Equal(decimal.NewFromInt(100)))

	cnyExpense := EntertainmentRecord{
		Amount:   decimal.RequireFromString("-72.5"),
		Currency: CNY,
		RateCNY:  decimal.RequireFromString("7.25"),
	}
	usd, err = cnyExpense.USDAmount()
	require.NoError(t, err)
	assert.True(t, usd.Equal(decimal.NewFromInt(-10)))
}

func TestUSDAmountMissingRate(t *testing.T) {
	rec := EntertainmentRecord{
		Amount:   decimal.NewFromInt(-50),
		Currency: CAD,
	}
	_, err := rec.USDAmount()
	assert.Error(t, err)
}
