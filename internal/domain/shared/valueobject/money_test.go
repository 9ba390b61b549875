package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(100), BDT)
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, BDT, m.Currency())

	_, err = NewMoney(decimal.NewFromInt(100), "")
	assert.Error(t, err)
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyBDTFromFloat(300.50)
	b := NewMoneyBDTFromFloat(199.50)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(500)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(101)))

	usd, _ := NewMoney(decimal.NewFromInt(1), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
	_, err = a.Subtract(usd)
	assert.Error(t, err)
}

func TestMoney_NegativeAllowed(t *testing.T) {
	// Totals are never clamped; a fixed discount larger than the base
	// surfaces as a negative amount.
	m := NewMoneyBDTFromFloat(100).MustSubtract(NewMoneyBDTFromFloat(250))
	assert.True(t, m.IsNegative())
	assert.Equal(t, "-150.00 BDT", m.String())
}

func TestMoney_ApplyPercentDiscount(t *testing.T) {
	m := NewMoneyBDT(decimal.NewFromInt(1000))
	discounted := m.ApplyPercentDiscount(decimal.NewFromInt(10))
	assert.True(t, discounted.Amount().Equal(decimal.NewFromInt(900)))

	// Zero percent leaves amount untouched
	same := m.ApplyPercentDiscount(decimal.Zero)
	assert.True(t, same.Equals(m))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyBDTFromFloat(123.45)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.50"))
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(42.5)))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(42))
}
