package domain

import "fmt"

// Money is an amount in a currency's minor units (e.g. cents for USD).
// Using integral minor units keeps billing arithmetic exact.
type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

// NewMoney constructs a Money value.
func NewMoney(currency string, amount int64) Money {
	return Money{Currency: currency, Amount: amount}
}

// MultipliedBy returns the amount scaled by the given factor, rounded to
// the nearest minor unit. Used for fractional discounts.
func (m Money) MultipliedBy(factor float64) Money {
	scaled := float64(m.Amount) * factor
	rounded := int64(scaled + 0.5)
	if scaled < 0 {
		rounded = int64(scaled - 0.5)
	}
	return Money{Currency: m.Currency, Amount: rounded}
}

// Times returns the amount multiplied by an integral count (e.g. years).
func (m Money) Times(n int64) Money {
	return Money{Currency: m.Currency, Amount: m.Amount * n}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// String renders the money as "<amount> <currency>" in minor units.
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
