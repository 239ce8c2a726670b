package commission

import "github.com/shopspring/decimal"

// Breakdown is the result of splitting an order total between the platform
// and the seller.
type Breakdown struct {
	Total      decimal.Decimal `json:"total"`
	Rate       decimal.Decimal `json:"rate"`
	Commission decimal.Decimal `json:"commission"`
	NetAmount  decimal.Decimal `json:"net_amount"`
}

var oneHundred = decimal.NewFromInt(100)

// Split computes the platform commission on a TTC total. Rate is a percentage
// (10 means 10%). The commission is rounded half-up to the cent and the net
// is the exact remainder, so commission + net always equals total.
func Split(total, rate decimal.Decimal) Breakdown {
	commission := total.Mul(rate).Div(oneHundred).Round(2)
	return Breakdown{
		Total:      total,
		Rate:       rate,
		Commission: commission,
		NetAmount:  total.Sub(commission),
	}
}
