package service

import (
	"tpv/model"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Sum adds amounts in decimal and rounds the result to cents.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}

func lineAmount(price float64, qty int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))).Round(2).InexactFloat64()
}

// PaymentTotal sums the payment breakdown of every closed table.
func PaymentTotal(closed []model.ClosedTable) float64 {
	values := make([]float64, 0, len(closed)*2)
	for _, t := range closed {
		values = append(values, t.PaymentMethod.Cash, t.PaymentMethod.Card)
	}
	return Sum(values...)
}
