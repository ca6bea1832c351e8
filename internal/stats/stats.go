// Package stats computes spend summaries over the order collection.
// Sums use decimal arithmetic so repeated additions of cent amounts never
// drift the way float accumulation does.
package stats

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/seguido/seguido/internal/order"
)

// Totals summarizes spend for the whole collection and the current periods.
type Totals struct {
	AllTime decimal.Decimal
	Year    decimal.Decimal
	Month   decimal.Decimal
}

// Compute sums order amounts: all time, current calendar year and current
// calendar month relative to now. Orders with an unparseable purchase date
// still count toward the all-time total but not the period totals.
func Compute(orders []order.Order, now time.Time) Totals {
	t := Totals{
		AllTime: decimal.Zero,
		Year:    decimal.Zero,
		Month:   decimal.Zero,
	}
	for _, o := range orders {
		amount := decimal.NewFromFloat(o.Amount)
		t.AllTime = t.AllTime.Add(amount)

		d, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		if d.Year() == now.Year() {
			t.Year = t.Year.Add(amount)
			if d.Month() == now.Month() {
				t.Month = t.Month.Add(amount)
			}
		}
	}
	return t
}

// esPrinter renders numbers with Spanish conventions (dot thousands,
// comma decimals), matching the audience of the exported data.
var esPrinter = message.NewPrinter(language.Spanish)

// FormatAmount renders a monetary amount for display, e.g. "1.234,50 EUR".
func FormatAmount(d decimal.Decimal, currency string) string {
	f, _ := d.Round(2).Float64()
	return esPrinter.Sprintf("%.2f %s", f, currency)
}
