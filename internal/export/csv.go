// Package export renders the order collection into the interchange formats
// the tracker produces: the CSV purchase history and the versioned backup
// file. Output is byte-stable so golden tests can pin the formats.
package export

import (
	"strconv"
	"strings"

	"github.com/seguido/seguido/internal/order"
)

// CSVFileName is the fixed download name for the CSV export.
const CSVFileName = "tracker_export.csv"

var csvHeader = []string{"ID", "Ref", "Título", "Productos", "Tienda", "Fecha", "Entrega", "Importe", "Estado"}

// TerminalOrders returns the orders eligible for export: only terminal
// states (Received/Returned) appear in the purchase history.
func TerminalOrders(orders []order.Order) []order.Order {
	var out []order.Order
	for _, o := range orders {
		if o.Status.Terminal() {
			out = append(out, o)
		}
	}
	return out
}

// CSV renders the terminal orders as comma-separated text.
//
// Free-text fields (reference, title, products, store) are quote-wrapped
// with embedded quotes doubled; identifiers, dates, the amount and the
// status are emitted raw. Item names are joined with "; ".
func CSV(orders []order.Order) []byte {
	lines := []string{strings.Join(csvHeader, ",")}
	for _, o := range TerminalOrders(orders) {
		fields := []string{
			o.ID,
			quote(o.OrderReference),
			quote(o.Title),
			quote(strings.Join(o.ItemNames(), "; ")),
			quote(o.StoreName),
			o.Date,
			o.ReceivedDate,
			formatAmount(o.Amount),
			string(o.Status),
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return []byte(strings.Join(lines, "\n"))
}

// quote wraps a field in double quotes, doubling embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatAmount renders the amount with the shortest representation that
// round-trips, matching the original export (120 stays 120, not 120.00).
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
