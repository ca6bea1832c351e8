package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/seguido/seguido/internal/order"
)

// RawRecord is an untyped record as read from a slot or an imported backup.
// Legacy data and external imports arrive in unknown shapes; sanitizeRecord
// is the only path from RawRecord to a typed order.Order.
type RawRecord map[string]any

// Placeholder values for fields missing from legacy or imported records.
const (
	defaultTitle       = "Pedido sin título"
	defaultProductName = "Producto desconocido"
	defaultItemName    = "Producto"
	defaultStoreName   = "Tienda desconocida"
	defaultCurrency    = "EUR"
)

// sanitizeRecord normalizes an untyped record into a fully populated Order.
//
// Applied uniformly to every record regardless of which slot or file it came
// from: unrecognized statuses default to Ordered, missing items are
// synthesized from the legacy flat product field, every optional field gets a
// safe zero value, and a missing id is assigned. Structured-but-wrong data is
// defaulted, never rejected.
func sanitizeRecord(raw RawRecord, now time.Time, newID func() string) order.Order {
	status := order.Status(stringField(raw, "status"))
	if !status.Valid() {
		status = order.StatusOrdered
	}

	product := stringField(raw, "productName")
	items := rawItems(raw["items"])

	// Legacy migration: records that predate per-item tracking carry only
	// the flat product description. One item per non-empty line, whole
	// field as a single item when splitting yields nothing. The placeholder
	// keeps the non-empty-items invariant even when the field is absent.
	if len(items) == 0 {
		src := product
		if src == "" {
			src = defaultProductName
		}
		lines := splitProductLines(src)
		if len(lines) == 0 {
			lines = []string{src}
		}
		for _, line := range lines {
			items = append(items, order.Item{Name: line, Status: status})
		}
	}

	for i := range items {
		if items[i].Name == "" {
			items[i].Name = defaultItemName
		}
		if !items[i].Status.Valid() {
			items[i].Status = status
		}
	}

	title := stringField(raw, "title")
	if title == "" {
		title = product
	}
	if title == "" {
		title = defaultTitle
	}
	if product == "" {
		product = defaultProductName
	}

	storeName := stringField(raw, "storeName")
	if storeName == "" {
		storeName = defaultStoreName
	}
	date := stringField(raw, "date")
	if date == "" {
		date = now.Format("2006-01-02")
	}
	currency := stringField(raw, "currency")
	if currency == "" {
		currency = defaultCurrency
	}
	category := order.Category(stringField(raw, "category"))
	if !category.Valid() {
		category = order.CategoryPersonal
	}
	id := stringField(raw, "id")
	if id == "" {
		id = newID()
	}

	return order.Order{
		ID:              id,
		Title:           title,
		Date:            date,
		ProductName:     product,
		Items:           items,
		StoreName:       storeName,
		Amount:          numberField(raw, "amount"),
		Currency:        currency,
		Status:          status,
		Category:        category,
		OrderReference:  stringField(raw, "orderReference"),
		OrderURL:        stringField(raw, "orderUrl"),
		TrackingNumber:  stringField(raw, "trackingNumber"),
		Carrier:         stringField(raw, "carrier"),
		InvoiceFileName: stringField(raw, "invoiceFileName"),
		Notes:           stringField(raw, "notes"),
		ContactInfo:     stringField(raw, "contactInfo"),
		ReceivedDate:    stringField(raw, "receivedDate"),
	}
}

// rawItems extracts item entries from an untyped items value.
// Non-array values and non-object entries are dropped; per-item defaults are
// applied by the caller.
func rawItems(v any) []order.Item {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var items []order.Item
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, order.Item{
			Name:   stringField(m, "name"),
			Status: order.Status(stringField(m, "status")),
		})
	}
	return items
}

// splitProductLines splits a flat product description on newline or bullet
// boundaries into trimmed, non-empty lines.
func splitProductLines(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '•'
	})
	var lines []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// stringField returns the field as a string, or "" when absent or not a string.
func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// numberField coerces the field to a float64.
// JSON numbers arrive as float64; numeric strings are parsed for tolerance
// with hand-edited backups. Anything else is 0.
func numberField(raw map[string]any, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}
