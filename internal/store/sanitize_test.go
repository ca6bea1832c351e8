package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seguido/seguido/internal/order"
	"github.com/seguido/seguido/internal/testutil"
)

var sanitizeNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func sanitize(t *testing.T, raw RawRecord) order.Order {
	t.Helper()
	ids := testutil.NewSequentialIDs("gen")
	return sanitizeRecord(raw, sanitizeNow, ids.Next)
}

func TestSanitizeRecord_EmptyRecord(t *testing.T) {
	o := sanitize(t, RawRecord{})

	assert.Equal(t, "gen-1", o.ID)
	assert.Equal(t, "Pedido sin título", o.Title)
	assert.Equal(t, "Producto desconocido", o.ProductName)
	assert.Equal(t, "Tienda desconocida", o.StoreName)
	assert.Equal(t, "2025-06-15", o.Date)
	assert.Equal(t, "EUR", o.Currency)
	assert.Equal(t, order.StatusOrdered, o.Status)
	assert.Equal(t, order.CategoryPersonal, o.Category)
	assert.Zero(t, o.Amount)

	require.Len(t, o.Items, 1, "an order never has zero items")
	assert.Equal(t, "Producto desconocido", o.Items[0].Name)
	assert.Equal(t, order.StatusOrdered, o.Items[0].Status)
}

func TestSanitizeRecord_CompleteRecordUntouched(t *testing.T) {
	o := sanitize(t, RawRecord{
		"id":             "o1",
		"title":          "Auriculares",
		"date":           "2025-03-01",
		"productName":    "Auriculares BT500",
		"items":          []any{map[string]any{"name": "Auriculares BT500", "status": "Enviado"}},
		"storeName":      "Amazon",
		"amount":         59.9,
		"currency":       "USD",
		"status":         "Enviado",
		"category":       "familiar",
		"trackingNumber": "1Z999",
		"receivedDate":   "2025-03-05",
	})

	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "Auriculares", o.Title)
	assert.Equal(t, "2025-03-01", o.Date)
	assert.Equal(t, 59.9, o.Amount)
	assert.Equal(t, "USD", o.Currency)
	assert.Equal(t, order.StatusShipped, o.Status)
	assert.Equal(t, order.CategoryFamiliar, o.Category)
	assert.Equal(t, "1Z999", o.TrackingNumber)
	assert.Equal(t, "2025-03-05", o.ReceivedDate)
	require.Len(t, o.Items, 1)
	assert.Equal(t, order.StatusShipped, o.Items[0].Status)
}

func TestSanitizeRecord_ItemsFromFlatProduct(t *testing.T) {
	tests := []struct {
		name    string
		product string
		status  string
		want    []order.Item
	}{
		{
			name:    "newline separated",
			product: "Bufanda\nGuantes",
			status:  "Enviado",
			want: []order.Item{
				{Name: "Bufanda", Status: order.StatusShipped},
				{Name: "Guantes", Status: order.StatusShipped},
			},
		},
		{
			name:    "bulleted lines",
			product: "• Bufanda\n• Guantes",
			status:  "Pendiente",
			want: []order.Item{
				{Name: "Bufanda", Status: order.StatusOrdered},
				{Name: "Guantes", Status: order.StatusOrdered},
			},
		},
		{
			name:    "single line",
			product: "Cargador USB-C",
			status:  "Recibido",
			want:    []order.Item{{Name: "Cargador USB-C", Status: order.StatusReceived}},
		},
		{
			name:    "blank lines skipped",
			product: "Bufanda\n\n  \nGuantes",
			status:  "Pendiente",
			want: []order.Item{
				{Name: "Bufanda", Status: order.StatusOrdered},
				{Name: "Guantes", Status: order.StatusOrdered},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := sanitize(t, RawRecord{"productName": tt.product, "status": tt.status})
			assert.Equal(t, tt.want, o.Items)
		})
	}
}

func TestSanitizeRecord_ItemDefaults(t *testing.T) {
	o := sanitize(t, RawRecord{
		"status": "Enviado",
		"items": []any{
			map[string]any{"name": "", "status": "basura"},
			map[string]any{"name": "Cable"},
			"not an object",
		},
	})

	require.Len(t, o.Items, 2, "non-object entries are dropped")
	assert.Equal(t, "Producto", o.Items[0].Name)
	assert.Equal(t, order.StatusShipped, o.Items[0].Status,
		"invalid item status falls back to the order status")
	assert.Equal(t, "Cable", o.Items[1].Name)
	assert.Equal(t, order.StatusShipped, o.Items[1].Status)
}

func TestSanitizeRecord_TitleFallsBackToProduct(t *testing.T) {
	o := sanitize(t, RawRecord{"productName": "Cargador USB-C"})
	assert.Equal(t, "Cargador USB-C", o.Title)
}

func TestSanitizeRecord_InvalidStatusDefaultsToOrdered(t *testing.T) {
	o := sanitize(t, RawRecord{"status": "delivered"})
	assert.Equal(t, order.StatusOrdered, o.Status)
}

func TestNumberField(t *testing.T) {
	raw := map[string]any{
		"float":   42.5,
		"string":  "19.99",
		"padded":  " 7 ",
		"garbage": "unos veinte euros",
		"object":  map[string]any{},
	}

	assert.Equal(t, 42.5, numberField(raw, "float"))
	assert.Equal(t, 19.99, numberField(raw, "string"))
	assert.Equal(t, 7.0, numberField(raw, "padded"))
	assert.Zero(t, numberField(raw, "garbage"))
	assert.Zero(t, numberField(raw, "object"))
	assert.Zero(t, numberField(raw, "missing"))
}
