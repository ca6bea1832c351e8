package export

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/seguido/seguido/internal/order"
)

func exportFixture() []order.Order {
	return []order.Order{
		{
			ID:             "a1",
			Title:          `Auriculares "Pro"`,
			Date:           "2025-03-10",
			ProductName:    "Auriculares BT500",
			Items:          []order.Item{{Name: "Auriculares BT500", Status: order.StatusReceived}},
			StoreName:      "Amazon",
			Amount:         59.9,
			Currency:       "EUR",
			Status:         order.StatusReceived,
			Category:       order.CategoryPersonal,
			OrderReference: "PED-001",
			ReceivedDate:   "2025-03-14",
		},
		{
			ID:          "b2",
			Title:       "Libros",
			Date:        "2025-04-01",
			ProductName: "Novela negra\nEnsayo",
			Items: []order.Item{
				{Name: "Novela negra", Status: order.StatusReturned},
				{Name: "Ensayo", Status: order.StatusReturned},
			},
			StoreName: "Casa del Libro",
			Amount:    34,
			Currency:  "EUR",
			Status:    order.StatusReturned,
			Category:  order.CategoryPersonal,
		},
		{
			// Still in flight; must not appear in the export.
			ID:          "c3",
			Title:       "Teclado",
			Date:        "2025-05-02",
			ProductName: "Teclado mecánico",
			Items:       []order.Item{{Name: "Teclado mecánico", Status: order.StatusShipped}},
			StoreName:   "PcComponentes",
			Amount:      120,
			Currency:    "EUR",
			Status:      order.StatusShipped,
			Category:    order.CategoryPersonal,
		},
	}
}

func TestCSV_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "csv_export", CSV(exportFixture()))
}

func TestCSV_HeaderOnlyWhenNothingTerminal(t *testing.T) {
	active := []order.Order{{
		ID:     "c3",
		Status: order.StatusOrdered,
	}}
	got := string(CSV(active))
	assert.Equal(t, "ID,Ref,Título,Productos,Tienda,Fecha,Entrega,Importe,Estado", got)
}

func TestTerminalOrders(t *testing.T) {
	terminal := TerminalOrders(exportFixture())
	assert.Len(t, terminal, 2)
	for _, o := range terminal {
		assert.True(t, o.Status.Terminal())
	}

	assert.Empty(t, TerminalOrders(nil))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "120", formatAmount(120))
	assert.Equal(t, "59.9", formatAmount(59.9))
	assert.Equal(t, "0", formatAmount(0))
}
