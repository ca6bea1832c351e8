// Package order defines the purchase tracking data model.
//
// Wire compatibility: Status values and JSON field names match the
// serialization used by the original tracker, so collections persisted by
// earlier versions load without translation.
package order

// Status is an order or item lifecycle state.
//
// The lifecycle is totally ordered with two partial states and two side
// branches:
//
//	Ordered → PartiallyShipped → Shipped → PartiallyReceived → Received
//
// Returned is terminal and only reachable from Received. Claimed is an
// incident flag reachable from any non-terminal state; it is layered on top
// of item progress and never derived from items.
type Status string

const (
	StatusOrdered           Status = "Pendiente"
	StatusPartiallyShipped  Status = "Parcialmente Enviado"
	StatusShipped           Status = "Enviado"
	StatusPartiallyReceived Status = "Parcialmente Recibido"
	StatusReceived          Status = "Recibido"
	StatusReturned          Status = "Devuelto"
	StatusClaimed           Status = "Reclamado"
)

// AllStatuses lists every recognized lifecycle value, in lifecycle order.
var AllStatuses = []Status{
	StatusOrdered,
	StatusPartiallyShipped,
	StatusShipped,
	StatusPartiallyReceived,
	StatusReceived,
	StatusReturned,
	StatusClaimed,
}

// Valid reports whether s is one of the recognized lifecycle values.
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the order's active lifecycle.
// Terminal orders appear in history and in the CSV export.
func (s Status) Terminal() bool {
	return s == StatusReceived || s == StatusReturned
}

// Category classifies who a purchase was for.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryFamiliar Category = "familiar"
)

// Valid reports whether c is a recognized category.
func (c Category) Valid() bool {
	return c == CategoryPersonal || c == CategoryFamiliar
}

// Item is one purchased line within an order. Items progress through the
// lifecycle independently; the order's aggregate status is derived from them.
type Item struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Order aggregates one or more Items plus purchase metadata.
//
// Invariant: Status is always derivable from Items via the reconciliation
// rule, except for the Claimed override. Items is non-empty once persisted
// (the store backfills it from ProductName for legacy records). ID is unique
// and immutable once assigned.
type Order struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"` // purchase date, YYYY-MM-DD

	// ProductName is the legacy flat product description, kept for
	// compatibility and as a visual summary. Items is the authoritative
	// per-line breakdown.
	ProductName string `json:"productName"`
	Items       []Item `json:"items"`

	StoreName string   `json:"storeName"`
	Amount    float64  `json:"amount"`
	Currency  string   `json:"currency"`
	Status    Status   `json:"status"`
	Category  Category `json:"category"`

	OrderReference  string `json:"orderReference"`
	OrderURL        string `json:"orderUrl"`
	TrackingNumber  string `json:"trackingNumber"`
	Carrier         string `json:"carrier"`
	InvoiceFileName string `json:"invoiceFileName"`
	Notes           string `json:"notes"`
	ContactInfo     string `json:"contactInfo"`
	ReceivedDate    string `json:"receivedDate"` // YYYY-MM-DD, set on receipt
}

// ItemNames returns the names of all items, in order.
func (o *Order) ItemNames() []string {
	names := make([]string, len(o.Items))
	for i, it := range o.Items {
		names[i] = it.Name
	}
	return names
}

// CloneItems returns a copy of the order's item slice.
// Transition operations mutate copies, never the caller's slice.
func (o *Order) CloneItems() []Item {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	return items
}
