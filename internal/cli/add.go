package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguido/seguido/internal/order"
	"github.com/seguido/seguido/internal/store"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Title    string
	Store    string
	Amount   float64
	Currency string
	Date     string
	Category string
	Items    []string
	Product  string
	Ref      string
	URL      string
	Tracking string
	Carrier  string
	Invoice  string
	Notes    string
	Contact  string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new purchase",
		Long: `Record a new purchase in Ordered state.

Each --item flag adds one product line; lines progress through the
lifecycle independently (ship and receive them one by one). When no
--item is given, --product is used as a single line.

Examples:
  seguido add --title "Auriculares" --store Amazon --amount 59.90 --item "Auriculares BT500"
  seguido add --title "Regalos" --store "El Corte Inglés" --amount 120 \
      --item "Bufanda" --item "Guantes" --category familiar`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "short descriptive title (required)")
	cmd.Flags().StringVar(&opts.Store, "store", "", "store name (required)")
	cmd.Flags().Float64Var(&opts.Amount, "amount", 0, "total amount (required, positive)")
	cmd.Flags().StringVar(&opts.Currency, "currency", "", "currency code (default from config)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "purchase date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.Category, "category", "personal", "category (personal|familiar)")
	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "product line (repeatable)")
	cmd.Flags().StringVar(&opts.Product, "product", "", "flat product description (fallback when no --item)")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "order reference")
	cmd.Flags().StringVar(&opts.URL, "url", "", "order URL")
	cmd.Flags().StringVar(&opts.Tracking, "tracking", "", "tracking number")
	cmd.Flags().StringVar(&opts.Carrier, "carrier", "", "carrier")
	cmd.Flags().StringVar(&opts.Invoice, "invoice", "", "invoice file name")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&opts.Contact, "contact", "", "support contact (email or URL)")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	adapter, cfg, cleanup, err := openAdapter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	o := buildOrder(opts, cfg.Currency, time.Now())
	if errs := validateOrderInput(o); len(errs) > 0 {
		return failValidation(f, errs)
	}

	if _, err := adapter.SaveOrder(cmd.Context(), o); err != nil {
		return persistError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(o)
	}
	return f.Success("Saved order " + o.ID)
}

// buildOrder assembles an Order from add flags. The aggregate status is
// recomputed at save time; Ordered here is just the starting point.
func buildOrder(opts *AddOptions, defaultCurrency string, now time.Time) order.Order {
	var items []order.Item
	for _, name := range opts.Items {
		if name = strings.TrimSpace(name); name != "" {
			items = append(items, order.Item{Name: name, Status: order.StatusOrdered})
		}
	}
	if len(items) == 0 && strings.TrimSpace(opts.Product) != "" {
		items = []order.Item{{Name: strings.TrimSpace(opts.Product), Status: order.StatusOrdered}}
	}

	product := opts.Product
	if product == "" {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = it.Name
		}
		product = strings.Join(names, "\n")
	}

	currency := opts.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	date := opts.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}
	category := order.Category(opts.Category)
	if !category.Valid() {
		category = order.CategoryPersonal
	}

	return order.Order{
		ID:              store.NewID(),
		Title:           strings.TrimSpace(opts.Title),
		Date:            date,
		ProductName:     product,
		Items:           items,
		StoreName:       strings.TrimSpace(opts.Store),
		Amount:          opts.Amount,
		Currency:        currency,
		Status:          order.StatusOrdered,
		Category:        category,
		OrderReference:  opts.Ref,
		OrderURL:        opts.URL,
		TrackingNumber:  opts.Tracking,
		Carrier:         opts.Carrier,
		InvoiceFileName: opts.Invoice,
		Notes:           opts.Notes,
		ContactInfo:     opts.Contact,
	}
}

// persistError maps a failed write to the right exit semantics: capacity
// failures surface prominently; the previously persisted state is intact
// either way.
func persistError(f *OutputFormatter, err error) error {
	if store.IsQuotaError(err) {
		_ = f.Error("E_QUOTA", "storage is full; nothing was saved", nil)
		return WrapExitError(ExitFailure, "storage quota exceeded", err)
	}
	_ = f.Error("E_STORE", "could not persist the collection", err.Error())
	return WrapExitError(ExitCommandError, "persist failed", err)
}
