package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguido/seguido/internal/extract"
	"github.com/seguido/seguido/internal/order"
	"github.com/seguido/seguido/internal/store"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	File     string
	Save     bool
	Category string
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Extract order fields from a pasted confirmation email",
		Long: `Send pasted confirmation-email text to the AI extraction service
and print the structured fields it found. With --save the extraction is
recorded as a new order, subject to the same required-field validation
as manual entry — the service is never trusted to have produced valid
data.

Reads from stdin unless --file is given. Requires the API key in the
environment variable named by the config (GEMINI_API_KEY by default).

Examples:
  pbpaste | seguido parse
  seguido parse --file email.txt --save`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "read email text from file instead of stdin")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "save the extraction as a new order")
	cmd.Flags().StringVar(&opts.Category, "category", "personal", "category for the saved order")

	return cmd
}

func runParse(opts *ParseOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	text, err := readEmailText(opts, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "read email text", err)
	}
	if strings.TrimSpace(text) == "" {
		_ = f.Error("E_EMPTY_INPUT", "no email text to parse", nil)
		return NewExitError(ExitFailure, "empty input")
	}

	adapter, cfg, cleanup, err := openAdapter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	client := extract.NewClient(cfg.Extract.Endpoint, cfg.Extract.Model, os.Getenv(cfg.Extract.APIKeyEnv))

	result, err := client.Extract(cmd.Context(), text)
	if err != nil {
		// Extraction failing drops the user back to manual entry ("add"),
		// never into a stuck state.
		_ = f.Error("E_EXTRACT", fmt.Sprintf("extraction failed: %v; enter the order manually with 'seguido add'", err), nil)
		return WrapExitError(ExitFailure, "extraction failed", err)
	}

	if !opts.Save {
		if opts.Format == "json" {
			return f.Success(result)
		}
		return f.Success(formatResult(result))
	}

	o := orderFromResult(result, opts.Category, time.Now())
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

func readEmailText(opts *ParseOptions, stdin io.Reader) (string, error) {
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// orderFromResult builds a new order from an extraction. Every field may be
// missing; validation decides whether the result is saveable.
func orderFromResult(r extract.Result, category string, now time.Time) order.Order {
	items := make([]order.Item, 0, len(r.Items))
	for _, name := range r.Items {
		items = append(items, order.Item{Name: name, Status: order.StatusOrdered})
	}

	date := r.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}
	currency := r.Currency
	if currency == "" {
		currency = "EUR"
	}
	cat := order.Category(category)
	if !cat.Valid() {
		cat = order.CategoryPersonal
	}

	return order.Order{
		ID:             store.NewID(),
		Title:          r.Title,
		Date:           date,
		ProductName:    r.ProductName,
		Items:          items,
		StoreName:      r.StoreName,
		Amount:         r.Amount,
		Currency:       currency,
		Status:         order.StatusOrdered,
		Category:       cat,
		OrderReference: r.OrderReference,
		ContactInfo:    r.ContactInfo,
	}
}

func formatResult(r extract.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:     %s\n", r.Title)
	fmt.Fprintf(&b, "Store:     %s\n", r.StoreName)
	fmt.Fprintf(&b, "Date:      %s\n", r.Date)
	fmt.Fprintf(&b, "Amount:    %g %s\n", r.Amount, r.Currency)
	fmt.Fprintf(&b, "Reference: %s\n", r.OrderReference)
	fmt.Fprintf(&b, "Contact:   %s\n", r.ContactInfo)
	fmt.Fprintf(&b, "Products:")
	for _, it := range r.Items {
		fmt.Fprintf(&b, "\n  - %s", it)
	}
	return b.String()
}
