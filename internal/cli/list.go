package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/seguido/seguido/internal/order"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	View     string // "active" | "history" | "all"
	Status   string
	Category string
	Search   string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked purchases",
		Long: `List tracked purchases with their per-item progress.

The active view shows orders still in flight plus claimed ones; the
history view shows received and returned orders.

Examples:
  seguido list
  seguido list --view history
  seguido list --search auriculares --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", "all", "view (active|history|all)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by exact status")
	cmd.Flags().StringVar(&opts.Category, "category", "", "filter by category (personal|familiar)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "substring match on title, products, store, reference")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	adapter, _, cleanup, err := openAdapter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	orders, err := adapter.LoadOrders(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "load orders", err)
	}

	filtered := filterOrders(orders, opts)

	if opts.Format == "json" {
		return f.Success(filtered)
	}
	if len(filtered) == 0 {
		return f.Success("No orders found.")
	}
	lines := make([]string, len(filtered))
	for i, o := range filtered {
		lines[i] = formatOrderLine(o)
	}
	return f.Success(strings.Join(lines, "\n"))
}

// filterOrders applies view, status, category and search filters.
//
// View semantics follow the tracker's screens: claimed orders stay in the
// active view even when their items are done, and history holds terminal
// orders that are not claimed.
func filterOrders(orders []order.Order, opts *ListOptions) []order.Order {
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	out := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		isHistory := o.Status.Terminal()
		isClaimed := o.Status == order.StatusClaimed
		switch opts.View {
		case "active":
			if isHistory && !isClaimed {
				continue
			}
		case "history":
			if !isHistory || isClaimed {
				continue
			}
		}
		if opts.Status != "" && string(o.Status) != opts.Status {
			continue
		}
		if opts.Category != "" && string(o.Category) != opts.Category {
			continue
		}
		if search != "" && !matchesSearch(o, search) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// matchesSearch checks the lowercase search term against title, legacy
// product text, store, reference and every item name.
func matchesSearch(o order.Order, search string) bool {
	for _, s := range []string{o.Title, o.ProductName, o.StoreName, o.OrderReference} {
		if strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Name), search) {
			return true
		}
	}
	return false
}
