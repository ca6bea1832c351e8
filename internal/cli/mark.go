package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/seguido/seguido/internal/engine"
	"github.com/seguido/seguido/internal/order"
)

// MarkOptions holds flags shared by the ship and receive commands.
type MarkOptions struct {
	*RootOptions
	ID       string
	Items    string // comma-separated 1-based item numbers
	All      bool
	Tracking string
	Carrier  string
}

// NewShipCommand creates the ship command.
func NewShipCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MarkOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ship",
		Short: "Mark items of an order as shipped",
		Long: `Mark selected items of an order as shipped.

Only items still in Pendiente are eligible. The order's aggregate status
is recomputed from its items: shipping part of an order yields
Parcialmente Enviado, shipping everything yields Enviado.

Examples:
  seguido ship --id 3f1c... --all --tracking 1Z999 --carrier UPS
  seguido ship --id 3f1c... --items 1,3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMark(opts, cmd, order.StatusShipped)
		},
	}

	addMarkFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.Tracking, "tracking", "", "tracking number to record")
	cmd.Flags().StringVar(&opts.Carrier, "carrier", "", "carrier to record")

	return cmd
}

// NewReceiveCommand creates the receive command.
func NewReceiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MarkOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Mark items of an order as received",
		Long: `Mark selected items of an order as received.

Items in Pendiente, Enviado or Parcialmente Enviado are eligible. The
receipt date is stamped with today's date the first time any item is
received. Receiving everything yields Recibido.

Examples:
  seguido receive --id 3f1c... --all
  seguido receive --id 3f1c... --items 2`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMark(opts, cmd, order.StatusReceived)
		},
	}

	addMarkFlags(cmd, opts)

	return cmd
}

func addMarkFlags(cmd *cobra.Command, opts *MarkOptions) {
	cmd.Flags().StringVar(&opts.ID, "id", "", "order id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().StringVar(&opts.Items, "items", "", "comma-separated item numbers from 'seguido list'")
	cmd.Flags().BoolVar(&opts.All, "all", false, "select every eligible item")
}

func runMark(opts *MarkOptions, cmd *cobra.Command, target order.Status) error {
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
	o, found := findOrder(orders, opts.ID)
	if !found {
		_ = f.Error("E_NOT_FOUND", "no order with id "+opts.ID, nil)
		return NewExitError(ExitFailure, "order not found")
	}

	var selected []int
	if opts.All {
		selected = engine.EligibleIndices(&o, target)
	} else {
		selected, err = parseIndices(opts.Items)
		if err != nil {
			_ = f.Error("E_SELECTION", err.Error(), nil)
			return NewExitError(ExitFailure, "invalid selection")
		}
	}

	updated, err := engine.ApplyPartialTransition(o, target, selected, time.Now())
	if err != nil {
		_ = f.Error("E_TRANSITION", err.Error(), nil)
		return WrapExitError(ExitFailure, "transition rejected", err)
	}

	if target == order.StatusShipped {
		if opts.Tracking != "" {
			updated.TrackingNumber = opts.Tracking
		}
		if opts.Carrier != "" {
			updated.Carrier = opts.Carrier
		}
	}

	if _, err := adapter.SaveOrder(cmd.Context(), updated); err != nil {
		return persistError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(updated)
	}
	return f.Success(formatOrderLine(updated))
}
