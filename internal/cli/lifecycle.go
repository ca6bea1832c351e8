package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seguido/seguido/internal/engine"
	"github.com/seguido/seguido/internal/order"
)

// LifecycleOptions holds flags for the return, claim and rm commands.
type LifecycleOptions struct {
	*RootOptions
	ID  string
	Yes bool
}

// NewReturnCommand creates the return command.
func NewReturnCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LifecycleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "return",
		Short: "Mark a whole order as returned",
		Long: `Mark every item of an order as returned.

Item-level detail keeps Devuelto while the aggregate settles on Recibido:
a fully returned order is the degenerate case of fully received.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(opts, cmd, func(o order.Order) order.Order {
				return engine.ApplyReturn(o)
			})
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "order id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// NewClaimCommand creates the claim command.
func NewClaimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LifecycleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Flag an order as claimed (incident open)",
		Long: `Flag an order as claimed, indicating an open incident.

The flag overlays item progress without touching it, and is dropped
automatically the next time items drive the status forward.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(opts, cmd, engine.ApplyClaim)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "order id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LifecycleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete an order",
		Long: `Delete an order from the collection permanently.

Requires --yes; there is no undo beyond restoring a backup.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "order id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm deletion")

	return cmd
}

// runLifecycle loads the order, applies a whole-order transition and saves.
func runLifecycle(opts *LifecycleOptions, cmd *cobra.Command, apply func(order.Order) order.Order) error {
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

	saved, err := adapter.SaveOrder(cmd.Context(), apply(o))
	if err != nil {
		return persistError(f, err)
	}

	// SaveOrder recomputes the aggregate before persisting; a claim on an
	// order with item progress settles on the item-derived status. Render
	// the order as stored, not the pre-save value.
	persisted, _ := findOrder(saved, opts.ID)

	if opts.Format == "json" {
		return f.Success(persisted)
	}
	return f.Success(formatOrderLine(persisted))
}

func runRemove(opts *LifecycleOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	if !opts.Yes {
		_ = f.Error("E_CONFIRM", "deletion is permanent; re-run with --yes to confirm", nil)
		return NewExitError(ExitFailure, "not confirmed")
	}

	adapter, _, cleanup, err := openAdapter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	remaining, err := adapter.DeleteOrder(cmd.Context(), opts.ID)
	if err != nil {
		return persistError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(remaining)
	}
	return f.Success(fmt.Sprintf("Deleted. Orders remaining: %d", len(remaining)))
}
