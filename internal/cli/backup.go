package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguido/seguido/internal/export"
	"github.com/seguido/seguido/internal/store"
)

// FileOptions holds flags for the export, backup and restore commands.
type FileOptions struct {
	*RootOptions
	Out string
	In  string
	Yes bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the purchase history as CSV",
		Long: `Write the purchase history as CSV.

Only orders in a terminal state (Recibido/Devuelto) are included.

Examples:
  seguido export
  seguido export --out ~/compras.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", export.CSVFileName, "output file path")

	return cmd
}

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup file of the whole collection",
		Long: `Write the whole collection to a versioned backup file,
named tracker_backup_<YYYY-MM-DD>.json by default.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "output file path (default tracker_backup_<date>.json)")

	return cmd
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace all data with a backup file",
		Long: `Replace the whole collection with the contents of a backup file.

The collection is located anywhere in the file's structure (current
envelope, bare array, or older nestings) and every record is normalized
on the way in. This REPLACES all current data and requires --yes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.In, "in", "", "backup file to restore (required)")
	_ = cmd.MarkFlagRequired("in")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm destructive restore")

	return cmd
}

// NewRecoverCommand creates the recover command.
func NewRecoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover orders from the automatic backup slot",
		Long: `Promote the automatic backup slot to primary.

Last-resort path when the order list is unexpectedly empty. Does nothing
when the backup slot is empty or unparseable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecover(opts, cmd)
		},
	}

	return cmd
}

func runExport(opts *FileOptions, cmd *cobra.Command) error {
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

	terminal := export.TerminalOrders(orders)
	if len(terminal) == 0 {
		_ = f.Error("E_EMPTY", "no orders in a terminal state to export", nil)
		return NewExitError(ExitFailure, "nothing to export")
	}

	if err := os.WriteFile(opts.Out, export.CSV(orders), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "write export file", err)
	}
	return f.Success(fmt.Sprintf("Exported %d orders to %s", len(terminal), opts.Out))
}

func runBackup(opts *FileOptions, cmd *cobra.Command) error {
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

	now := time.Now()
	out := opts.Out
	if out == "" {
		out = export.BackupFileName(now)
	}

	data, err := export.BackupFile(orders, now)
	if err != nil {
		return WrapExitError(ExitCommandError, "build backup", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "write backup file", err)
	}
	return f.Success(fmt.Sprintf("Backed up %d orders to %s", len(orders), out))
}

func runRestore(opts *FileOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	if !opts.Yes {
		_ = f.Error("E_CONFIRM", "restore replaces ALL current data; re-run with --yes to confirm", nil)
		return NewExitError(ExitFailure, "not confirmed")
	}

	content, err := os.ReadFile(opts.In)
	if err != nil {
		return WrapExitError(ExitCommandError, "read backup file", err)
	}

	adapter, _, cleanup, err := openAdapter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	orders, err := adapter.RestoreFromBackup(cmd.Context(), content)
	if err != nil {
		if errors.Is(err, store.ErrNoCollection) {
			_ = f.Error("E_NO_COLLECTION", "the file holds no recognizable order collection", nil)
			return WrapExitError(ExitFailure, "restore failed", err)
		}
		_ = f.Error("E_RESTORE", err.Error(), nil)
		return WrapExitError(ExitFailure, "restore failed", err)
	}

	return f.Success(fmt.Sprintf("Restored %d orders", len(orders)))
}

func runRecover(opts *FileOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	adapter, _, cleanup, err := openAdapter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	orders, err := adapter.AttemptAutoRecovery(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "auto recovery", err)
	}
	if len(orders) == 0 {
		return f.Success("No automatic backup found.")
	}
	return f.Success(fmt.Sprintf("Recovered %d orders from the automatic backup", len(orders)))
}
