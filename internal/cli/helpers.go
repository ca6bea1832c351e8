package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seguido/seguido/internal/config"
	"github.com/seguido/seguido/internal/order"
	"github.com/seguido/seguido/internal/store"
)

// newFormatter builds an OutputFormatter wired to the command's writers.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openAdapter loads the config, opens the SQLite slot store and wraps it in
// an Adapter. The returned cleanup closes the database.
func openAdapter(opts *RootOptions) (*store.Adapter, config.Config, func(), error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, config.Config{}, nil, WrapExitError(ExitCommandError, "load config", err)
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}

	kv, err := store.Open(dbPath)
	if err != nil {
		return nil, config.Config{}, nil, WrapExitError(ExitCommandError, fmt.Sprintf("open database %q", dbPath), err)
	}

	return store.NewAdapter(kv), cfg, func() { _ = kv.Close() }, nil
}

// findOrder locates an order by id in the loaded collection.
func findOrder(orders []order.Order, id string) (order.Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return order.Order{}, false
}

// parseIndices parses a comma-separated list of 1-based item numbers (as
// shown by "seguido list") into 0-based indices.
func parseIndices(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var indices []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid item number %q", part)
		}
		if n < 1 {
			return nil, fmt.Errorf("item numbers start at 1, got %d", n)
		}
		indices = append(indices, n-1)
	}
	return indices, nil
}

// formatOrderLine renders one order for text output.
func formatOrderLine(o order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-22s  %-20s  %8s %s  %s", o.ID, truncate(o.Title, 22), truncate(o.StoreName, 20),
		strconv.FormatFloat(o.Amount, 'f', 2, 64), o.Currency, o.Status)
	for i, it := range o.Items {
		fmt.Fprintf(&b, "\n    %d. %s [%s]", i+1, it.Name, it.Status)
	}
	return b.String()
}

// truncate shortens s to at most n runes, ending with an ellipsis.
// Cuts on rune boundaries so accented titles never split mid-sequence.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
