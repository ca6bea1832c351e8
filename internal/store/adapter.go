package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/seguido/seguido/internal/engine"
	"github.com/seguido/seguido/internal/order"
)

// Slot keys. The names are inherited from the original tracker so existing
// data loads unchanged.
const (
	PrimaryKey          = "purchase_tracker_data_v1"
	LegacyKey           = "purchase_tracker_data"
	BackupKey           = "purchase_tracker_data_backup"
	CorruptionKeyPrefix = "purchase_tracker_corrupted_"
)

// ErrNoCollection indicates a backup file contained no locatable order
// collection anywhere in its structure.
var ErrNoCollection = errors.New("no order collection found in backup content")

// Adapter reads, migrates, sanitizes and writes the order collection against
// the storage slots. All recovery (legacy migration, corruption quarantine,
// backup fallback) happens on read; writes go to the primary and backup
// slots together.
//
// Adapter returns results and errors as values and never prompts or alerts;
// confirmation of destructive operations is the caller's job.
type Adapter struct {
	kv    KV
	now   func() time.Time
	newID func() string
	log   *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides the wall clock used for date defaults, receipt
// stamping and quarantine keys. Tests inject a fixed clock.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithIDGenerator overrides order ID generation. Tests inject a sequential
// generator for stable fixtures.
func WithIDGenerator(newID func() string) Option {
	return func(a *Adapter) { a.newID = newID }
}

// WithLogger overrides the logger used for fallback and migration notices.
func WithLogger(log *slog.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// NewAdapter creates an Adapter over the given KV port.
func NewAdapter(kv KV, opts ...Option) *Adapter {
	a := &Adapter{
		kv:    kv,
		now:   time.Now,
		newID: NewID,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// emptyPayload reports whether a slot value holds no usable collection.
func emptyPayload(s string) bool {
	return s == "" || s == "[]" || s == "null"
}

// LoadOrders reads the order collection, trying primary, legacy and backup
// slots in that order; the first non-empty slot wins.
//
// When the legacy slot is the source, the normalized result is immediately
// re-written to the primary and backup slots (silent forward migration).
// Content that fails to parse is archived under a timestamped quarantine key
// and an empty collection is returned. Every record is sanitized regardless
// of source, so callers always see fully populated orders.
func (a *Adapter) LoadOrders(ctx context.Context) ([]order.Order, error) {
	data, _, err := a.kv.Get(ctx, PrimaryKey)
	if err != nil {
		return nil, fmt.Errorf("read primary slot: %w", err)
	}
	source := "primary"

	if emptyPayload(data) {
		legacy, _, err := a.kv.Get(ctx, LegacyKey)
		if err != nil {
			return nil, fmt.Errorf("read legacy slot: %w", err)
		}
		if legacy != "" && legacy != "[]" {
			data = legacy
			source = "legacy"
		}
	}

	if emptyPayload(data) {
		backup, _, err := a.kv.Get(ctx, BackupKey)
		if err != nil {
			return nil, fmt.Errorf("read backup slot: %w", err)
		}
		if len(backup) > 5 {
			a.log.Warn("primary and legacy slots empty, using automatic backup")
			data = backup
			source = "backup"
		}
	}

	if emptyPayload(data) {
		return []order.Order{}, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		a.quarantine(ctx, data, err)
		return []order.Order{}, nil
	}

	arr, ok := parsed.([]any)
	if !ok {
		return []order.Order{}, nil
	}

	orders := a.sanitizeAll(arr)

	if source == "legacy" {
		if err := a.writeSlots(ctx, orders); err != nil {
			// Migration is best-effort; the data is already in hand.
			a.log.Error("legacy slot migration failed", "error", err)
		} else {
			a.log.Info("migrated legacy slot to primary", "orders", len(orders))
		}
	}

	return orders, nil
}

// SaveOrder upserts one order into the collection and persists it.
//
// The incoming order's aggregate status is recomputed from its items before
// writing; the stored status is never the caller-supplied raw value. New
// orders are prepended. Both primary and backup slots are written; if either
// write fails the previously persisted collection is left byte-for-byte
// unchanged, the pre-save collection is returned and the failure surfaces as
// the error (ErrQuotaExceeded for capacity).
func (a *Adapter) SaveOrder(ctx context.Context, o order.Order) ([]order.Order, error) {
	current, err := a.LoadOrders(ctx)
	if err != nil {
		return nil, err
	}

	o.Status = engine.DeriveGlobalStatus(o.Items, o.Status)

	next := make([]order.Order, 0, len(current)+1)
	replaced := false
	for _, existing := range current {
		if existing.ID == o.ID {
			next = append(next, o)
			replaced = true
		} else {
			next = append(next, existing)
		}
	}
	if !replaced {
		next = append([]order.Order{o}, next...)
	}

	if err := a.writeSlotsRollback(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// DeleteOrder removes the order with the given id and persists the result to
// the primary and backup slots. Removing an unknown id is a no-op.
func (a *Adapter) DeleteOrder(ctx context.Context, id string) ([]order.Order, error) {
	current, err := a.LoadOrders(ctx)
	if err != nil {
		return nil, err
	}

	next := make([]order.Order, 0, len(current))
	for _, o := range current {
		if o.ID != id {
			next = append(next, o)
		}
	}

	if err := a.writeSlotsRollback(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// RestoreFromBackup replaces the whole collection with orders recovered from
// arbitrary backup file content.
//
// The collection is located by structure probing (see findOrdersArray), so
// top-level arrays, versioned envelopes and older nestings all restore. Each
// recovered record passes through the same sanitation as LoadOrders. Fails
// with ErrNoCollection when nothing array-shaped can be located, or with a
// parse error for invalid JSON. This is a destructive replace; callers must
// confirm before invoking.
func (a *Adapter) RestoreFromBackup(ctx context.Context, content []byte) ([]order.Order, error) {
	var parsed any
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("backup content is not valid JSON: %w", err)
	}

	arr := findOrdersArray(parsed, 0)
	if arr == nil {
		return nil, ErrNoCollection
	}

	orders := a.sanitizeAll(arr)

	// A located-but-empty collection restores successfully without touching
	// the slots, so a degenerate file cannot wipe storage.
	if len(orders) > 0 {
		if err := a.writeSlots(ctx, orders); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// AttemptAutoRecovery promotes the automatic backup slot to primary when it
// holds a non-empty parseable collection. Otherwise it returns an empty
// collection without side effects. Last-resort path for a user whose order
// list is unexpectedly empty.
func (a *Adapter) AttemptAutoRecovery(ctx context.Context) ([]order.Order, error) {
	backup, ok, err := a.kv.Get(ctx, BackupKey)
	if err != nil {
		return nil, fmt.Errorf("read backup slot: %w", err)
	}
	if !ok || backup == "" {
		return []order.Order{}, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(backup), &parsed); err != nil {
		a.log.Warn("automatic backup is not parseable", "error", err)
		return []order.Order{}, nil
	}
	arr, ok := parsed.([]any)
	if !ok || len(arr) == 0 {
		return []order.Order{}, nil
	}

	// Promote the raw backup bytes, not a re-serialization.
	if err := a.kv.Set(ctx, PrimaryKey, backup); err != nil {
		return nil, fmt.Errorf("promote backup to primary: %w", err)
	}
	return a.sanitizeAll(arr), nil
}

// QuarantineKeys lists the quarantine slot keys currently held, oldest first.
func (a *Adapter) QuarantineKeys(ctx context.Context) ([]string, error) {
	return a.kv.Keys(ctx, CorruptionKeyPrefix)
}

// quarantine archives unparseable slot content under a timestamped key.
// Never deletes: the raw bytes stay recoverable by hand.
func (a *Adapter) quarantine(ctx context.Context, data string, cause error) {
	key := CorruptionKeyPrefix + strconv.FormatInt(a.now().UnixMilli(), 10)
	a.log.Error("stored collection is not parseable, quarantining", "key", key, "error", cause)
	if err := a.kv.Set(ctx, key, data); err != nil {
		a.log.Error("quarantine write failed", "key", key, "error", err)
	}
}

// sanitizeAll normalizes every element of a parsed collection.
// Non-object elements are defaulted like empty records rather than rejected.
func (a *Adapter) sanitizeAll(arr []any) []order.Order {
	now := a.now()
	orders := make([]order.Order, 0, len(arr))
	for _, el := range arr {
		raw, ok := el.(map[string]any)
		if !ok {
			raw = map[string]any{}
		}
		orders = append(orders, sanitizeRecord(raw, now, a.newID))
	}
	return orders
}

// writeSlots serializes the collection and writes primary then backup.
func (a *Adapter) writeSlots(ctx context.Context, orders []order.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("serialize collection: %w", err)
	}
	if err := a.kv.Set(ctx, PrimaryKey, string(data)); err != nil {
		return fmt.Errorf("write primary slot: %w", err)
	}
	if err := a.kv.Set(ctx, BackupKey, string(data)); err != nil {
		return fmt.Errorf("write backup slot: %w", err)
	}
	return nil
}

// writeSlotsRollback writes both slots; if the backup write fails after the
// primary write succeeded, the primary slot is restored to its pre-write
// bytes so a partial save never persists.
func (a *Adapter) writeSlotsRollback(ctx context.Context, orders []order.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("serialize collection: %w", err)
	}

	prior, hadPrior, err := a.kv.Get(ctx, PrimaryKey)
	if err != nil {
		return fmt.Errorf("snapshot primary slot: %w", err)
	}

	if err := a.kv.Set(ctx, PrimaryKey, string(data)); err != nil {
		return fmt.Errorf("write primary slot: %w", err)
	}
	if err := a.kv.Set(ctx, BackupKey, string(data)); err != nil {
		var restoreErr error
		if hadPrior {
			restoreErr = a.kv.Set(ctx, PrimaryKey, prior)
		} else {
			restoreErr = a.kv.Delete(ctx, PrimaryKey)
		}
		if restoreErr != nil {
			a.log.Error("primary slot rollback failed", "error", restoreErr)
		}
		return fmt.Errorf("write backup slot: %w", err)
	}
	return nil
}
