// Package store provides durable persistence for the order collection.
//
// The collection is kept as a JSON serialization in named slots of a
// key-value store:
//
//   - Primary:    purchase_tracker_data_v1
//   - Legacy:     purchase_tracker_data (prior schema version)
//   - Backup:     purchase_tracker_data_backup (last-known-good snapshot)
//   - Quarantine: purchase_tracker_corrupted_<epoch-ms> (unparseable content)
//
// # Critical Patterns
//
// Fallback reads: LoadOrders tries primary, then legacy, then backup, first
// non-empty wins. A legacy hit is forward-migrated to the primary and backup
// slots immediately.
//
// Quarantine over deletion: content that fails to parse is archived under a
// timestamped quarantine key, never silently discarded.
//
// Sanitize everything: every record read from any slot or imported from a
// backup file passes through the same normalization, so no optional field is
// ever undefined downstream.
//
// Rollback on write failure: a failed write (e.g. quota exceeded) leaves the
// previously persisted collection byte-for-byte unchanged and surfaces the
// error to the caller.
//
// The Adapter depends on the KV port, never on a concrete store, so tests
// substitute MemoryKV for the SQLite implementation.
package store
