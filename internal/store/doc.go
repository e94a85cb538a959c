// Package store provides the flag stores that the evaluator reads from and the
// override API writes into.
//
// Two implementations satisfy Store:
//   - Memory: a map guarded by a RWMutex, for tests and short-lived processes
//   - SQLite: a file-backed store used by the CLI to keep fixtures between runs
//
// # Versioning
//
// Both stores apply "higher version wins": Upsert and Delete are ignored,
// without error, when the stored record's version is greater than or equal to
// the incoming one. Delete leaves a tombstone so that a late write carrying an
// older version cannot resurrect the flag.
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: one writer at a time
//
// Variations are stored as canonical JSON text (see flag.MarshalCanonical).
package store
