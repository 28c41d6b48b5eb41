// Package snapshot captures the values of named signals and restores them
// later, from a local directory or an S3 bucket.
//
// Signals are registered under stable names:
//
//	reg := snapshot.NewRegistry()
//	snapshot.Register(reg, "count", count)
//	snapshot.Register(reg, "todos", todos)
//
//	snap, _ := reg.Capture()
//	store.Save(ctx, "session-42", snap)
//
//	snap, _ = store.Load(ctx, "session-42")
//	reg.Restore(snap) // writes through the signals and notifies subscribers
//
// Values are encoded with encoding/json, so registered types must round-trip
// through JSON.
package snapshot
