// Package registry provides a small generic name→value table used to look up
// conditioning-method and optimizer factories by their registered names.
//
// Registration is an explicit initialization step: callers construct a
// Registry, populate it once (see conditioning.NewRegistry and
// optimizer.NewRegistry for pre-populated variants), and pass it by
// reference. There is no process-global table and no load-time side effects.
//
// Contracts:
//   - Register(name, v) — rebinding an existing name fails with
//     ErrDuplicateName; the first binding stays in place.
//   - Get(name) — an unknown name fails with ErrUnknownName.
//   - Names() — sorted, for deterministic iteration.
//
// A Registry is not safe for concurrent mutation; populate it during
// initialization, then share it read-only.
package registry
