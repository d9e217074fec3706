// Package state provides the scoped shared state store used by workflow runs.
//
// A Store holds values addressed by (scope, key). Stages read committed values
// at any time and queue writes that become visible only when the engine
// commits them at the end of the current execution step:
//
//	store := state.New(observer)
//	store.Write("negotiation", "iteration", 1)
//	_, ok := store.Read("negotiation", "iteration") // false: not yet committed
//	store.Commit(ctx)
//	v, ok := store.Read("negotiation", "iteration") // 1, true
//
// # Missing Values
//
// A missing entry is reported through the boolean result of Read, never as a
// default value. Lookup adds typed access and distinguishes a missing entry
// (ErrNotFound) from a value of the wrong type (ErrTypeMismatch):
//
//	iteration, err := state.Lookup[int](store, "negotiation", "iteration")
//	if errors.Is(err, state.ErrNotFound) {
//	    iteration = 1
//	}
//
// # Concurrency
//
// Reads take a read lock and are safe from concurrent fan-out branches.
// Queued writes are applied in queue order under the write lock, so exactly
// one commit runs at a time. Discard drops queued writes after a failed step.
//
// # Observer Integration
//
// Writes emit EventStateWrite and commits emit EventStateCommit at
// LevelVerbose.
package state
