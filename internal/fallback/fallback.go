// Package fallback implements the offline-first load policy used by every
// read path in the gateway: try the upstream API first, fall back to the
// local cache when it fails.
package fallback

import "context"

// Outcome carries the resolved data plus whether it came from the local
// cache instead of a fresh upstream fetch.
type Outcome[T any] struct {
	Data    T
	Offline bool
}

// Load resolves a logical resource against an upstream fetch and a local
// cache lookup for the same query.
//
//  1. fetch is attempted first. On success the result is handed to store
//     (best-effort, a store failure never fails the load) and returned with
//     Offline=false.
//  2. On fetch failure, lookup is consulted. A cache hit returns the cached
//     data with Offline=true and suppresses the fetch error. A miss (or a
//     lookup error) returns the zero value with Offline=false and the
//     original fetch error.
//
// Each call is independent; callers re-invoke Load whenever their filter
// criteria change.
func Load[T any](
	ctx context.Context,
	fetch func(context.Context) (T, error),
	lookup func(context.Context) (T, bool, error),
	store func(context.Context, T) error,
) (Outcome[T], error) {
	data, err := fetch(ctx)
	if err == nil {
		if store != nil {
			_ = store(ctx, data)
		}
		return Outcome[T]{Data: data}, nil
	}
	fetchErr := err

	if lookup != nil {
		cached, ok, lookupErr := lookup(ctx)
		if lookupErr == nil && ok {
			return Outcome[T]{Data: cached, Offline: true}, nil
		}
	}

	var zero T
	return Outcome[T]{Data: zero}, fetchErr
}
