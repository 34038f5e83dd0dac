package fallback

import (
	"context"
	"errors"
	"testing"
)

func TestLoadRemoteSuccessRefreshesCache(t *testing.T) {
	ctx := context.Background()
	stored := []string(nil)

	out, err := Load(ctx,
		func(context.Context) ([]string, error) { return []string{"a", "b"}, nil },
		func(context.Context) ([]string, bool, error) { return []string{"stale"}, true, nil },
		func(_ context.Context, data []string) error { stored = data; return nil },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Offline {
		t.Error("offline flag set on successful fetch")
	}
	if len(out.Data) != 2 || out.Data[0] != "a" {
		t.Errorf("got %v, want remote data", out.Data)
	}
	if len(stored) != 2 || stored[0] != "a" {
		t.Errorf("cache not refreshed with remote data, stored %v", stored)
	}
}

func TestLoadFallsBackToCache(t *testing.T) {
	ctx := context.Background()

	out, err := Load(ctx,
		func(context.Context) ([]string, error) { return nil, errors.New("connection refused") },
		func(context.Context) ([]string, bool, error) { return []string{"cached"}, true, nil },
		nil,
	)
	if err != nil {
		t.Fatalf("error should be suppressed on cache hit, got %v", err)
	}
	if !out.Offline {
		t.Error("offline flag not set on cache fallback")
	}
	if len(out.Data) != 1 || out.Data[0] != "cached" {
		t.Errorf("got %v, want cached data", out.Data)
	}
}

func TestLoadSurfacesErrorOnEmptyCache(t *testing.T) {
	ctx := context.Background()
	fetchErr := errors.New("upstream unavailable: timeout")

	out, err := Load(ctx,
		func(context.Context) ([]string, error) { return nil, fetchErr },
		func(context.Context) ([]string, bool, error) { return nil, false, nil },
		nil,
	)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("got %v, want original fetch error", err)
	}
	if out.Offline {
		t.Error("offline flag set with no cached substitute")
	}
	if out.Data != nil {
		t.Errorf("got %v, want empty data", out.Data)
	}
}

func TestLoadSurfacesFetchErrorWhenLookupFails(t *testing.T) {
	ctx := context.Background()
	fetchErr := errors.New("upstream unavailable: timeout")

	_, err := Load(ctx,
		func(context.Context) (int, error) { return 0, fetchErr },
		func(context.Context) (int, bool, error) { return 0, false, errors.New("cache corrupt") },
		nil,
	)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("got %v, want original fetch error, not the lookup one", err)
	}
}

func TestLoadStoreFailureDoesNotFailLoad(t *testing.T) {
	ctx := context.Background()

	out, err := Load(ctx,
		func(context.Context) (int, error) { return 42, nil },
		nil,
		func(context.Context, int) error { return errors.New("disk full") },
	)
	if err != nil {
		t.Fatalf("store failure must be best-effort, got %v", err)
	}
	if out.Data != 42 {
		t.Errorf("got %d, want 42", out.Data)
	}
}
