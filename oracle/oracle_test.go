package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewAdapter_nil(t *testing.T) {
	if _, err := NewAdapter(0, nil); !errors.Is(err, ErrNilOracle) {
		t.Errorf("NewAdapter(nil): got err %v, want ErrNilOracle", err)
	}
}

func TestAdapter_passesComponentsAndCounts(t *testing.T) {
	var got []string
	a, err := NewAdapter('\x00', func(_ context.Context, components []string) (bool, error) {
		got = components
		return len(components) == 2, nil
	})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	blocked, err := a.Probe(context.Background(), []string{"新疆", "集中營"})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !blocked {
		t.Error("Probe: got false, want true")
	}
	if diff := cmp.Diff([]string{"新疆", "集中營"}, got); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
	if n := a.Queries(); n != 1 {
		t.Errorf("Queries: got %d, want 1", n)
	}
	a.Reset()
	if n := a.Queries(); n != 0 {
		t.Errorf("Queries after Reset: got %d, want 0", n)
	}
}

func TestAdapter_separatorRejected(t *testing.T) {
	a, err := NewAdapter('\x00', func(context.Context, []string) (bool, error) {
		t.Fatal("oracle should not be called for a malformed component")
		return false, nil
	})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	_, err = a.Probe(context.Background(), []string{"bad\x00component"})
	var sepErr *SeparatorError
	if !errors.As(err, &sepErr) {
		t.Fatalf("Probe: got err %v, want *SeparatorError", err)
	}
	if sepErr.Component != "bad\x00component" {
		t.Errorf("SeparatorError.Component: got %q", sepErr.Component)
	}
	if n := a.Queries(); n != 0 {
		t.Errorf("Queries: got %d, want 0 (fail-fast must not count as a query)", n)
	}
}

func TestCachingAdapter_memoizes(t *testing.T) {
	calls := 0
	a, err := NewAdapter('\x00', func(context.Context, []string) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	c := NewCachingAdapter(a)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		blocked, err := c.Probe(ctx, []string{"法轮功"})
		if err != nil {
			t.Fatalf("Probe: %v", err)
		}
		if !blocked {
			t.Error("Probe: got false, want true")
		}
	}
	if calls != 1 {
		t.Errorf("underlying oracle calls: got %d, want 1", calls)
	}
}
