package splitter

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/creachadair/ffs/combo"
	"github.com/google/go-cmp/cmp"
)

// keywordOracle reports a message blocked when every one of keywords
// occurs as a substring of at least one of the probed components,
// mirroring the simulator's "all terms present somewhere" rule.
func keywordOracle(keywords ...string) func(context.Context, []string) (bool, error) {
	return func(_ context.Context, components []string) (bool, error) {
		for _, kw := range keywords {
			found := false
			for _, c := range components {
				if strings.Contains(c, kw) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	}
}

var allVariants = []struct {
	name string
	opts []Option
}{
	{"ForwardLinear", []Option{WithDirection(Forward), WithStrategy(Linear)}},
	{"ForwardExpBinary", []Option{WithDirection(Forward), WithStrategy(ExpBinary)}},
	{"BackwardLinear", []Option{WithDirection(Backward), WithStrategy(Linear)}},
	{"BackwardExpBinary", []Option{WithDirection(Backward), WithStrategy(ExpBinary)}},
}

func TestSplit_twoComponents(t *testing.T) {
	const article = "xxxAAAxxxBBBxxx"
	want := combo.Sequence{"AAA", "BBB"}.Set()
	for _, v := range allVariants {
		t.Run(v.name, func(t *testing.T) {
			got, err := Split(context.Background(), article, keywordOracle("AAA", "BBB"), v.opts...)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			gs, ws := got.Slice(), want.Slice()
			slices.Sort(gs)
			slices.Sort(ws)
			if diff := cmp.Diff(ws, gs); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplit_threeComponents(t *testing.T) {
	const article = "p1AAAp2BBBp3CCCp4"
	want := combo.Sequence{"AAA", "BBB", "CCC"}.Set()
	for _, v := range allVariants {
		t.Run(v.name, func(t *testing.T) {
			got, err := Split(context.Background(), article, keywordOracle("AAA", "BBB", "CCC"), v.opts...)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			gs, ws := got.Slice(), want.Slice()
			slices.Sort(gs)
			slices.Sort(ws)
			if diff := cmp.Diff(ws, gs); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplit_singleComponent(t *testing.T) {
	const article = "the quick 法轮功 fox"
	for _, v := range allVariants {
		t.Run(v.name, func(t *testing.T) {
			got, err := Split(context.Background(), article, keywordOracle("法轮功"), v.opts...)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			if gs := got.Slice(); !got.Has("法轮功") || len(gs) != 1 {
				t.Errorf("Split: got %v, want exactly {法轮功}", gs)
			}
		})
	}
}

func TestSplit_notBlocked(t *testing.T) {
	const article = "nothing of interest here"
	for _, v := range allVariants {
		t.Run(v.name, func(t *testing.T) {
			got, err := Split(context.Background(), article, keywordOracle("AAA", "BBB"), v.opts...)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			if gs := got.Slice(); len(gs) != 0 {
				t.Errorf("Split: got %v, want empty (article never blocked)", gs)
			}
		})
	}
}

func TestSplitOrdered_appearanceOrder(t *testing.T) {
	const article = "一帶來二二調整體三三三領域四四四四"
	want := combo.Sequence{"帶來", "調整", "整體", "領域"}
	for _, v := range allVariants {
		t.Run(v.name, func(t *testing.T) {
			got, err := SplitOrdered(context.Background(), article, keywordOracle("帶來", "調整", "整體", "領域"), v.opts...)
			if err != nil {
				t.Fatalf("SplitOrdered: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("SplitOrdered() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplit_queryCountPositive(t *testing.T) {
	// Sanity check that the oracle.Adapter wiring inside run() actually
	// issues probes rather than short-circuiting; a correct split of a
	// multi-component article can never take zero queries.
	const article = "xxxAAAxxxBBBxxx"
	calls := 0
	probe := func(ctx context.Context, components []string) (bool, error) {
		calls++
		return keywordOracle("AAA", "BBB")(ctx, components)
	}
	if _, err := Split(context.Background(), article, probe); err != nil {
		t.Fatalf("Split: %v", err)
	}
	if calls == 0 {
		t.Error("Split issued zero oracle queries")
	}
}
