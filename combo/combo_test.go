package combo

import (
	"slices"
	"testing"

	"github.com/creachadair/mds/mapset"
	"github.com/google/go-cmp/cmp"
)

func TestSequence_Set(t *testing.T) {
	s := Sequence{"新疆", "集中營", "新疆"}
	got := s.Set().Slice()
	want := mapset.New("新疆", "集中營").Slice()
	slices.Sort(got)
	slices.Sort(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Set() mismatch (-want +got):\n%s", diff)
	}
}

func TestSequence_Dedup(t *testing.T) {
	s := Sequence{"a", "b", "a", "c", "b"}
	got := s.Dedup()
	want := Sequence{"a", "b", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dedup() mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByAppearance(t *testing.T) {
	article := []rune("一帶來二二調整體三三三領域四四四四")
	s := Sequence{"領域", "調整", "整體", "帶來"}
	got := SortByAppearance(s, article)
	want := Sequence{"帶來", "調整", "整體", "領域"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SortByAppearance() mismatch (-want +got):\n%s", diff)
	}
}
