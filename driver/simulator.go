package driver

import (
	"context"
	"slices"
	"strings"

	"github.com/creachadair/ffs/combo"
	"github.com/creachadair/ffs/oracle"
)

// NewSimulatorOracle returns an in-process [oracle.Func] that blocks a
// message when every component of any one of combos occurs as a
// substring somewhere in it, the same rule the original tool's
// simulator harness used to evaluate isolation algorithms offline
// against a known keyword list before pointing them at a live service.
//
// It exists for corpora whose articles declare ground truth (see
// [Article.GroundTruth]) and want to exercise the splitter without a
// real external oracle; it is not itself a censorship oracle.
func NewSimulatorOracle(combos []combo.Set) oracle.Func {
	return func(_ context.Context, components []string) (bool, error) {
		for _, c := range combos {
			if allPresent(c, components) {
				return true, nil
			}
		}
		return false, nil
	}
}

func allPresent(keywords combo.Set, components []string) bool {
	for _, kw := range keywords.Slice() {
		found := false
		for _, c := range components {
			if strings.Contains(c, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GroundTruthCombos collects the distinct ground-truth combinations
// declared across corpus, suitable for [NewSimulatorOracle].
func GroundTruthCombos(corpus *Corpus) []combo.Set {
	var out []combo.Set
	for _, art := range corpus.Articles {
		if s := art.groundTruthSet(); s != nil && !slices.ContainsFunc(out, s.Equals) {
			out = append(out, s)
		}
	}
	return out
}
