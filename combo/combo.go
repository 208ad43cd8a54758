// Copyright 2019 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package combo defines the combination accumulator described in spec §3:
// the partially (and eventually fully) discovered set of components that
// jointly trigger a censorship oracle.
//
// The splitter always builds an ordered [Sequence] internally (Design
// Notes: pick one representation), and exposes an unordered [Set]
// projection at the API boundary for callers that only care about set
// membership.
package combo

import (
	"slices"
	"strings"

	"github.com/creachadair/mds/mapset"
)

// Set is an unordered combination of components. It is aliased from
// [mapset.Set] so callers need not import mds/mapset directly, the same
// alias pattern blob.KeySet uses.
type Set = mapset.Set[string]

// Sequence is an ordered combination of components, preserving the order
// in which they were discovered (or, after [SortByAppearance], the order
// in which they appear in the source article).
type Sequence []string

// Set returns the unordered projection of s.
func (s Sequence) Set() Set {
	return mapset.New(s...)
}

// Dedup returns a copy of s with duplicate components removed,
// preserving the first occurrence of each. Spec §9 leaves the behavior on
// true duplicates unspecified but asks implementations to deduplicate
// defensively; this is the one place that happens.
func (s Sequence) Dedup() Sequence {
	seen := mapset.New[string]()
	out := make(Sequence, 0, len(s))
	for _, c := range s {
		if seen.Has(c) {
			continue
		}
		seen.Add(c)
		out = append(out, c)
	}
	return out
}

// SortByAppearance reorders s so that components appear in the same order
// as their first occurrence in article, used by the ordered splitter
// variants to guarantee positional ordering regardless of discovery
// order (spec §6: "ordered variant returns the two components in the
// order they appear in the article").
func SortByAppearance(s Sequence, article []rune) Sequence {
	text := string(article)
	out := slices.Clone(s)
	pos := make(map[string]int, len(out))
	for _, c := range out {
		pos[c] = runeIndex(text, c)
	}
	slices.SortStableFunc(out, func(a, b string) int { return pos[a] - pos[b] })
	return out
}

// runeIndex returns the code-point offset of the first occurrence of sub
// in text, or len([]rune(text)) if sub does not occur (pushing
// unattributable components to the end rather than panicking).
func runeIndex(text, sub string) int {
	byteIdx := strings.Index(text, sub)
	if byteIdx < 0 {
		return len([]rune(text))
	}
	return len([]rune(text[:byteIdx]))
}
