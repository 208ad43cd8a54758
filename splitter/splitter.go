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

// Package splitter implements the outer peeling loop of spec §4.3: given
// an article and an oracle, it repeatedly locates and commits one
// component at a time until the accumulated combination already blocks
// the oracle or the article is exhausted.
//
// Two scan strategies are provided ([Linear], [ExpBinary]) crossed with
// two directions ([Forward], [Backward]); [SplitOrdered] projects the
// result into the order components appear in the source article
// regardless of discovery order. All four direction/strategy
// combinations share the state machine of spec §4.3.4 and differ only in
// which [locate] primitives they call and how they slice the remaining
// article.
package splitter

import (
	"context"
	"fmt"

	"github.com/creachadair/ffs/combo"
	"github.com/creachadair/ffs/locate"
	"github.com/creachadair/ffs/oracle"
)

// Direction selects which not-yet-discovered component a splitter peels
// off on each outer iteration (spec §4.3.3).
type Direction int

const (
	// Forward peels the component whose near edge is leftmost in the
	// remaining article, scanning left to right.
	Forward Direction = iota
	// Backward peels the component whose near edge is rightmost in the
	// remaining article, scanning right to left.
	Backward
)

// Strategy selects how a splitter locates the far edge of the component
// it is currently extending (spec §4.3.1 vs §4.3.2).
type Strategy int

const (
	// Linear advances the far-edge cursor one position at a time.
	Linear Strategy = iota
	// ExpBinary doubles the cursor stride until the far edge is
	// bracketed, then binary-searches within the bracket.
	ExpBinary
)

// config holds the resolved settings for a split, built from Options.
type config struct {
	sep       rune
	direction Direction
	strategy  Strategy
}

// Option configures a call to [Split] or [SplitOrdered], or a [Session].
type Option func(*config)

// WithSeparator overrides the default (NUL) component separator.
func WithSeparator(sep rune) Option { return func(c *config) { c.sep = sep } }

// WithDirection selects the scan direction (default [Forward]).
func WithDirection(d Direction) Option { return func(c *config) { c.direction = d } }

// WithStrategy selects the far-edge scan strategy (default [Linear]).
func WithStrategy(s Strategy) Option { return func(c *config) { c.strategy = s } }

func newConfig(opts []Option) *config {
	c := &config{sep: '\x00', direction: Forward, strategy: Linear}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split isolates one keyword combination present in article, returning
// it as an unordered [combo.Set] (spec §6 default variant).
func Split(ctx context.Context, article string, probe oracle.Func, opts ...Option) (combo.Set, error) {
	seq, err := run(ctx, article, probe, opts...)
	if err != nil {
		return nil, err
	}
	return seq.Set(), nil
}

// SplitOrdered isolates one keyword combination present in article,
// returning it as a [combo.Sequence] in the order the components appear
// in article, regardless of the order in which the scan discovered them
// (spec §6 ordered variant).
func SplitOrdered(ctx context.Context, article string, probe oracle.Func, opts ...Option) (combo.Sequence, error) {
	seq, err := run(ctx, article, probe, opts...)
	if err != nil {
		return nil, err
	}
	return combo.SortByAppearance(seq, []rune(article)), nil
}

func run(ctx context.Context, article string, probe oracle.Func, opts ...Option) (combo.Sequence, error) {
	return runWithConfig(ctx, article, probe, newConfig(opts))
}

func runWithConfig(ctx context.Context, article string, probe oracle.Func, cfg *config) (combo.Sequence, error) {
	adapter, err := oracle.NewAdapter(cfg.sep, probe)
	if err != nil {
		return nil, err
	}
	g := []rune(article)

	// Open question (spec §9): the source calls the boundary locator
	// unconditionally on the first iteration, which violates the
	// locator's invariant when the article does not trigger the oracle
	// at all. Fixed here with an explicit pre-check.
	blocked, err := adapter.Probe(ctx, []string{article})
	if err != nil {
		return nil, err
	}
	if !blocked {
		return nil, nil
	}

	var seq combo.Sequence
	switch cfg.direction {
	case Forward:
		switch cfg.strategy {
		case ExpBinary:
			seq, err = forwardExpBinary(ctx, g, adapter)
		default:
			seq, err = forwardLinear(ctx, g, adapter)
		}
	case Backward:
		switch cfg.strategy {
		case ExpBinary:
			seq, err = backwardExpBinary(ctx, g, adapter)
		default:
			seq, err = backwardLinear(ctx, g, adapter)
		}
	default:
		return nil, fmt.Errorf("splitter: unknown direction %d", cfg.direction)
	}
	if err != nil {
		return nil, err
	}
	return seq.Dedup(), nil
}

// probeFor returns a locate.Probe that tests committed ∪ fixed ∪ extra,
// via adapter.
func probeFor(adapter *oracle.Adapter, committed combo.Sequence, fixed ...string) locate.Probe {
	return func(ctx context.Context, extra ...string) (bool, error) {
		msg := make([]string, 0, len(committed)+len(fixed)+len(extra))
		msg = append(msg, committed...)
		msg = append(msg, fixed...)
		msg = append(msg, extra...)
		return adapter.Probe(ctx, msg)
	}
}

// isBlocking reports whether committed alone already blocks the oracle.
func isBlocking(ctx context.Context, adapter *oracle.Adapter, committed combo.Sequence) (bool, error) {
	return adapter.Probe(ctx, committed)
}

// clamp returns r[lo:hi] with lo and hi clamped into [0, len(r)], so that
// index arithmetic ported from the source's unchecked slicing can never
// panic on an out-of-range bracket.
func clamp(r []rune, lo, hi int) []rune {
	if lo < 0 {
		lo = 0
	}
	if hi > len(r) {
		hi = len(r)
	}
	if hi < lo {
		hi = lo
	}
	return r[lo:hi]
}

// forwardLinear is the left-to-right, linear-scan splitter of spec
// §4.3.1 (comp_aware_bin_split in the source).
func forwardLinear(ctx context.Context, article []rune, adapter *oracle.Adapter) (combo.Sequence, error) {
	var C combo.Sequence
	s := article
	for {
		i, err := locate.SuffixSearch(ctx, s, probeFor(adapter, C))
		if err != nil {
			return nil, err
		}
		j, k := i+1, len(s)
		for j < k {
			blocked, err := probeFor(adapter, C)(ctx, string(s[i:j]), string(s[i+1:]))
			if err != nil {
				return nil, err
			}
			if blocked {
				k = j
			} else {
				j++
			}
		}
		C = append(C, string(s[i:j]))
		if j != len(s) {
			s = s[i+1:]
		} else {
			s = nil
		}
		if len(s) == 0 {
			break
		}
		blocked, err := isBlocking(ctx, adapter, C)
		if err != nil {
			return nil, err
		}
		if blocked {
			break
		}
	}
	return C, nil
}

// forwardExpBinary is the left-to-right, exponential-and-binary splitter
// of spec §4.3.2 (comp_aware_bin_split_2 in the source).
func forwardExpBinary(ctx context.Context, article []rune, adapter *oracle.Adapter) (combo.Sequence, error) {
	var C combo.Sequence
	s := article
	for {
		i, err := locate.SuffixSearch(ctx, s, probeFor(adapter, C))
		if err != nil {
			return nil, err
		}
		diff, j, k := 1, i+1, len(s)
		for j < k {
			blocked, err := probeFor(adapter, C)(ctx, string(s[i:j]), string(s[i+1:]))
			if err != nil {
				return nil, err
			}
			if blocked {
				break
			}
			j += diff
			diff *= 2
		}
		diff /= 2
		s1 := s[i:]
		jRel := j - i
		lo := jRel - diff
		bracket := clamp(s1, lo, jRel)
		before := string(clamp(s1, 0, lo))
		fixed := string(clamp(s1, 1, len(s1)))
		bisected, err := locate.BisectForward(ctx, bracket, before, probeFor(adapter, C, fixed))
		if err != nil {
			return nil, err
		}
		jFinal := i + 1 + bisected
		C = append(C, string(clamp(s, i, jFinal+diff)))
		s = clamp(s, i+1, len(s))
		if len(s) == 0 {
			break
		}
		blocked, err := isBlocking(ctx, adapter, C)
		if err != nil {
			return nil, err
		}
		if blocked {
			break
		}
	}
	return C, nil
}

// backwardLinear is the right-to-left, linear-scan splitter (the
// left-peeling comp_aware_bin_split of algorithms-left.py).
func backwardLinear(ctx context.Context, article []rune, adapter *oracle.Adapter) (combo.Sequence, error) {
	var C combo.Sequence
	s := article
	cursor := len(s)
	for {
		i, err := locate.PrefixSearch(ctx, s, probeFor(adapter, C))
		if err != nil {
			return nil, err
		}
		j := min(i-1, cursor-1)
		fixed := string(clamp(s, 0, i-1))
		fixedProbe := probeFor(adapter, C, fixed)
		for j > 0 {
			blocked, err := fixedProbe(ctx, string(clamp(s, j, i)))
			if err != nil {
				return nil, err
			}
			if blocked {
				break
			}
			j--
		}
		C = append(C, string(clamp(s, j, i)))
		cursor = j
		if j > 0 {
			s = clamp(s, 0, i-1)
		} else {
			s = nil
		}
		if len(s) == 0 {
			break
		}
		blocked, err := isBlocking(ctx, adapter, C)
		if err != nil {
			return nil, err
		}
		if blocked {
			break
		}
	}
	return C, nil
}

// backwardExpBinary is the right-to-left, exponential-and-binary
// splitter (the left-peeling comp_aware_bin_split_2 of
// algorithms-left.py).
func backwardExpBinary(ctx context.Context, article []rune, adapter *oracle.Adapter) (combo.Sequence, error) {
	var C combo.Sequence
	s := article
	cursor := len(s)
	for {
		i, err := locate.PrefixSearch(ctx, s, probeFor(adapter, C))
		if err != nil {
			return nil, err
		}
		diff := 1
		j := min(i-1, cursor-1)
		fixed := string(clamp(s, 0, i-1))
		fixedProbe := probeFor(adapter, C, fixed)
		for j > 0 {
			blocked, err := fixedProbe(ctx, string(clamp(s, j, i)))
			if err != nil {
				return nil, err
			}
			if blocked {
				break
			}
			j -= diff
			diff *= 2
		}
		diff /= 2
		k := max(j, 0)
		s1 := clamp(s, 0, i)
		bracket := clamp(s1, k, j+diff)
		after := string(clamp(s1, j+diff, len(s1)))
		bisectFixed := string(clamp(s1, 0, max(len(s1)-1, 0)))
		bisected, err := locate.BisectBackward(ctx, bracket, after, probeFor(adapter, C, bisectFixed))
		if err != nil {
			return nil, err
		}
		jFinal := k + bisected
		C = append(C, string(clamp(s, jFinal, i)))
		cursor = jFinal
		if jFinal > 0 {
			s = clamp(s, 0, i-1)
		} else {
			s = nil
		}
		if len(s) == 0 {
			break
		}
		blocked, err := isBlocking(ctx, adapter, C)
		if err != nil {
			return nil, err
		}
		if blocked {
			break
		}
	}
	return C, nil
}
