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

// Package oracle defines the boundary between the isolation core and the
// external censorship predicate it probes.
//
// A [Func] is the only thing the core knows about the outside world: a
// black-box function that reports whether a message would be blocked by a
// filter enforcing secret multi-term keyword combinations. [Adapter]
// checks a collection of component substrings against a reserved
// separator rune and delegates the verdict to a Func, counting queries
// along the way so a driver can report per-article query counts.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Func is the shape of an external censorship predicate. It reports
// whether a message assembled from components would be blocked.
//
// Implementations must be deterministic and idempotent for the duration
// of a run: repeating a probe must yield the same verdict. ctx governs
// cancellation and per-probe timeouts; a purely local oracle may ignore it.
type Func func(ctx context.Context, components []string) (blocked bool, err error)

// ErrNilOracle is returned by NewAdapter when probe is nil.
var ErrNilOracle = errors.New("oracle: nil probe function")

// A SeparatorError reports that a candidate component contains the
// reserved separator rune, a contract violation by the caller (spec §7).
type SeparatorError struct {
	Component string
	Separator rune
}

func (e *SeparatorError) Error() string {
	return fmt.Sprintf("oracle: component %q contains reserved separator %q", e.Component, e.Separator)
}

// Adapter validates component collections and delegates verdicts to a
// wrapped [Func]. The zero value is not usable; construct one with
// [NewAdapter].
type Adapter struct {
	sep   rune
	probe Func
	n     atomic.Int64
}

// NewAdapter returns an Adapter that reserves sep as the component
// separator before calling probe. sep must not occur inside any real
// component; Probe fails fast with a *SeparatorError if it does.
func NewAdapter(sep rune, probe Func) (*Adapter, error) {
	if probe == nil {
		return nil, ErrNilOracle
	}
	return &Adapter{sep: sep, probe: probe}, nil
}

// Separator reports the reserved component-separator rune.
func (a *Adapter) Separator() rune { return a.sep }

// Queries reports the number of probes sent through a so far.
func (a *Adapter) Queries() int64 { return a.n.Load() }

// Reset zeroes the query counter, so a single Adapter can be reused
// across articles by a driver without conflating their query counts.
func (a *Adapter) Reset() { a.n.Store(0) }

// Probe passes components, unjoined and in order, to the wrapped Func and
// returns its verdict. It fails fast, without querying the oracle, if any
// component contains the separator.
func (a *Adapter) Probe(ctx context.Context, components []string) (bool, error) {
	for _, c := range components {
		if strings.ContainsRune(c, a.sep) {
			return false, &SeparatorError{Component: c, Separator: a.sep}
		}
	}
	a.n.Add(1)
	return a.probe(ctx, components)
}

// fingerprint returns a stable, fast (non-cryptographic) hash of a joined
// probe message, used only to key the optional defensive verdict cache.
func fingerprint(sep rune, components []string) uint64 {
	h := xxhash.New()
	sb := make([]byte, 0, 4)
	sb = appendRune(sb, sep)
	for i, c := range components {
		if i > 0 {
			h.Write(sb)
		}
		h.WriteString(c)
	}
	return h.Sum64()
}

func appendRune(buf []byte, r rune) []byte {
	var tmp [4]byte
	n := copy(tmp[:], string(r))
	return append(buf, tmp[:n]...)
}

// CachingAdapter wraps an *Adapter and memoizes verdicts by a fingerprint
// of the joined probe message. Query-count comparisons against a
// theoretical bound assume no caching, so a driver computing those
// figures should leave caching disabled.
type CachingAdapter struct {
	*Adapter
	cache map[uint64]bool
}

// NewCachingAdapter wraps a as a memoizing oracle.
func NewCachingAdapter(a *Adapter) *CachingAdapter {
	return &CachingAdapter{Adapter: a, cache: make(map[uint64]bool)}
}

// Probe returns a cached verdict for an identical previous probe without
// counting a new query or calling the underlying oracle.
func (c *CachingAdapter) Probe(ctx context.Context, components []string) (bool, error) {
	for _, comp := range components {
		if strings.ContainsRune(comp, c.sep) {
			return false, &SeparatorError{Component: comp, Separator: c.sep}
		}
	}
	fp := fingerprint(c.sep, components)
	if v, ok := c.cache[fp]; ok {
		return v, nil
	}
	v, err := c.Adapter.Probe(ctx, components)
	if err != nil {
		return false, err
	}
	c.cache[fp] = v
	return v, nil
}
