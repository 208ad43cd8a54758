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

package splitter

import (
	"context"

	"github.com/creachadair/ffs/combo"
	"github.com/creachadair/ffs/oracle"
	"github.com/creachadair/msync"
)

// probeRequest is one pending oracle query the Session's algorithm
// goroutine is waiting to have answered.
type probeRequest struct {
	components []string
}

type sessionResult struct {
	seq combo.Sequence
	err error
}

// A Session decouples generating the splitter's probes from dispatching
// them, so a caller can drive the same algorithm as [Split] one probe at
// a time instead of handing it a callback. It runs the chosen algorithm
// on a private goroutine that blocks between [Session.NextProbe] and
// [Session.Feed] calls, standing in for the generator/coroutine the
// source used for the same purpose.
//
// The zero value is not usable; construct one with [NewSession]. A
// Session must be driven to completion (NextProbe until done is true)
// or abandoned; it is not safe for concurrent use by multiple
// goroutines.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     *config
	article string

	reqCh  chan probeRequest
	respCh chan bool
	doneCh chan sessionResult

	started bool
	done    bool
	err     error
}

// NewSession prepares a session that will split article once driven.
func NewSession(article string, opts ...Option) *Session {
	return &Session{
		ctx:     context.Background(),
		cfg:     newConfig(opts),
		article: article,
		reqCh:   make(chan probeRequest),
		respCh:  make(chan bool),
		doneCh:  make(chan sessionResult, 1),
	}
}

func (s *Session) start() {
	s.started = true
	runCtx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	go func() {
		seq, err := runWithConfig(runCtx, s.article, s.probe, s.cfg)
		s.doneCh <- sessionResult{seq: seq, err: err}
	}()
}

// probe is the oracle.Func the session's algorithm goroutine calls;
// it blocks until the caller answers via Feed.
func (s *Session) probe(ctx context.Context, components []string) (bool, error) {
	select {
	case s.reqCh <- probeRequest{components: components}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case blocked := <-s.respCh:
		return blocked, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// NextProbe returns the next message the session needs an oracle
// verdict for. If done is true, the session has finished and result
// holds the discovered combination (possibly empty); components and
// the need for a matching [Session.Feed] call no longer apply.
func (s *Session) NextProbe() (components []string, done bool, result combo.Sequence) {
	if s.done {
		return nil, true, nil
	}
	if !s.started {
		s.start()
	}
	select {
	case req := <-s.reqCh:
		return req.components, false, nil
	case res := <-s.doneCh:
		s.done = true
		s.err = res.err
		return nil, true, res.seq
	}
}

// Feed supplies the oracle's verdict for the most recent components
// returned by NextProbe. Calling Feed without a pending NextProbe, or
// after NextProbe has reported done, is a programming error.
func (s *Session) Feed(blocked bool) {
	s.respCh <- blocked
}

// Abandon cancels a session's in-flight algorithm goroutine and drains
// its final result, so a caller that stops driving NextProbe/Feed
// early (for instance because the external oracle failed) does not
// leak the goroutine blocked waiting for a verdict that will never
// come.
func (s *Session) Abandon() {
	if s.done {
		return
	}
	if s.started {
		s.cancel()
		<-s.doneCh
	}
	s.done = true
}

// RunSync drives a fresh session s to completion, answering each probe
// immediately by calling oracle in line, for a caller that wants the
// suspension API's shape without its concurrency. [Split] and
// [SplitOrdered] do not go through a Session; they run the same
// algorithm directly.
func RunSync(ctx context.Context, s *Session, oracle oracle.Func) (combo.Sequence, error) {
	s.ctx = ctx
	for {
		components, done, result := s.NextProbe()
		if done {
			return result, s.err
		}
		blocked, err := oracle(ctx, components)
		if err != nil {
			s.Abandon()
			return nil, err
		}
		s.Feed(blocked)
	}
}

// RunAsync drives a fresh session s to completion like
// [RunSync], but hands each probe to oracle through a [msync.Flag]
// rather than calling it inline, so the probe/verdict boundary is a
// real suspension point for callers whose oracle is a network filter
// (spec.md §5, §9).
func RunAsync(ctx context.Context, s *Session, oracle oracle.Func) (combo.Sequence, error) {
	s.ctx = ctx
	ready := msync.NewFlag[struct{}]()
	for {
		components, done, result := s.NextProbe()
		if done {
			return result, s.err
		}

		var blocked bool
		var oerr error
		go func() {
			blocked, oerr = oracle(ctx, components)
			ready.Set(struct{}{})
		}()

		select {
		case <-ready.Ready():
		case <-ctx.Done():
			s.Abandon()
			return nil, ctx.Err()
		}
		ready = msync.NewFlag[struct{}]()

		if oerr != nil {
			s.Abandon()
			return nil, oerr
		}
		s.Feed(blocked)
	}
}
