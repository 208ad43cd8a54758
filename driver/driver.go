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

package driver

import (
	"context"
	"sync"

	"github.com/creachadair/ffs/oracle"
	"github.com/creachadair/ffs/splitter"
	"github.com/creachadair/taskgroup"
)

// runConfig holds the resolved settings for a [Run].
type runConfig struct {
	limit     int
	reportDir string
	opts      []splitter.Option
}

// RunOption configures a call to [Run].
type RunOption func(*runConfig)

// WithConcurrency bounds the number of articles processed at once
// (default 8, spec §5's "driver owns concurrency, the core stays
// sequential").
func WithConcurrency(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithReportDir enables persisting a content-addressed report file per
// article under dir. If unset, no report files are written.
func WithReportDir(dir string) RunOption {
	return func(c *runConfig) { c.reportDir = dir }
}

// WithSplitterOptions passes opts through to every per-article
// [splitter.Split] call, e.g. to select [splitter.Backward] or
// [splitter.ExpBinary].
func WithSplitterOptions(opts ...splitter.Option) RunOption {
	return func(c *runConfig) { c.opts = opts }
}

// Run splits every article in corpus against probe, bounding concurrency
// across articles per spec §5 and collecting the results into a
// [Report]. Articles are processed independently; a per-article error
// is recorded as a zero-query, unmatched result rather than aborting
// the whole run, so one bad article cannot sink an entire corpus.
func Run(ctx context.Context, corpus *Corpus, probe oracle.Func, opts ...RunOption) (*Report, error) {
	cfg := &runConfig{limit: 8}
	for _, opt := range opts {
		opt(cfg)
	}

	results := make([]ArticleResult, len(corpus.Articles))
	g, run := taskgroup.New(nil).Limit(cfg.limit)
	var mu sync.Mutex // guards report file writes, which share a directory

	for i, art := range corpus.Articles {
		run(func() error {
			adapter, err := oracle.NewAdapter('\x00', probe)
			if err != nil {
				return err
			}
			found, err := splitter.Split(ctx, art.Text, adapter.Probe, cfg.opts...)
			if err != nil {
				results[i] = ArticleResult{ID: art.ID}
				return nil
			}
			res := ArticleResult{ID: art.ID, Found: found, Queries: adapter.Queries()}
			if truth := art.groundTruthSet(); truth != nil {
				res.HasGroundTruth = true
				res.Matched = truth.Equals(found)
			}
			results[i] = res

			if cfg.reportDir != "" {
				mu.Lock()
				defer mu.Unlock()
				return writeReportFile(cfg.reportDir, res, art.Text)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Report{Results: results}, nil
}

// Verify reports whether every article in r with a declared ground
// truth matched it, along with the IDs of any that did not. Articles
// with no declared ground truth are ignored.
func Verify(r *Report) (ok bool, mismatches []string) {
	ok = true
	for _, res := range r.Results {
		if !res.HasGroundTruth {
			continue
		}
		if !res.Matched {
			mismatches = append(mismatches, res.ID)
			ok = false
		}
	}
	return ok, mismatches
}
