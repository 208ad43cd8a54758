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

// Package driver runs the splitter core against a corpus of articles and
// an oracle, bounding concurrency across articles and assembling a report
// (spec §5, §6).
package driver

import (
	"fmt"
	"os"

	"github.com/creachadair/ffs/combo"
	yaml "gopkg.in/yaml.v3"
)

// Article is one entry in a [Corpus]: the text to split, and optionally
// the combination known (from a prior run of the original tool, or from
// a test fixture) to trigger the oracle, used only to check a run's
// result, never consulted by the core itself.
type Article struct {
	ID          string   `yaml:"id"`
	Text        string   `yaml:"text"`
	GroundTruth []string `yaml:"ground-truth,omitempty"`
}

// Corpus is a named collection of articles to run through a [Run].
type Corpus struct {
	Articles []Article `yaml:"articles"`
}

// LoadCorpus reads and parses a YAML corpus file from path. If path does
// not exist, an empty corpus is returned without error.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return new(Corpus), nil
	} else if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}
	c := new(Corpus)
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing corpus file: %w", err)
	}
	return c, nil
}

// groundTruthSet returns a's ground truth as a [combo.Set], or nil if a
// does not declare one.
func (a Article) groundTruthSet() combo.Set {
	if len(a.GroundTruth) == 0 {
		return nil
	}
	return combo.Sequence(a.GroundTruth).Set()
}
