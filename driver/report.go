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
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/ffs/combo"
	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"
)

// ArticleResult is the outcome of running the splitter core against a
// single article.
type ArticleResult struct {
	ID      string
	Found   combo.Set
	Queries int64
	// HasGroundTruth reports whether the source article declared a
	// ground-truth combination to check Found against.
	HasGroundTruth bool
	// Matched reports whether Found agrees with the article's declared
	// ground truth. Meaningless when HasGroundTruth is false.
	Matched bool
}

// Report summarizes a [Run] over a whole corpus.
type Report struct {
	Results []ArticleResult
}

// QueryRatio returns the mean number of oracle queries per article,
// the aggregate figure spec §6 asks a driver to report. It returns 0 for
// an empty report.
func (r *Report) QueryRatio() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	var total int64
	for _, res := range r.Results {
		total += res.Queries
	}
	return float64(total) / float64(len(r.Results))
}

// reportHash is the digest function used to derive a report file's
// content address, mirroring blob.hashCAS's use of blake2b.
var reportHash = blake2b.Sum256

// casKey computes the content-addressed file name for an article's raw
// text, so a report for the same article text can always be found again
// under the same name regardless of article ID.
func casKey(articleText string) string {
	h := reportHash([]byte(articleText))
	return hex.EncodeToString(h[:])
}

// encodeBlock snappy-compresses data and packs it with a varint length
// prefix, the on-disk framing blob/filestore uses for compressed blobs.
func encodeBlock(data []byte) []byte {
	buf := make([]byte, 4+snappy.MaxEncodedLen(len(data)))
	n := binary.PutVarint(buf, int64(len(data)))
	enc := snappy.Encode(buf[n:], data)
	return buf[:n+len(enc)]
}

// decodeBlock reverses [encodeBlock], verifying the decompressed length
// against the varint prefix.
func decodeBlock(data []byte) ([]byte, error) {
	v, n := binary.Varint(data)
	if n <= 0 {
		return nil, fmt.Errorf("driver: invalid length tag")
	}
	blk, err := snappy.Decode(nil, data[n:])
	if err != nil {
		return nil, err
	}
	if v != int64(len(blk)) {
		return nil, fmt.Errorf("driver: corrupted report block: got %d bytes, want %d", len(blk), v)
	}
	return blk, nil
}

// writeReportFile persists one article's result as a compressed,
// content-addressed file under dir, named for the article's text so
// reruns of the same article overwrite rather than accumulate. The
// first line holds the query count; the remaining lines are the
// discovered components, one per line.
func writeReportFile(dir string, res ArticleResult, articleText string) error {
	path := filepath.Join(dir, casKey(articleText)+".rpt")
	members := res.Found.Slice()
	slices.Sort(members)
	lines := append([]string{strconv.FormatInt(res.Queries, 10)}, members...)
	blk := encodeBlock([]byte(strings.Join(lines, "\n")))
	return atomicfile.WriteData(path, blk, 0600)
}

// PersistedResult is one report file's worth of data, as read back by
// [ReadReportDir].
type PersistedResult struct {
	Queries int64
	Found   combo.Set
}

// ReadReportDir loads every report file under dir, as written by a prior
// [Run] called with [WithReportDir].
func ReadReportDir(dir string) ([]PersistedResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading report directory: %w", err)
	}
	var out []PersistedResult
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".rpt") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		blk, err := decodeBlock(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		lines := strings.Split(string(blk), "\n")
		if len(lines) == 0 {
			continue
		}
		n, err := strconv.ParseInt(lines[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid query count: %w", e.Name(), err)
		}
		out = append(out, PersistedResult{Queries: n, Found: combo.Sequence(lines[1:]).Set()})
	}
	return out, nil
}
