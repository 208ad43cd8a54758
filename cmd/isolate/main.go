// Copyright 2021 Michael J. Fromberger. All Rights Reserved.
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

// Program isolate runs the component-aware splitter against a corpus of
// articles and an external censorship oracle, and reports the keyword
// combinations discovered.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creachadair/command"
	"github.com/creachadair/ffs/driver"
	"github.com/creachadair/ffs/splitter"
)

func main() {
	root := &command.C{
		Name: filepath.Base(os.Args[0]),
		Usage: `<command> [arguments]
help [<command>]`,
		Help: `A command-line tool to isolate censored keyword combinations.`,

		Commands: []*command.C{
			runCommand,
			reportCommand,
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil), os.Args[1:])
}

var runFlags struct {
	Corpus     string
	ReportDir  string
	Backward   bool
	ExpBinary  bool
	Concurrent int
}

var runCommand = &command.C{
	Name:  "run",
	Usage: "-corpus <path>",
	Help:  "Split every article in a corpus against the configured oracle.",

	SetFlags: func(_ *command.Env, fs *flag.FlagSet) {
		fs.StringVar(&runFlags.Corpus, "corpus", "", "Corpus YAML file (required)")
		fs.StringVar(&runFlags.ReportDir, "report-dir", "", "Directory to write per-article report files")
		fs.BoolVar(&runFlags.Backward, "backward", false, "Scan articles right to left")
		fs.BoolVar(&runFlags.ExpBinary, "exp-binary", false, "Use the exponential-and-binary far-edge strategy")
		fs.IntVar(&runFlags.Concurrent, "concurrent", 8, "Maximum number of articles to split at once")
	},

	Run: func(env *command.Env, args []string) error {
		if runFlags.Corpus == "" {
			return fmt.Errorf("isolate run: -corpus is required")
		}
		corpus, err := driver.LoadCorpus(runFlags.Corpus)
		if err != nil {
			return err
		}

		opts := []driver.RunOption{
			driver.WithConcurrency(runFlags.Concurrent),
			driver.WithSplitterOptions(splitterOptions(runFlags.Backward, runFlags.ExpBinary)...),
		}
		if runFlags.ReportDir != "" {
			opts = append(opts, driver.WithReportDir(runFlags.ReportDir))
		}

		// No live censorship service is configured, so a corpus's own
		// declared ground truth drives an in-process simulator oracle
		// (see [driver.NewSimulatorOracle]); wiring in a real service is
		// a matter of supplying a different oracle.Func here.
		probe := driver.NewSimulatorOracle(driver.GroundTruthCombos(corpus))

		report, err := driver.Run(context.Background(), corpus, probe, opts...)
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

var reportFlags struct {
	ReportDir string
}

var reportCommand = &command.C{
	Name:  "report",
	Usage: "-report-dir <path>",
	Help:  "Print the aggregate query ratio from a previous run's persisted reports.",

	SetFlags: func(_ *command.Env, fs *flag.FlagSet) {
		fs.StringVar(&reportFlags.ReportDir, "report-dir", "", "Directory of report files from a prior run (required)")
	},

	Run: func(env *command.Env, args []string) error {
		if reportFlags.ReportDir == "" {
			return fmt.Errorf("isolate report: -report-dir is required")
		}
		results, err := driver.ReadReportDir(reportFlags.ReportDir)
		if err != nil {
			return err
		}
		var total int64
		for _, res := range results {
			total += res.Queries
			fmt.Printf("%v (%d queries)\n", res.Found.Slice(), res.Queries)
		}
		if len(results) == 0 {
			fmt.Println("no report files found")
			return nil
		}
		fmt.Printf("articles: %d\nquery ratio: %.2f\n", len(results), float64(total)/float64(len(results)))
		return nil
	},
}

func splitterOptions(backward, expBinary bool) []splitter.Option {
	var opts []splitter.Option
	if backward {
		opts = append(opts, splitter.WithDirection(splitter.Backward))
	}
	if expBinary {
		opts = append(opts, splitter.WithStrategy(splitter.ExpBinary))
	}
	return opts
}

func printReport(report *driver.Report) {
	for _, res := range report.Results {
		fmt.Printf("%s: %v (%d queries)\n", res.ID, res.Found.Slice(), res.Queries)
	}
	fmt.Printf("query ratio: %.2f\n", report.QueryRatio())
}
