// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Fantom-foundation/evm-compat/go/protocol"
	"github.com/xlab/treeprint"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Outcome classifies the result of an executed test case.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// CaseResult is the result of a single executed test case.
type CaseResult struct {
	Name       string
	Outcome    Outcome
	Num        TestNum
	Mismatches []*protocol.ValidationError
	Err        error // the apply error of an errored test case
}

// FixtureResult aggregates the results of the test cases of one fixture
// document. Denied and filtered test cases are only counted.
type FixtureResult struct {
	Name     string
	Num      TestNum
	Cases    []CaseResult
	Denied   int
	Filtered int
}

// Errored returns the number of test cases that failed to apply.
func (f *FixtureResult) Errored() int {
	count := 0
	for _, c := range f.Cases {
		if c.Outcome == Errored {
			count++
		}
	}
	return count
}

// Regression names a test case that passed in a previous run and does not
// pass anymore.
type Regression struct {
	Fixture string
	Case    string
}

func (r Regression) String() string {
	return r.Fixture + "/" + r.Case
}

// Report is the result of a run over one or more fixture documents.
type Report struct {
	Fixtures    []FixtureResult
	Regressions []Regression
}

// Num aggregates the counters of all fixtures.
func (r *Report) Num() TestNum {
	var res TestNum
	for _, f := range r.Fixtures {
		res = res.Add(f.Num)
	}
	return res
}

// Errored returns the number of test cases that failed to apply.
func (r *Report) Errored() int {
	res := 0
	for i := range r.Fixtures {
		res += r.Fixtures[i].Errored()
	}
	return res
}

// Passed reports whether no account mismatched and no test case errored.
func (r *Report) Passed() bool {
	return r.Num().Failed == 0 && r.Errored() == 0
}

var summaryRule = strings.Repeat("*", 109)

// Summary renders the result banner for the given counters.
func Summary(num TestNum) string {
	return fmt.Sprintf(
		"%s\nevm compatibility test result: total %d test cases; skipped %d cases; failed %d cases; success %d cases.\n%s\n",
		summaryRule, num.Total, num.Skipped, num.Failed, num.Success(), summaryRule,
	)
}

// Print writes a human-readable report to the given writer. Failing and
// errored test cases are listed as a tree; in verbose mode, mismatches are
// followed by a diff of the expected and actual account state.
func (r *Report) Print(out io.Writer, verbose bool) error {
	if tree := r.failureTree(); tree != nil {
		if _, err := fmt.Fprint(out, tree.String()); err != nil {
			return err
		}
	}
	if verbose {
		for _, f := range r.Fixtures {
			for _, c := range f.Cases {
				for _, mismatch := range c.Mismatches {
					diff, err := AccountDiff(mismatch)
					if err != nil {
						return err
					}
					if diff == "" {
						continue
					}
					if _, err := fmt.Fprintf(out, "--- %s/%s %v\n%s\n", f.Name, c.Name, mismatch.Address, diff); err != nil {
						return err
					}
				}
			}
		}
	}
	if len(r.Regressions) > 0 {
		if _, err := fmt.Fprintf(out, "Regressions (%d):\n", len(r.Regressions)); err != nil {
			return err
		}
		for _, regression := range r.Regressions {
			if _, err := fmt.Fprintf(out, "\t%v\n", regression); err != nil {
				return err
			}
		}
	}
	if errored := r.Errored(); errored > 0 {
		if _, err := fmt.Fprintf(out, "%d test cases failed to apply\n", errored); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(out, Summary(r.Num()))
	return err
}

// failureTree lists fixture -> test case -> failing accounts or apply
// errors. The result is nil if there is nothing to report.
func (r *Report) failureTree() treeprint.Tree {
	var tree treeprint.Tree
	for _, f := range r.Fixtures {
		var fixtureBranch treeprint.Tree
		for _, c := range f.Cases {
			if c.Outcome == Passed {
				continue
			}
			if tree == nil {
				tree = treeprint.NewWithRoot("failures")
			}
			if fixtureBranch == nil {
				fixtureBranch = tree.AddBranch(f.Name)
			}
			caseBranch := fixtureBranch.AddBranch(fmt.Sprintf("%s (%v)", c.Name, c.Outcome))
			if c.Err != nil {
				caseBranch.AddNode(c.Err.Error())
			}
			for _, mismatch := range c.Mismatches {
				caseBranch.AddNode(mismatch.Error())
			}
		}
	}
	return tree
}

// AccountDiff renders the difference between the expected and actual
// account of a mismatch as an ASCII JSON diff. The result is empty if the
// mismatch does not carry both account states.
func AccountDiff(mismatch *protocol.ValidationError) (string, error) {
	if mismatch.Expected == nil || mismatch.Actual == nil {
		return "", nil
	}
	expected, err := json.Marshal(mismatch.Expected)
	if err != nil {
		return "", err
	}
	actual, err := json.Marshal(mismatch.Actual)
	if err != nil {
		return "", err
	}
	delta, err := gojsondiff.New().Compare(expected, actual)
	if err != nil {
		return "", fmt.Errorf("failed to diff account states: %w", err)
	}
	if !delta.Modified() {
		return "", nil
	}
	var left map[string]any
	if err := json.Unmarshal(expected, &left); err != nil {
		return "", err
	}
	return formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
	}).Format(delta)
}
