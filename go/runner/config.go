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
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Config summarizes the options of a Runner.
type Config struct {
	// SkipCoinbase requests engines to skip the validation of the coinbase.
	SkipCoinbase bool
	// Filter restricts execution to the test case with the given name. An
	// empty filter selects all test cases.
	Filter string
	// DenyList names test cases that are never executed.
	DenyList DenyList
	// FailFast aborts the run on the first failing or errored test case.
	FailFast bool
	// PrimeFirstHeader applies the header of the first block an additional
	// time before the regular block application starts.
	PrimeFirstHeader bool
	// Jobs is the number of test cases processed in parallel; values below
	// one are treated as one.
	Jobs int
	// ShuffleSeed, if non-zero, randomizes the order in which pre-state
	// accounts are handed to the engine.
	ShuffleSeed uint64
	// ProgressInterval is the period of progress reports in parallel runs.
	// Zero disables progress reports.
	ProgressInterval time.Duration
	// Logger receives diagnostic output. If nil, the standard logger is used.
	Logger *logrus.Logger
	// History, if set, records test outcomes and is used to detect
	// regressions.
	History History
}

// DenyList is a set of test case names excluded from execution.
type DenyList map[string]struct{}

// NewDenyList creates a deny list containing the given names.
func NewDenyList(names ...string) DenyList {
	res := make(DenyList, len(names))
	for _, name := range names {
		res[name] = struct{}{}
	}
	return res
}

// Contains reports whether the given test case is denied. A nil list
// denies nothing.
func (d DenyList) Contains(name string) bool {
	_, found := d[name]
	return found
}

// Names returns the denied names in lexicographical order.
func (d DenyList) Names() []string {
	res := make([]string, 0, len(d))
	for name := range d {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// History is a persistent record of test outcomes.
type History interface {
	// Record stores the outcome of the given test case and returns the
	// previously recorded outcome, if any.
	Record(fixture, testCase string, passed bool) (wasPassing bool, found bool, err error)
}
