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
	"errors"
	"fmt"

	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/Fantom-foundation/evm-compat/go/protocol"
	"github.com/sirupsen/logrus"
	"pgregory.net/rand"
)

// ErrAborted is returned if a run was stopped early in fail-fast mode.
const ErrAborted = ConstErr("run aborted after first failure")

type ConstErr string

func (e ConstErr) Error() string {
	return string(e)
}

// Runner drives test cases through engine states created by a factory and
// scores the resulting states.
type Runner struct {
	factory protocol.Factory
	config  Config
	log     *logrus.Logger
}

// New creates a runner for the engine produced by the given factory.
func New(factory protocol.Factory, config Config) (*Runner, error) {
	if factory == nil {
		return nil, fmt.Errorf("invalid runner configuration: missing state factory")
	}
	if config.Jobs < 1 {
		config.Jobs = 1
	}
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{factory: factory, config: config, log: log}, nil
}

// RunAll loads and runs all documents of the given bundle in order. A
// document that can not be loaded ends the run with an error.
func (r *Runner) RunAll(bundle fixture.Bundle, loader *fixture.Loader) (*Report, error) {
	report := &Report{}
	for _, entry := range bundle {
		document, err := loader.Load(entry.File)
		if err != nil {
			return report, err
		}
		if err := r.runInto(report, entry.Name, document, r.config.Filter); err != nil {
			return report, err
		}
	}
	return report, nil
}

// RunOne decodes a single fixture document and runs it. A non-empty filter
// restricts the run to the test case of that name.
func (r *Runner) RunOne(name string, text []byte, filter string) (*Report, error) {
	document, err := fixture.Decode(text)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	return report, r.runInto(report, name, document, filter)
}

// RunFixture runs all selected test cases of the given fixture. The error
// is ErrAborted if fail-fast mode stopped the execution early, in which case
// the result covers the test cases executed so far.
func (r *Runner) RunFixture(name string, document fixture.Fixture) (FixtureResult, error) {
	return r.runFixture(name, document, r.config.Filter)
}

func (r *Runner) runInto(report *Report, name string, document fixture.Fixture, filter string) error {
	result, err := r.runFixture(name, document, filter)
	report.Fixtures = append(report.Fixtures, result)
	report.Regressions = append(report.Regressions, r.recordHistory(&result)...)
	return err
}

func (r *Runner) runFixture(name string, document fixture.Fixture, filter string) (FixtureResult, error) {
	result := FixtureResult{Name: name}
	var selected []string
	for _, caseName := range document.Names() {
		if r.config.DenyList.Contains(caseName) {
			r.log.WithFields(logrus.Fields{"fixture": name, "case": caseName}).Debug("skipping denied test case")
			result.Denied++
			continue
		}
		if filter != "" && filter != caseName {
			result.Filtered++
			continue
		}
		selected = append(selected, caseName)
	}

	run := r.runSequential
	if r.config.Jobs > 1 && len(selected) > 1 {
		run = r.runParallel
	}
	cases, aborted := run(name, selected, document)

	for _, res := range cases {
		result.Num = result.Num.Add(res.Num)
		result.Cases = append(result.Cases, res)
	}

	entry := r.log.WithFields(logrus.Fields{
		"fixture": name,
		"total":   result.Num.Total,
		"failed":  result.Num.Failed,
		"skipped": result.Num.Skipped,
		"errored": result.Errored(),
	})
	if aborted {
		entry.Warn("fixture aborted")
		return result, ErrAborted
	}
	entry.Info("fixture completed")
	return result, nil
}

func (r *Runner) runSequential(fixtureName string, names []string, document fixture.Fixture) ([]CaseResult, bool) {
	res := make([]CaseResult, 0, len(names))
	for _, name := range names {
		testCase := document[name]
		result := r.runCase(fixtureName, name, &testCase)
		res = append(res, result)
		if r.config.FailFast && result.Outcome != Passed {
			return res, true
		}
	}
	return res, false
}

// runCase executes a single test case on a fresh state. Apply errors end
// the test case without a score.
func (r *Runner) runCase(fixtureName, name string, testCase *fixture.TestCase) CaseResult {
	log := r.log.WithFields(logrus.Fields{"fixture": fixtureName, "case": name})
	log.Debug("running test case")

	result := CaseResult{Name: name}
	state := r.factory()
	if err := r.apply(state, testCase); err != nil {
		log.WithError(err).Warn("failed to apply test case")
		result.Outcome = Errored
		result.Err = err
		return result
	}

	result.Num, result.Mismatches = Score(state, testCase.PostState, testCase.Coinbase(), r.config.SkipCoinbase, r.config.FailFast)

	for _, mismatch := range result.Mismatches {
		log.WithField("address", mismatch.Address).Warn(mismatch.Error())
	}
	if result.Num.Failed > 0 {
		result.Outcome = Failed
	}
	return result
}

func (r *Runner) apply(state protocol.State, testCase *fixture.TestCase) error {
	if state == nil {
		return errors.New("engine factory produced no state")
	}
	if err := protocol.ApplyNetworkType(state, testCase.Network); err != nil {
		return err
	}
	if err := protocol.ApplyAccounts(state, r.shuffle(testCase.Pre)); err != nil {
		return err
	}
	if r.config.PrimeFirstHeader && len(testCase.Blocks) > 0 {
		if err := state.ApplyBlockHeader(&testCase.Blocks[0].Header); err != nil {
			return &protocol.ApplyError{Step: protocol.StepHeader, Block: 0, Transaction: -1, Err: err}
		}
	}
	return protocol.ApplyBlocks(state, testCase.Blocks)
}

// shuffle re-inserts the given accounts in a seeded random order.
func (r *Runner) shuffle(accounts fixture.Accounts) fixture.Accounts {
	if r.config.ShuffleSeed == 0 || len(accounts) < 2 {
		return accounts
	}
	addresses := accounts.Addresses()
	rand.New(r.config.ShuffleSeed).Shuffle(len(addresses), func(i, j int) {
		addresses[i], addresses[j] = addresses[j], addresses[i]
	})
	res := make(fixture.Accounts, len(accounts))
	for _, address := range addresses {
		res[address] = accounts[address]
	}
	return res
}

func (r *Runner) recordHistory(result *FixtureResult) []Regression {
	if r.config.History == nil {
		return nil
	}
	var res []Regression
	for _, c := range result.Cases {
		passed := c.Outcome == Passed
		wasPassing, found, err := r.config.History.Record(result.Name, c.Name, passed)
		if err != nil {
			r.log.WithError(err).Error("failed to record test outcome")
			continue
		}
		if found && wasPassing && !passed {
			res = append(res, Regression{Fixture: result.Name, Case: c.Name})
		}
	}
	return res
}
