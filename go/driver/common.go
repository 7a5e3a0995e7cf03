// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Fantom-foundation/evm-compat/go/config"
	cliUtils "github.com/Fantom-foundation/evm-compat/go/driver/cli"
	"github.com/Fantom-foundation/evm-compat/go/protocol"
	"github.com/Fantom-foundation/evm-compat/go/runner"
	"github.com/Fantom-foundation/evm-compat/go/store"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// runFlags are shared by all commands executing test cases.
var runFlags = []cli.Flag{
	cliUtils.ConfigFlag,
	cliUtils.DenyListFlag,
	cliUtils.SkipCoinbaseFlag,
	cliUtils.FailFastFlag,
	cliUtils.PrimeFirstHeaderFlag,
	cliUtils.JobsFlag,
	cliUtils.SeedFlag,
	cliUtils.HistoryFlag,
	cliUtils.VerboseFlag,
}

// session bundles the resources derived from the command line.
type session struct {
	config  config.Config
	log     *logrus.Logger
	history *store.History
}

func openSession(context *cli.Context) (*session, error) {
	log, err := cliUtils.LogLevelFlag.Fetch(context)
	if err != nil {
		return nil, err
	}
	cfg, err := cliUtils.ConfigFlag.Fetch(context)
	if err != nil {
		return nil, err
	}

	cfg.Fixtures.Dir = cliUtils.FixturesFlag.Fetch(context, cfg.Fixtures.Dir)
	cfg.Run.SkipCoinbase = cliUtils.SkipCoinbaseFlag.Fetch(context, cfg.Run.SkipCoinbase)
	cfg.Run.FailFast = cliUtils.FailFastFlag.Fetch(context, cfg.Run.FailFast)
	cfg.Run.PrimeFirstHeader = cliUtils.PrimeFirstHeaderFlag.Fetch(context, cfg.Run.PrimeFirstHeader)
	cfg.Run.Jobs = cliUtils.JobsFlag.Fetch(context, cfg.Run.Jobs)
	cfg.Run.ShuffleSeed = cliUtils.SeedFlag.Fetch(context, cfg.Run.ShuffleSeed)
	if cfg.DenyList.Names, err = cliUtils.DenyListFlag.Fetch(context, cfg.DenyList.Names); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &session{config: cfg, log: log}
	if path := cliUtils.HistoryFlag.Fetch(context); path != "" {
		if res.history, err = store.Open(path); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *session) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

// newRunner creates a runner for the engine registered under the given name.
func (s *session) newRunner(engine string) (*runner.Runner, error) {
	factory := protocol.GetEngine(engine)
	if factory == nil {
		return nil, fmt.Errorf("invalid engine identifier %q, use one of: %v", engine, protocol.GetEngineNames())
	}
	cfg := s.config.RunnerConfig()
	cfg.Logger = s.log
	if s.history != nil {
		cfg.History = s.history
	}
	return runner.New(factory, cfg)
}

// finish prints the report and converts the result into the error reported
// by the driver.
func finish(report *runner.Report, runErr error, verbose bool) error {
	if report != nil {
		if err := report.Print(os.Stdout, verbose); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, runner.ErrAborted) {
		return runErr
	}
	if report == nil || report.Passed() {
		return runErr
	}
	failing := 0
	for _, f := range report.Fixtures {
		for _, c := range f.Cases {
			if c.Outcome != runner.Passed {
				failing++
			}
		}
	}
	return fmt.Errorf("failed to pass %d test cases", failing)
}
