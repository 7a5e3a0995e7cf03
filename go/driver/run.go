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
	"fmt"
	"os"

	cliUtils "github.com/Fantom-foundation/evm-compat/go/driver/cli"
	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/urfave/cli/v2"
)

var RunCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Run the configured fixture bundle on an engine",
	ArgsUsage: "<engine>",
	Flags:     append([]cli.Flag{cliUtils.FixturesFlag}, runFlags...),
})

func doRun(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one engine, got %d arguments", context.Args().Len())
	}

	session, err := openSession(context)
	if err != nil {
		return err
	}
	defer session.Close()

	runner, err := session.newRunner(context.Args().Get(0))
	if err != nil {
		return err
	}

	cfg := session.config
	if _, err := os.Stat(cfg.Fixtures.Dir); err != nil {
		return fmt.Errorf("invalid fixture directory: %w", err)
	}
	loader, err := fixture.NewLoader(os.DirFS(cfg.Fixtures.Dir), cfg.Fixtures.CacheSize)
	if err != nil {
		return err
	}

	fmt.Printf("Running %d fixture documents from %s using %d jobs ...\n",
		len(cfg.Fixtures.Bundle), cfg.Fixtures.Dir, max(cfg.Run.Jobs, 1))
	report, err := runner.RunAll(cfg.Bundle(), loader)
	return finish(report, err, cliUtils.VerboseFlag.Fetch(context))
}
