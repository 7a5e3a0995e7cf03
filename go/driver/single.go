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
	"path/filepath"
	"strings"

	cliUtils "github.com/Fantom-foundation/evm-compat/go/driver/cli"
	"github.com/urfave/cli/v2"
)

var SingleCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doSingle,
	Name:      "single",
	Usage:     "Run a single fixture document on an engine",
	ArgsUsage: "<engine> <fixture.json>",
	Flags:     append([]cli.Flag{cliUtils.CaseFlag}, runFlags...),
})

func doSingle(context *cli.Context) error {
	if context.Args().Len() != 2 {
		return fmt.Errorf("expected an engine and a fixture file, got %d arguments", context.Args().Len())
	}
	path := context.Args().Get(1)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
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

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	report, err := runner.RunOne(name, data, cliUtils.CaseFlag.Fetch(context))
	if report == nil {
		return fmt.Errorf("failed to run %s: %w", path, err)
	}
	return finish(report, err, cliUtils.VerboseFlag.Fetch(context))
}
