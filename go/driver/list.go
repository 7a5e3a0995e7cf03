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
	"io"
	"os"
	"sort"

	cliUtils "github.com/Fantom-foundation/evm-compat/go/driver/cli"
	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/Fantom-foundation/evm-compat/go/protocol"
	"github.com/Fantom-foundation/evm-compat/go/runner"
	"github.com/urfave/cli/v2"
)

var ListCmd = cli.Command{
	Action:    doList,
	Name:      "list",
	Usage:     "List the test cases of a fixture document",
	ArgsUsage: "<fixture.json>",
	Flags: []cli.Flag{
		cliUtils.ConfigFlag,
		cliUtils.DenyListFlag,
	},
}

func doList(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one fixture file, got %d arguments", context.Args().Len())
	}
	data, err := os.ReadFile(context.Args().Get(0))
	if err != nil {
		return err
	}
	document, err := fixture.Decode(data)
	if err != nil {
		return err
	}

	cfg, err := cliUtils.ConfigFlag.Fetch(context)
	if err != nil {
		return err
	}
	names, err := cliUtils.DenyListFlag.Fetch(context, cfg.DenyList.Names)
	if err != nil {
		return err
	}
	denied := runner.NewDenyList(names...)

	for _, name := range document.Names() {
		testCase := document[name]
		suffix := ""
		if denied.Contains(name) {
			suffix = " (denied)"
		}
		fmt.Printf("%s\t%v\t%d blocks\t%d accounts%s\n", name, testCase.Network, len(testCase.Blocks), len(testCase.PostState), suffix)
	}
	return nil
}

var EnginesCmd = cli.Command{
	Action: doEngines,
	Name:   "engines",
	Usage:  "List all registered engines",
}

func doEngines(*cli.Context) error {
	printEngines(os.Stdout)
	return nil
}

// printEngines lists the registered engines in name order together with
// the type of the states they create.
func printEngines(w io.Writer) {
	engines := protocol.GetAllRegisteredEngines()
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%T\n", name, engines[name]())
	}
}
