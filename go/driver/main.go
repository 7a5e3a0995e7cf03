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

	_ "github.com/Fantom-foundation/evm-compat/go/engine/dryrun"
	_ "github.com/Fantom-foundation/evm-compat/go/engine/geth"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	// Commands are copied since the cli package keeps per-run state in them.
	run, single, list, engines := RunCmd, SingleCmd, ListCmd, EnginesCmd
	return &cli.App{
		Name:      "driver",
		Usage:     "EVM Compatibility Test Driver",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags:     []cli.Flag{},
		Commands: []*cli.Command{
			&run,
			&single,
			&list,
			&engines,
		},
	}
}
