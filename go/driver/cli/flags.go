// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/Fantom-foundation/evm-compat/go/config"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

type configFlagType struct {
	cli.StringFlag
}

var ConfigFlag = &configFlagType{
	cli.StringFlag{
		Name:      "config",
		Usage:     "TOML configuration file; the embedded default is used if not set",
		TakesFile: true,
	},
}

// Fetch loads the configuration file named by the flag, or the default
// configuration if the flag is not set.
func (f *configFlagType) Fetch(context *cli.Context) (config.Config, error) {
	path := context.String(f.Name)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

type fixturesFlagType struct {
	cli.StringFlag
}

var FixturesFlag = &fixturesFlagType{
	cli.StringFlag{
		Name:      "fixtures",
		Usage:     "directory containing the fixture documents of the bundle",
		TakesFile: true,
	},
}

// Fetch returns the fixture directory, overriding the configured one if set.
func (f *fixturesFlagType) Fetch(context *cli.Context, current string) string {
	if context.IsSet(f.Name) {
		return context.String(f.Name)
	}
	return current
}

type denyListFlagType struct {
	cli.StringFlag
}

var DenyListFlag = &denyListFlagType{
	cli.StringFlag{
		Name:      "deny-list",
		Usage:     "TOML file with a names array replacing the configured deny list",
		TakesFile: true,
	},
}

// Fetch returns the deny list from the file named by the flag, or the
// given list if the flag is not set.
func (f *denyListFlagType) Fetch(context *cli.Context, current []string) ([]string, error) {
	path := context.String(f.Name)
	if path == "" {
		return current, nil
	}
	return config.LoadDenyList(path)
}

// boolOverrideFlagType is a boolean flag that only overrides a configured
// value if it is explicitly set on the command line.
type boolOverrideFlagType struct {
	cli.BoolFlag
}

func (f *boolOverrideFlagType) Fetch(context *cli.Context, current bool) bool {
	if context.IsSet(f.Name) {
		return context.Bool(f.Name)
	}
	return current
}

var SkipCoinbaseFlag = &boolOverrideFlagType{
	cli.BoolFlag{
		Name:  "skip-coinbase",
		Usage: "exclude the coinbase account from post-state comparisons",
	},
}

var FailFastFlag = &boolOverrideFlagType{
	cli.BoolFlag{
		Name:  "fail-fast",
		Usage: "abort the run on the first failing test case",
	},
}

var PrimeFirstHeaderFlag = &boolOverrideFlagType{
	cli.BoolFlag{
		Name:  "prime-first-header",
		Usage: "apply the header of the first block once more before applying the blocks",
	},
}

type jobsFlagType struct {
	cli.IntFlag
}

var JobsFlag = &jobsFlagType{
	cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of test cases run simultaneously",
	},
}

func (f *jobsFlagType) Fetch(context *cli.Context, current int) int {
	if context.IsSet(f.Name) {
		return context.Int(f.Name)
	}
	return current
}

type seedFlagType struct {
	cli.Uint64Flag
}

var SeedFlag = &seedFlagType{
	cli.Uint64Flag{
		Name:    "seed",
		Aliases: []string{"s"},
		Usage:   "seed for shuffling the pre-state accounts, 0 disables shuffling",
	},
}

func (f *seedFlagType) Fetch(context *cli.Context, current uint64) uint64 {
	if context.IsSet(f.Name) {
		return context.Uint64(f.Name)
	}
	return current
}

type historyFlagType struct {
	cli.StringFlag
}

var HistoryFlag = &historyFlagType{
	cli.StringFlag{
		Name:      "history",
		Usage:     "directory of a database recording test outcomes to detect regressions",
		TakesFile: true,
	},
}

func (f *historyFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type caseFlagType struct {
	cli.StringFlag
}

var CaseFlag = &caseFlagType{
	cli.StringFlag{
		Name:  "case",
		Usage: "run only the test case with the given name",
	},
}

func (f *caseFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type verboseFlagType struct {
	cli.BoolFlag
}

var VerboseFlag = &verboseFlagType{
	cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "print a diff of the expected and actual state of mismatching accounts",
	},
}

func (f *verboseFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name)
}

type logLevelFlagType struct {
	cli.StringFlag
}

var LogLevelFlag = &logLevelFlagType{
	cli.StringFlag{
		Name:  "log-level",
		Usage: "level of diagnostic output (trace, debug, info, warn, error)",
		Value: "warn",
	},
}

// Fetch creates a logger writing to stderr at the requested level.
func (f *logLevelFlagType) Fetch(context *cli.Context) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(context.String(f.Name))
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return log, nil
}

var commonFlags = []cli.Flag{
	cpuProfileFlag,
	LogLevelFlag,
}

var cpuProfileFlag = &cli.StringFlag{
	Name:  "cpuprofile",
	Usage: "store CPU profile in the provided filename",
}

func AddCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, commonFlags...)

	action := command.Action
	command.Action = func(ctx *cli.Context) (err error) {

		if cpuprofileFilename := ctx.String(cpuProfileFlag.Name); cpuprofileFilename != "" {
			f, err := os.Create(cpuprofileFilename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		return action(ctx)
	}
	return command
}
