// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package protocol

import (
	"fmt"

	"github.com/Fantom-foundation/evm-compat/go/fixture"
)

// Step names the protocol operation an ApplyError originates from.
type Step string

const (
	StepNetwork     Step = "network"
	StepAccounts    Step = "accounts"
	StepHeader      Step = "header"
	StepTransaction Step = "transaction"
)

// ApplyError reports a failure of the engine while applying part of a test
// case. Block and Transaction are -1 if not applicable.
type ApplyError struct {
	Step        Step
	Block       int
	Transaction int
	Err         error
}

func (e *ApplyError) Error() string {
	what := string(e.Step)
	if e.Transaction >= 0 {
		what = fmt.Sprintf("%s %d", what, e.Transaction)
	}
	if e.Block >= 0 {
		what = fmt.Sprintf("%s of block %d", what, e.Block)
	}
	return fmt.Sprintf("failed to apply %s: %v", what, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// ApplyNetworkType forwards the network type to the state, wrapping
// failures into an ApplyError.
func ApplyNetworkType(state State, network fixture.NetworkType) error {
	if err := state.ApplyNetworkType(network); err != nil {
		return &ApplyError{Step: StepNetwork, Block: -1, Transaction: -1, Err: err}
	}
	return nil
}

// ApplyAccounts forwards the pre-state to the state, wrapping failures into
// an ApplyError.
func ApplyAccounts(state State, accounts fixture.Accounts) error {
	if err := state.ApplyAccounts(accounts); err != nil {
		return &ApplyError{Step: StepAccounts, Block: -1, Transaction: -1, Err: err}
	}
	return nil
}

// ApplyBlock applies the header of the given block followed by all of its
// transactions in order. The first failure aborts the block; later
// transactions are not applied.
func ApplyBlock(state State, block fixture.Block) error {
	return applyBlock(state, -1, &block)
}

// ApplyBlocks applies the given blocks in order, stopping at the first
// failing block.
func ApplyBlocks(state State, blocks []fixture.Block) error {
	for i := range blocks {
		if err := applyBlock(state, i, &blocks[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyBlock(state State, index int, block *fixture.Block) error {
	if err := state.ApplyBlockHeader(&block.Header); err != nil {
		return &ApplyError{Step: StepHeader, Block: index, Transaction: -1, Err: err}
	}
	for i, tx := range block.Transactions {
		if err := state.ApplyTransaction(tx); err != nil {
			return &ApplyError{Step: StepTransaction, Block: index, Transaction: i, Err: err}
		}
	}
	return nil
}
