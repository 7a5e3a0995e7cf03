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

import "github.com/Fantom-foundation/evm-compat/go/fixture"

//go:generate mockgen -source state.go -destination state_mock.go -package protocol

// State is the interface an execution engine has to implement to be tested
// by the harness. A State instance is created for a single test case and
// driven through a fixed sequence of calls:
//
//	ApplyNetworkType, ApplyAccounts, ApplyBlockHeader/ApplyTransaction for
//	every block, and finally ValidateAccount for every expected account.
//
// Implementations do not need to be thread-safe; the harness never shares
// a State between goroutines.
type State interface {
	// ApplyNetworkType selects the fork rules for the subsequent execution.
	ApplyNetworkType(network fixture.NetworkType) error

	// ApplyAccounts installs the pre-state. The result must not depend on
	// the iteration order of the accounts.
	ApplyAccounts(accounts fixture.Accounts) error

	// ApplyBlockHeader sets the block context for subsequent transactions.
	ApplyBlockHeader(header *fixture.BlockHeader) error

	// ApplyTransaction executes a single transaction in the current block
	// context.
	ApplyTransaction(transaction fixture.Transaction) error

	// ValidateAccount compares the engine's view of the given address with
	// the expected account state. A nil result signals a match. Balance,
	// nonce and code must be equal. Storage is compared slot by slot over
	// the keys of both maps, where a slot holding zero is equal to a slot
	// that is absent, matching the EVM's view of storage. To report a
	// skipped or mismatching account, implementations should return the
	// errors produced by NewSkip, NewMismatch or CompareAccounts. The
	// coinbase must be reported as skipped if skipCoinbase is set.
	ValidateAccount(address, coinbase fixture.Address, skipCoinbase bool, expected fixture.AccountState) error
}

// Factory creates a fresh, empty State for a single test case.
type Factory func() State
