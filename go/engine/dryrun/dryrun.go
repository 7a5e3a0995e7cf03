// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package dryrun provides an engine accepting every input and reporting
// every account as matching. It is used to check fixture documents and the
// harness itself without an execution engine.
package dryrun

import (
	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/Fantom-foundation/evm-compat/go/protocol"
)

func init() {
	protocol.MustRegisterEngine("dryrun", NewState)
}

// State counts the applied inputs but does not execute anything.
type State struct {
	Network      fixture.NetworkType
	Accounts     int
	Headers      int
	Transactions int
}

func NewState() protocol.State {
	return &State{}
}

func (s *State) ApplyNetworkType(network fixture.NetworkType) error {
	s.Network = network
	return nil
}

func (s *State) ApplyAccounts(accounts fixture.Accounts) error {
	s.Accounts += len(accounts)
	return nil
}

func (s *State) ApplyBlockHeader(*fixture.BlockHeader) error {
	s.Headers++
	return nil
}

func (s *State) ApplyTransaction(fixture.Transaction) error {
	s.Transactions++
	return nil
}

func (s *State) ValidateAccount(address, coinbase fixture.Address, skipCoinbase bool, _ fixture.AccountState) error {
	if protocol.IsSkippedCoinbase(address, coinbase, skipCoinbase) {
		return protocol.NewSkip(address)
	}
	return nil
}
