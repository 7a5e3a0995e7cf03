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
	"errors"
	"strings"
	"testing"

	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/holiman/uint256"
	"go.uber.org/mock/gomock"
)

func TestApplyBlock_HeaderIsAppliedBeforeTransactionsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockState(ctrl)

	block := fixture.Block{
		Header: fixture.BlockHeader{Number: *uint256.NewInt(1)},
		Transactions: []fixture.Transaction{
			{Nonce: *uint256.NewInt(0)},
			{Nonce: *uint256.NewInt(1)},
			{Nonce: *uint256.NewInt(2)},
		},
	}

	gomock.InOrder(
		state.EXPECT().ApplyBlockHeader(&block.Header),
		state.EXPECT().ApplyTransaction(block.Transactions[0]),
		state.EXPECT().ApplyTransaction(block.Transactions[1]),
		state.EXPECT().ApplyTransaction(block.Transactions[2]),
	)

	if err := ApplyBlock(state, block); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyBlock_FailingTransactionStopsTheBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockState(ctrl)

	block := fixture.Block{
		Transactions: []fixture.Transaction{
			{Nonce: *uint256.NewInt(0)},
			{Nonce: *uint256.NewInt(1)},
			{Nonce: *uint256.NewInt(2)},
		},
	}
	injected := errors.New("injected")

	gomock.InOrder(
		state.EXPECT().ApplyBlockHeader(gomock.Any()),
		state.EXPECT().ApplyTransaction(block.Transactions[0]),
		state.EXPECT().ApplyTransaction(block.Transactions[1]).Return(injected),
	)

	err := ApplyBlock(state, block)
	if !errors.Is(err, injected) {
		t.Fatalf("expected %v, got %v", injected, err)
	}
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		t.Fatalf("expected an ApplyError, got %T", err)
	}
	if want, got := StepTransaction, applyErr.Step; want != got {
		t.Errorf("unexpected step, wanted %v, got %v", want, got)
	}
	if want, got := 1, applyErr.Transaction; want != got {
		t.Errorf("unexpected transaction index, wanted %d, got %d", want, got)
	}
}

func TestApplyBlock_FailingHeaderSkipsTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockState(ctrl)
	injected := errors.New("injected")

	state.EXPECT().ApplyBlockHeader(gomock.Any()).Return(injected)

	err := ApplyBlock(state, fixture.Block{Transactions: []fixture.Transaction{{}}})
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) || applyErr.Step != StepHeader {
		t.Errorf("expected header ApplyError, got %v", err)
	}
}

func TestApplyBlocks_BlocksAreAppliedInOrderAndStopAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockState(ctrl)

	blocks := []fixture.Block{
		{Header: fixture.BlockHeader{Number: *uint256.NewInt(1)}, Transactions: []fixture.Transaction{{}}},
		{Header: fixture.BlockHeader{Number: *uint256.NewInt(2)}},
		{Header: fixture.BlockHeader{Number: *uint256.NewInt(3)}},
	}
	injected := errors.New("injected")

	gomock.InOrder(
		state.EXPECT().ApplyBlockHeader(&blocks[0].Header),
		state.EXPECT().ApplyTransaction(gomock.Any()),
		state.EXPECT().ApplyBlockHeader(&blocks[1].Header).Return(injected),
	)

	err := ApplyBlocks(state, blocks)
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		t.Fatalf("expected an ApplyError, got %v", err)
	}
	if want, got := 1, applyErr.Block; want != got {
		t.Errorf("unexpected block index, wanted %d, got %d", want, got)
	}
	if want, got := "failed to apply header of block 1: injected", err.Error(); want != got {
		t.Errorf("unexpected message, wanted %q, got %q", want, got)
	}
}

func TestApplyBlocks_NoBlocksIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockState(ctrl)
	if err := ApplyBlocks(state, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyError_MessagesNameTheFailingStep(t *testing.T) {
	injected := errors.New("injected")
	tests := map[string]struct {
		err  *ApplyError
		want string
	}{
		"network":     {&ApplyError{Step: StepNetwork, Block: -1, Transaction: -1, Err: injected}, "failed to apply network: injected"},
		"accounts":    {&ApplyError{Step: StepAccounts, Block: -1, Transaction: -1, Err: injected}, "failed to apply accounts: injected"},
		"header":      {&ApplyError{Step: StepHeader, Block: 2, Transaction: -1, Err: injected}, "failed to apply header of block 2: injected"},
		"transaction": {&ApplyError{Step: StepTransaction, Block: 0, Transaction: 3, Err: injected}, "failed to apply transaction 3 of block 0: injected"},
		"single":      {&ApplyError{Step: StepTransaction, Block: -1, Transaction: 1, Err: injected}, "failed to apply transaction 1: injected"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, test.err.Error(); want != got {
				t.Errorf("unexpected message, wanted %q, got %q", want, got)
			}
		})
	}
}

func TestApplyNetworkTypeAndAccounts_WrapErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockState(ctrl)
	injected := errors.New("injected")

	state.EXPECT().ApplyNetworkType(fixture.London).Return(injected)
	state.EXPECT().ApplyAccounts(gomock.Any()).Return(injected)

	var applyErr *ApplyError
	if err := ApplyNetworkType(state, fixture.London); !errors.As(err, &applyErr) || applyErr.Step != StepNetwork {
		t.Errorf("expected network ApplyError, got %v", err)
	}
	if err := ApplyAccounts(state, fixture.Accounts{}); !errors.As(err, &applyErr) || applyErr.Step != StepAccounts {
		t.Errorf("expected accounts ApplyError, got %v", err)
	}
}

func TestClassifyValidation(t *testing.T) {
	address := fixture.Address{1}
	other := fixture.Address{2}
	tests := map[string]struct {
		err     error
		isNil   bool
		kind    ValidationKind
		address fixture.Address
	}{
		"match":          {err: nil, isNil: true},
		"skip":           {err: NewSkip(address), kind: Skip, address: address},
		"mismatch":       {err: NewMismatch(other, fixture.AccountState{}, fixture.AccountState{Code: []byte{1}}), kind: Mismatch, address: other},
		"wrapped skip":   {err: errors.Join(errors.New("context"), NewSkip(address)), kind: Skip, address: address},
		"plain error":    {err: errors.New("boom"), kind: Mismatch, address: address},
		"skip in string": {err: errors.New("please skip me"), kind: Mismatch, address: address},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := ClassifyValidation(address, test.err)
			if test.isNil {
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected a validation error, got nil")
			}
			if want, got := test.kind, got.Kind; want != got {
				t.Errorf("unexpected kind, wanted %v, got %v", want, got)
			}
			if want, got := test.address, got.Address; want != got {
				t.Errorf("unexpected address, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestIsSkippedCoinbase(t *testing.T) {
	coinbase := fixture.Address{0xc0}
	other := fixture.Address{0x01}
	tests := map[string]struct {
		address fixture.Address
		skip    bool
		want    bool
	}{
		"coinbase with skip":    {coinbase, true, true},
		"coinbase without skip": {coinbase, false, false},
		"other with skip":       {other, true, false},
		"other without skip":    {other, false, false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, IsSkippedCoinbase(test.address, coinbase, test.skip); want != got {
				t.Errorf("unexpected result, wanted %t, got %t", want, got)
			}
		})
	}
}

func TestCompareAccounts_EqualAccountsMatch(t *testing.T) {
	account := fixture.AccountState{
		Balance: *uint256.NewInt(10),
		Code:    []byte{1, 2},
		Storage: map[fixture.Hash]fixture.Hash{{1}: {2}},
	}
	actual := account
	actual.Storage = map[fixture.Hash]fixture.Hash{{1}: {2}, {3}: {}}
	if err := CompareAccounts(fixture.Address{}, account, actual); err != nil {
		t.Errorf("unexpected mismatch: %v", err)
	}
}

func TestCompareAccounts_DifferencesAreListed(t *testing.T) {
	expected := fixture.AccountState{
		Balance: *uint256.NewInt(10),
		Nonce:   *uint256.NewInt(1),
		Code:    []byte{1},
		Storage: map[fixture.Hash]fixture.Hash{{31: 1}: {31: 1}},
	}
	actual := fixture.AccountState{
		Balance: *uint256.NewInt(11),
		Nonce:   *uint256.NewInt(1),
		Code:    []byte{1},
		Storage: map[fixture.Hash]fixture.Hash{{31: 1}: {31: 2}},
	}

	err := CompareAccounts(fixture.Address{0xaa}, expected, actual)
	validation := ClassifyValidation(fixture.Address{}, err)
	if validation == nil || validation.Kind != Mismatch {
		t.Fatalf("expected a mismatch, got %v", err)
	}
	if want, got := (fixture.Address{0xaa}), validation.Address; want != got {
		t.Errorf("unexpected address, wanted %v, got %v", want, got)
	}
	if want, got := 2, len(validation.Diffs); want != got {
		t.Fatalf("unexpected number of diffs, wanted %d, got %d: %v", want, got, validation.Diffs)
	}
	if !strings.HasPrefix(validation.Diffs[0], "different balance: 10 != 11") {
		t.Errorf("unexpected balance diff: %v", validation.Diffs[0])
	}
	if !strings.HasPrefix(validation.Diffs[1], "storage/different value for key") {
		t.Errorf("unexpected storage diff: %v", validation.Diffs[1])
	}
	if validation.Expected == nil || validation.Actual == nil {
		t.Errorf("expected both account states to be recorded")
	}
	if !strings.Contains(err.Error(), "different balance") {
		t.Errorf("error message should contain the differences, got %v", err)
	}
}

func TestValidationError_SkipMessage(t *testing.T) {
	err := NewSkip(fixture.Address{19: 1})
	if want, got := "skipped account 0x0000000000000000000000000000000000000001", err.Error(); want != got {
		t.Errorf("unexpected message, wanted %q, got %q", want, got)
	}
}
