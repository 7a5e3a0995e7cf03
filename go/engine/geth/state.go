// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package geth provides an engine backed by the go-ethereum state
// transition. It serves as a reference for the harness: fixtures that are
// valid for a network should pass on this engine.
package geth

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/Fantom-foundation/evm-compat/go/protocol"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

func init() {
	protocol.MustRegisterEngine("geth", NewState)
}

// State runs test cases on an in-memory go-ethereum StateDB.
type State struct {
	db          *state.StateDB
	chainConfig *params.ChainConfig
	header      *vm.BlockContext
	gasPool     *core.GasPool
	hashes      map[uint64]common.Hash
	txIndex     int

	// touched lists all storage slots ever written, per account, such that
	// the full storage can be reconstructed for validation.
	touched map[common.Address]map[common.Hash]struct{}
}

// NewState creates an empty state. It panics if the in-memory database can
// not be created, which only happens on invalid roots.
func NewState() protocol.State {
	res, err := newState()
	if err != nil {
		panic(fmt.Sprintf("failed to create geth state: %v", err))
	}
	return res
}

func newState() (*State, error) {
	db, err := state.New(types.EmptyRootHash, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
	if err != nil {
		return nil, err
	}
	res := &State{
		db:      db,
		hashes:  map[uint64]common.Hash{},
		touched: map[common.Address]map[common.Hash]struct{}{},
	}
	db.SetLogger(&tracing.Hooks{
		OnStorageChange: func(address common.Address, slot common.Hash, _, _ common.Hash) {
			res.touch(address, slot)
		},
	})
	return res, nil
}

func (s *State) touch(address common.Address, slot common.Hash) {
	slots, found := s.touched[address]
	if !found {
		slots = map[common.Hash]struct{}{}
		s.touched[address] = slots
	}
	slots[slot] = struct{}{}
}

func (s *State) ApplyNetworkType(network fixture.NetworkType) error {
	config, err := makeChainConfig(network)
	if err != nil {
		return err
	}
	s.chainConfig = config
	return nil
}

func (s *State) ApplyAccounts(accounts fixture.Accounts) error {
	for address, account := range accounts {
		addr := common.Address(address)
		nonce, err := toUint64(&account.Nonce, "nonce")
		if err != nil {
			return fmt.Errorf("account %v: %w", address, err)
		}
		balance := account.Balance
		s.db.SetBalance(addr, &balance, tracing.BalanceChangeUnspecified)
		s.db.SetNonce(addr, nonce)
		s.db.SetCode(addr, account.Code)
		for key, value := range account.Storage {
			s.db.SetState(addr, common.Hash(key), common.Hash(value))
		}
	}
	s.db.Finalise(false)
	return nil
}

func (s *State) ApplyBlockHeader(header *fixture.BlockHeader) error {
	if s.chainConfig == nil {
		return fmt.Errorf("no network type applied")
	}
	number, err := toUint64(&header.Number, "block number")
	if err != nil {
		return err
	}
	gasLimit, err := toUint64(&header.GasLimit, "gas limit")
	if err != nil {
		return err
	}
	timestamp, err := toUint64(&header.Timestamp, "timestamp")
	if err != nil {
		return err
	}

	context := vm.BlockContext{
		CanTransfer: core.CanTransfer,
		Transfer:    core.Transfer,
		GetHash:     s.getHash,
		Coinbase:    common.Address(header.Coinbase),
		GasLimit:    gasLimit,
		BlockNumber: new(big.Int).SetUint64(number),
		Time:        timestamp,
		Difficulty:  header.Difficulty.ToBig(),
	}
	if s.chainConfig.IsLondon(context.BlockNumber) {
		context.BaseFee = new(big.Int)
		if header.BaseFee != nil {
			context.BaseFee = header.BaseFee.ToBig()
		}
	}
	if s.chainConfig.TerminalTotalDifficulty != nil {
		random := common.Hash(header.MixHash)
		context.Random = &random
	}

	s.header = &context
	s.gasPool = new(core.GasPool).AddGas(gasLimit)
	s.hashes[number] = common.Hash(header.Hash)
	return nil
}

func (s *State) getHash(number uint64) common.Hash {
	return s.hashes[number]
}

func (s *State) ApplyTransaction(transaction fixture.Transaction) error {
	if s.header == nil {
		return fmt.Errorf("no block header applied")
	}
	nonce, err := toUint64(&transaction.Nonce, "nonce")
	if err != nil {
		return err
	}
	gasLimit, err := toUint64(&transaction.GasLimit, "gas limit")
	if err != nil {
		return err
	}

	to := common.Address(transaction.To)
	gasPrice := transaction.GasPrice.ToBig()
	msg := &core.Message{
		From:      common.Address(transaction.Sender),
		To:        &to,
		Nonce:     nonce,
		Value:     transaction.Value.ToBig(),
		GasLimit:  gasLimit,
		GasPrice:  gasPrice,
		GasFeeCap: gasPrice,
		GasTipCap: gasPrice,
		Data:      transaction.Data,
	}

	s.db.SetTxContext(common.BigToHash(big.NewInt(int64(s.txIndex))), s.txIndex)
	s.txIndex++

	evm := vm.NewEVM(*s.header, core.NewEVMTxContext(msg), s.db, s.chainConfig, vm.Config{})
	snapshot := s.db.Snapshot()
	result, err := core.ApplyMessage(evm, msg, s.gasPool)
	if err != nil {
		s.db.RevertToSnapshot(snapshot)
		return err
	}
	if result.Failed() {
		logrus.WithFields(logrus.Fields{
			"sender":   msg.From,
			"nonce":    nonce,
			"gas used": result.UsedGas,
		}).Debugf("transaction execution failed: %v", result.Err)
	}
	s.db.Finalise(true)
	return nil
}

func (s *State) ValidateAccount(address, coinbase fixture.Address, skipCoinbase bool, expected fixture.AccountState) error {
	if protocol.IsSkippedCoinbase(address, coinbase, skipCoinbase) {
		return protocol.NewSkip(address)
	}
	return protocol.CompareAccounts(address, expected, s.account(address, &expected))
}

// account reads the current state of the given account. Storage slots are
// read for all keys ever written or expected; zero values are omitted.
func (s *State) account(address fixture.Address, expected *fixture.AccountState) fixture.AccountState {
	addr := common.Address(address)
	res := fixture.AccountState{
		Balance: *s.db.GetBalance(addr),
		Code:    s.db.GetCode(addr),
		Storage: map[fixture.Hash]fixture.Hash{},
	}
	res.Nonce.SetUint64(s.db.GetNonce(addr))

	read := func(key common.Hash) {
		if value := s.db.GetState(addr, key); value != (common.Hash{}) {
			res.Storage[fixture.Hash(key)] = fixture.Hash(value)
		}
	}
	for key := range s.touched[addr] {
		read(key)
	}
	for key := range expected.Storage {
		read(common.Hash(key))
	}
	return res
}

func toUint64(value *uint256.Int, field string) (uint64, error) {
	if !value.IsUint64() {
		return 0, fmt.Errorf("%s exceeds 64 bit: %v", field, value.Dec())
	}
	return value.Uint64(), nil
}

// makeChainConfig enables all forks up to the given network type from the
// genesis block on.
func makeChainConfig(network fixture.NetworkType) (*params.ChainConfig, error) {
	if network < fixture.Istanbul || network > fixture.Merge {
		return nil, fmt.Errorf("unsupported network type: %v", network)
	}
	zero := big.NewInt(0)
	res := &params.ChainConfig{
		ChainID:             big.NewInt(1),
		HomesteadBlock:      zero,
		EIP150Block:         zero,
		EIP155Block:         zero,
		EIP158Block:         zero,
		ByzantiumBlock:      zero,
		ConstantinopleBlock: zero,
		PetersburgBlock:     zero,
		IstanbulBlock:       zero,
		MuirGlacierBlock:    zero,
		Ethash:              new(params.EthashConfig),
	}
	if network >= fixture.Berlin {
		res.BerlinBlock = zero
	}
	if network >= fixture.London {
		res.LondonBlock = zero
		res.ArrowGlacierBlock = zero
		res.GrayGlacierBlock = zero
	}
	if network >= fixture.Merge {
		res.MergeNetsplitBlock = zero
		res.TerminalTotalDifficulty = zero
	}
	return res, nil
}
