// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fixture

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/holiman/uint256"
)

// Address represents the 160-bit (20 bytes) address of an account.
type Address [20]byte

// Hash represents a 256-bit (32 bytes) value. It is used for block hashes
// as well as for storage keys and storage values, which are always stored
// in their full 32-byte width.
type Hash [32]byte

// AccountState is the state of a single account as described by a fixture,
// either as part of the pre-state or as an expectation of the post-state.
type AccountState struct {
	Balance uint256.Int
	Code    []byte
	Nonce   uint256.Int
	Storage map[Hash]Hash
}

// Accounts maps addresses to account states. The iteration order carries no
// meaning, accounts are independent of each other.
type Accounts map[Address]AccountState

// BlockHeader summarizes the block context a block's transactions are
// executed in.
type BlockHeader struct {
	Coinbase   Address
	Difficulty uint256.Int
	GasLimit   uint256.Int
	Hash       Hash
	Number     uint256.Int
	Timestamp  uint256.Int

	// Optional fields, zero/nil if the fixture does not provide them.
	MixHash Hash
	BaseFee *uint256.Int
}

// Transaction is a call transaction included in a block. The signature
// parts are kept as provided; their length is not guaranteed to be 32 bytes.
type Transaction struct {
	Data     []byte
	GasLimit uint256.Int
	GasPrice uint256.Int
	Nonce    uint256.Int
	Sender   Address
	To       Address
	Value    uint256.Int
	R        []byte
	S        []byte
	V        []byte
}

// Block is a header followed by the transactions to be executed in the
// listed order.
type Block struct {
	Header       BlockHeader
	Transactions []Transaction
}

// TestCase is a single blockchain test: a pre-state, the fork to run on, a
// list of blocks, and the expected post-state.
type TestCase struct {
	Pre       Accounts
	Network   NetworkType
	Genesis   BlockHeader
	Blocks    []Block
	PostState Accounts
}

// Fixture is the content of one fixture document, mapping test names to
// test cases.
type Fixture map[string]TestCase

// Names returns the names of all test cases in lexicographical order.
func (f Fixture) Names() []string {
	res := make([]string, 0, len(f))
	for name := range f {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Coinbase returns the coinbase of the genesis block, which is the address
// excluded from post-state comparisons on request.
func (c *TestCase) Coinbase() Address {
	return c.Genesis.Coinbase
}

// Addresses returns the addresses of the given accounts in ascending order.
func (a Accounts) Addresses() []Address {
	res := make([]Address, 0, len(a))
	for address := range a {
		res = append(res, address)
	}
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i][:], res[j][:]) < 0
	})
	return res
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return bytesToText(a[:])
}

func (a *Address) UnmarshalText(data []byte) error {
	return textToBytes(a[:], data)
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return bytesToText(h[:])
}

func (h *Hash) UnmarshalText(data []byte) error {
	return textToBytes(h[:], data)
}

// Equal reports whether both account states describe the same balance,
// nonce, code and storage. A storage slot holding zero is equivalent to a
// missing slot.
func (a *AccountState) Equal(other *AccountState) bool {
	return a.Balance == other.Balance &&
		a.Nonce == other.Nonce &&
		bytes.Equal(a.Code, other.Code) &&
		equalStorage(a.Storage, other.Storage)
}

func equalStorage(a, b map[Hash]Hash) bool {
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	for k, v := range b {
		if a[k] != v {
			return false
		}
	}
	return true
}

// MarshalJSON renders the account in the format used by fixture documents.
func (a AccountState) MarshalJSON() ([]byte, error) {
	storage := make(map[string]string, len(a.Storage))
	for key, value := range a.Storage {
		storage[key.String()] = value.String()
	}
	return json.Marshal(accountJSON{
		Balance: a.Balance.Dec(),
		Code:    fmt.Sprintf("0x%x", a.Code),
		Nonce:   a.Nonce.Dec(),
		Storage: storage,
	})
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

func textToBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	data, err := hex.DecodeString(s[2:])
	if err != nil {
		return err
	}
	if want, got := len(trg), len(data); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(trg[:], data)
	return nil
}
