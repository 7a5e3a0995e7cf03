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
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

// Decode parses a fixture document. Either the full document is decoded or
// an error is returned; a failure in any test case invalidates all of them.
func Decode(data []byte) (Fixture, error) {
	var document map[string]testCaseJSON
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("invalid fixture document: %w", err)
	}
	res := make(Fixture, len(document))
	for name, raw := range document {
		testCase, err := raw.decode()
		if err != nil {
			return nil, annotate(err, name)
		}
		res[name] = testCase
	}
	return res, nil
}

// DecodeBytes decodes a 0x-prefixed hex string of arbitrary length.
func DecodeBytes(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, &DecodeError{Kind: ErrMissingPrefix, Input: s}
	}
	res, err := hexutil.Decode(s)
	if err != nil {
		return nil, &DecodeError{Kind: ErrInvalidHex, Input: s, Err: err}
	}
	return res, nil
}

// DecodeNumber decodes a decimal or 0x-prefixed hexadecimal number that
// must fit into 256 bits.
func DecodeNumber(s string) (uint256.Int, error) {
	var res uint256.Int
	if s == "" {
		return res, &DecodeError{Kind: ErrInvalidNumber, Input: s}
	}
	value, ok := math.ParseBig256(s)
	if !ok || value.Sign() < 0 {
		return res, &DecodeError{Kind: ErrInvalidNumber, Input: s}
	}
	res.SetFromBig(value) // < can not overflow, ParseBig256 checks the bit length
	return res, nil
}

// DecodeAddress decodes a 20-byte address given as hex string. The 0x
// prefix is optional.
func DecodeAddress(s string) (Address, error) {
	var res Address
	err := decodeFixed(res[:], s)
	return res, err
}

// DecodeHash decodes a 32-byte hash given as hex string. The 0x prefix is
// optional.
func DecodeHash(s string) (Hash, error) {
	var res Hash
	err := decodeFixed(res[:], s)
	return res, err
}

// DecodeStorageWord decodes a storage key or value. Fixtures use a short
// form for those, e.g. 0x01, which is left-padded with zeros to 32 bytes.
func DecodeStorageWord(s string) (Hash, error) {
	if !strings.HasPrefix(s, "0x") {
		return Hash{}, &DecodeError{Kind: ErrMissingPrefix, Input: s}
	}
	digits := s[2:]
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	if missing := 2*len(Hash{}) - len(digits); missing > 0 {
		digits = strings.Repeat("00", missing/2) + digits
	}
	res, err := DecodeHash(digits)
	if err != nil {
		err.(*DecodeError).Input = s
	}
	return res, err
}

func decodeFixed(trg []byte, s string) error {
	digits := strings.TrimPrefix(s, "0x")
	if want, got := 2*len(trg), len(digits); want != got {
		return &DecodeError{
			Kind:  ErrInvalidFixedBytes,
			Input: s,
			Err:   fmt.Errorf("wanted %d hex digits, got %d", want, got),
		}
	}
	data, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return &DecodeError{Kind: ErrInvalidFixedBytes, Input: s, Err: err}
	}
	copy(trg, data)
	return nil
}

// annotate adds the given path segment to decoding errors.
func annotate(err error, segment string) error {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		decodeErr.at(segment)
		return decodeErr
	}
	return fmt.Errorf("%s: %w", segment, err)
}

// --- JSON representation ---

type testCaseJSON struct {
	Pre       map[string]accountJSON `json:"pre"`
	Network   string                 `json:"network"`
	Genesis   headerJSON             `json:"genesisBlockHeader"`
	Blocks    []blockJSON            `json:"blocks"`
	PostState map[string]accountJSON `json:"postState"`
}

type accountJSON struct {
	Balance string            `json:"balance"`
	Code    string            `json:"code"`
	Nonce   string            `json:"nonce"`
	Storage map[string]string `json:"storage"`
}

type headerJSON struct {
	Coinbase   string `json:"coinbase"`
	Difficulty string `json:"difficulty"`
	GasLimit   string `json:"gasLimit"`
	Hash       string `json:"hash"`
	Number     string `json:"number"`
	Timestamp  string `json:"timestamp"`
	MixHash    string `json:"mixHash,omitempty"`
	BaseFee    string `json:"baseFeePerGas,omitempty"`
}

type blockJSON struct {
	Header       headerJSON        `json:"blockHeader"`
	Transactions []transactionJSON `json:"transactions"`
}

type transactionJSON struct {
	Data     string `json:"data"`
	GasLimit string `json:"gasLimit"`
	GasPrice string `json:"gasPrice"`
	Nonce    string `json:"nonce"`
	Sender   string `json:"sender"`
	To       string `json:"to"`
	Value    string `json:"value"`
	R        string `json:"r"`
	S        string `json:"s"`
	V        string `json:"v"`
}

func (t *testCaseJSON) decode() (res TestCase, err error) {
	if res.Pre, err = decodeAccounts(t.Pre); err != nil {
		return res, annotate(err, "pre")
	}
	if res.Network, err = ParseNetworkType(t.Network); err != nil {
		return res, annotate(err, "network")
	}
	if res.Genesis, err = t.Genesis.decode(); err != nil {
		return res, annotate(err, "genesisBlockHeader")
	}
	res.Blocks = make([]Block, 0, len(t.Blocks))
	for i, block := range t.Blocks {
		decoded, err := block.decode()
		if err != nil {
			return res, annotate(err, fmt.Sprintf("blocks[%d]", i))
		}
		res.Blocks = append(res.Blocks, decoded)
	}
	if res.PostState, err = decodeAccounts(t.PostState); err != nil {
		return res, annotate(err, "postState")
	}
	return res, nil
}

func decodeAccounts(accounts map[string]accountJSON) (Accounts, error) {
	// Keys are processed in sorted order such that different spellings of
	// the same address are resolved deterministically; the last one wins.
	keys := make([]string, 0, len(accounts))
	for key := range accounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	res := make(Accounts, len(accounts))
	for _, key := range keys {
		address, err := DecodeAddress(key)
		if err != nil {
			return nil, err
		}
		account := accounts[key]
		state, err := account.decode()
		if err != nil {
			return nil, annotate(err, key)
		}
		res[address] = state
	}
	return res, nil
}

func (a *accountJSON) decode() (res AccountState, err error) {
	if res.Balance, err = DecodeNumber(a.Balance); err != nil {
		return res, annotate(err, "balance")
	}
	if res.Code, err = DecodeBytes(a.Code); err != nil {
		return res, annotate(err, "code")
	}
	if res.Nonce, err = DecodeNumber(a.Nonce); err != nil {
		return res, annotate(err, "nonce")
	}
	res.Storage = make(map[Hash]Hash, len(a.Storage))
	for k, v := range a.Storage {
		key, err := DecodeStorageWord(k)
		if err != nil {
			return res, annotate(err, "storage")
		}
		value, err := DecodeStorageWord(v)
		if err != nil {
			return res, annotate(err, "storage/"+k)
		}
		res.Storage[key] = value
	}
	return res, nil
}

func (h *headerJSON) decode() (res BlockHeader, err error) {
	if res.Coinbase, err = DecodeAddress(h.Coinbase); err != nil {
		return res, annotate(err, "coinbase")
	}
	if res.Difficulty, err = DecodeNumber(h.Difficulty); err != nil {
		return res, annotate(err, "difficulty")
	}
	if res.GasLimit, err = DecodeNumber(h.GasLimit); err != nil {
		return res, annotate(err, "gasLimit")
	}
	if res.Hash, err = DecodeHash(h.Hash); err != nil {
		return res, annotate(err, "hash")
	}
	if res.Number, err = DecodeNumber(h.Number); err != nil {
		return res, annotate(err, "number")
	}
	if res.Timestamp, err = DecodeNumber(h.Timestamp); err != nil {
		return res, annotate(err, "timestamp")
	}
	if h.MixHash != "" {
		if res.MixHash, err = DecodeHash(h.MixHash); err != nil {
			return res, annotate(err, "mixHash")
		}
	}
	if h.BaseFee != "" {
		fee, err := DecodeNumber(h.BaseFee)
		if err != nil {
			return res, annotate(err, "baseFeePerGas")
		}
		res.BaseFee = &fee
	}
	return res, nil
}

func (b *blockJSON) decode() (res Block, err error) {
	if res.Header, err = b.Header.decode(); err != nil {
		return res, annotate(err, "blockHeader")
	}
	res.Transactions = make([]Transaction, 0, len(b.Transactions))
	for i, tx := range b.Transactions {
		decoded, err := tx.decode()
		if err != nil {
			return res, annotate(err, fmt.Sprintf("transactions[%d]", i))
		}
		res.Transactions = append(res.Transactions, decoded)
	}
	return res, nil
}

func (t *transactionJSON) decode() (res Transaction, err error) {
	if res.Data, err = DecodeBytes(t.Data); err != nil {
		return res, annotate(err, "data")
	}
	if res.GasLimit, err = DecodeNumber(t.GasLimit); err != nil {
		return res, annotate(err, "gasLimit")
	}
	if res.GasPrice, err = DecodeNumber(t.GasPrice); err != nil {
		return res, annotate(err, "gasPrice")
	}
	if res.Nonce, err = DecodeNumber(t.Nonce); err != nil {
		return res, annotate(err, "nonce")
	}
	if res.Sender, err = DecodeAddress(t.Sender); err != nil {
		return res, annotate(err, "sender")
	}
	if res.To, err = DecodeAddress(t.To); err != nil {
		return res, annotate(err, "to")
	}
	if res.Value, err = DecodeNumber(t.Value); err != nil {
		return res, annotate(err, "value")
	}
	if res.R, err = DecodeBytes(t.R); err != nil {
		return res, annotate(err, "r")
	}
	if res.S, err = DecodeBytes(t.S); err != nil {
		return res, annotate(err, "s")
	}
	if res.V, err = DecodeBytes(t.V); err != nil {
		return res, annotate(err, "v")
	}
	return res, nil
}
