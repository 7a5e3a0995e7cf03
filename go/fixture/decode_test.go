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
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"pgregory.net/rand"
)

func TestDecodeBytes_RoundTripForRandomInputs(t *testing.T) {
	rnd := rand.New(0)
	for i := 0; i < 1000; i++ {
		data := make([]byte, rnd.Intn(100))
		_, _ = rnd.Read(data) // never returns an error
		got, err := DecodeBytes("0x" + hex.EncodeToString(data))
		if err != nil {
			t.Fatalf("failed to decode %x: %v", data, err)
		}
		if !bytes.Equal(data, got) {
			t.Errorf("unexpected result, wanted %x, got %x", data, got)
		}
	}
}

func TestDecodeBytes_InvalidInputsAreDetected(t *testing.T) {
	tests := map[string]struct {
		input string
		kind  error
	}{
		"empty":            {"", ErrMissingPrefix},
		"no prefix":        {"0102", ErrMissingPrefix},
		"uppercase prefix": {"0X01", ErrMissingPrefix},
		"odd length":       {"0x012", ErrInvalidHex},
		"non-hex digit":    {"0x0g", ErrInvalidHex},
		"embedded spacing": {"0x01 02", ErrInvalidHex},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBytes(test.input)
			if !errors.Is(err, test.kind) {
				t.Errorf("unexpected error, wanted %v, got %v", test.kind, err)
			}
		})
	}
}

func TestDecodeBytes_EmptyPayloadIsAccepted(t *testing.T) {
	got, err := DecodeBytes("0x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %x", got)
	}
}

func TestDecodeNumber_AcceptsDecimalAndHex(t *testing.T) {
	tests := map[string]struct {
		input string
		want  *uint256.Int
	}{
		"zero":              {"0", uint256.NewInt(0)},
		"decimal":           {"1000", uint256.NewInt(1000)},
		"hex":               {"0x03e8", uint256.NewInt(1000)},
		"hex with zeros":    {"0x00", uint256.NewInt(0)},
		"hex upper case":    {"0xFF", uint256.NewInt(255)},
		"max 256 bit value": {"0x" + strings.Repeat("ff", 32), new(uint256.Int).SetAllOne()},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeNumber(test.input)
			if err != nil {
				t.Fatalf("failed to decode %q: %v", test.input, err)
			}
			if want := *test.want; want != got {
				t.Errorf("unexpected result, wanted %v, got %v", want.Dec(), got.Dec())
			}
		})
	}
}

func TestDecodeNumber_InvalidInputsAreDetected(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"hex prefix":     "0x",
		"not a number":   "twelve",
		"negative":       "-1",
		"fraction":       "1.5",
		"too large":      "0x1" + strings.Repeat("00", 32),
		"invalid digits": "0x12zz",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeNumber(input)
			if !errors.Is(err, ErrInvalidNumber) {
				t.Errorf("expected %v, got %v", ErrInvalidNumber, err)
			}
		})
	}
}

func TestDecodeAddress_PrefixIsOptional(t *testing.T) {
	want := Address{0: 0xa9, 19: 0x0b}
	for _, input := range []string{
		"0xa90000000000000000000000000000000000000b",
		"a90000000000000000000000000000000000000b",
	} {
		got, err := DecodeAddress(input)
		if err != nil {
			t.Fatalf("failed to decode %q: %v", input, err)
		}
		if want != got {
			t.Errorf("unexpected result, wanted %v, got %v", want, got)
		}
	}
}

func TestDecodeHash_DecodedBytesAreReturned(t *testing.T) {
	input := "0x" + strings.Repeat("00", 30) + "12ab"
	want := Hash{30: 0x12, 31: 0xab}
	got, err := DecodeHash(input)
	if err != nil {
		t.Fatalf("failed to decode %q: %v", input, err)
	}
	if want != got {
		t.Errorf("unexpected result, wanted %v, got %v", want, got)
	}
}

func TestDecodeFixedBytes_InvalidInputsAreDetected(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"too short":      "0x00000000000000000000000000000000000000",
		"too long":       "0x000000000000000000000000000000000000000000",
		"invalid digits": "0x0g00000000000000000000000000000000000000",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeAddress(input); !errors.Is(err, ErrInvalidFixedBytes) {
				t.Errorf("expected %v, got %v", ErrInvalidFixedBytes, err)
			}
		})
	}

	if _, err := DecodeHash("0x1234"); !errors.Is(err, ErrInvalidFixedBytes) {
		t.Errorf("expected %v, got %v", ErrInvalidFixedBytes, err)
	}
}

func TestDecodeStorageWord_ShortInputsArePadded(t *testing.T) {
	tests := map[string]struct {
		input string
		want  Hash
	}{
		"single digit":    {"0x1", Hash{31: 1}},
		"single byte":     {"0x01", Hash{31: 1}},
		"two bytes":       {"0x0102", Hash{30: 1, 31: 2}},
		"odd digit count": {"0x102", Hash{30: 1, 31: 2}},
		"empty":           {"0x", Hash{}},
		"full width":      {"0x" + strings.Repeat("ab", 32), bytes32(0xab)},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeStorageWord(test.input)
			if err != nil {
				t.Fatalf("failed to decode %q: %v", test.input, err)
			}
			if want := test.want; want != got {
				t.Errorf("unexpected result, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestDecodeStorageWord_InvalidInputsAreDetected(t *testing.T) {
	tests := map[string]struct {
		input string
		kind  error
	}{
		"no prefix":      {"01", ErrMissingPrefix},
		"too long":       {"0x01" + strings.Repeat("00", 32), ErrInvalidFixedBytes},
		"invalid digits": {"0xzz", ErrInvalidFixedBytes},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeStorageWord(test.input)
			if !errors.Is(err, test.kind) {
				t.Errorf("unexpected error, wanted %v, got %v", test.kind, err)
			}
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) && decodeErr.Input != test.input {
				t.Errorf("unexpected input in error, wanted %q, got %q", test.input, decodeErr.Input)
			}
		})
	}
}

func TestDecode_SampleDocument(t *testing.T) {
	data, err := os.ReadFile("testdata/add.json")
	if err != nil {
		t.Fatalf("failed to read test data: %v", err)
	}
	fixture, err := Decode(data)
	if err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}

	if want, got := []string{"add_d0g0v0_Berlin"}, fixture.Names(); len(got) != 1 || want[0] != got[0] {
		t.Fatalf("unexpected test names, wanted %v, got %v", want, got)
	}
	test := fixture["add_d0g0v0_Berlin"]

	if want, got := Berlin, test.Network; want != got {
		t.Errorf("unexpected network, wanted %v, got %v", want, got)
	}
	if want, got := 2, len(test.Pre); want != got {
		t.Errorf("unexpected number of pre-state accounts, wanted %d, got %d", want, got)
	}

	sender, _ := DecodeAddress("0xa94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	receiver, _ := DecodeAddress("0x095e7baea6a6c7c4c2dfeb977efac326af552d87")
	coinbase, _ := DecodeAddress("0x2adc25665018aa1fe0e6bc666dac8fc2697ff9ba")

	if want, got := *uint256.NewInt(1e18), test.Pre[sender].Balance; want != got {
		t.Errorf("unexpected sender balance, wanted %v, got %v", want.Dec(), got.Dec())
	}
	if want, got := []byte{0x60, 0x01, 0x60, 0x01, 0x55, 0x00}, test.Pre[receiver].Code; !bytes.Equal(want, got) {
		t.Errorf("unexpected code, wanted %x, got %x", want, got)
	}
	if want, got := (Hash{31: 2}), test.Pre[receiver].Storage[Hash{31: 1}]; want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}
	if want, got := coinbase, test.Coinbase(); want != got {
		t.Errorf("unexpected coinbase, wanted %v, got %v", want, got)
	}

	if want, got := 1, len(test.Blocks); want != got {
		t.Fatalf("unexpected number of blocks, wanted %d, got %d", want, got)
	}
	block := test.Blocks[0]
	if want, got := *uint256.NewInt(1), block.Header.Number; want != got {
		t.Errorf("unexpected block number, wanted %v, got %v", want.Dec(), got.Dec())
	}
	if want, got := 1, len(block.Transactions); want != got {
		t.Fatalf("unexpected number of transactions, wanted %d, got %d", want, got)
	}
	tx := block.Transactions[0]
	if want, got := sender, tx.Sender; want != got {
		t.Errorf("unexpected sender, wanted %v, got %v", want, got)
	}
	if want, got := receiver, tx.To; want != got {
		t.Errorf("unexpected recipient, wanted %v, got %v", want, got)
	}
	if want, got := *uint256.NewInt(10), tx.GasPrice; want != got {
		t.Errorf("unexpected gas price, wanted %v, got %v", want.Dec(), got.Dec())
	}
	if want, got := 32, len(tx.R); want != got {
		t.Errorf("unexpected length of r, wanted %d, got %d", want, got)
	}
	if want, got := []byte{0x1b}, tx.V; !bytes.Equal(want, got) {
		t.Errorf("unexpected v, wanted %x, got %x", want, got)
	}

	if want, got := 1, len(test.PostState); want != got {
		t.Errorf("unexpected number of post-state accounts, wanted %d, got %d", want, got)
	}
}

func TestDecode_EmptyCase(t *testing.T) {
	fixture, err := Decode([]byte(emptyCaseDocument))
	if err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	test, found := fixture["empty"]
	if !found {
		t.Fatalf("missing test case")
	}
	if len(test.Pre) != 0 || len(test.Blocks) != 0 || len(test.PostState) != 0 {
		t.Errorf("expected empty test case, got %v", test)
	}
	if want, got := Merge, test.Network; want != got {
		t.Errorf("unexpected network, wanted %v, got %v", want, got)
	}
}

func TestDecode_ErrorsAreReportedWithFieldPath(t *testing.T) {
	document := strings.Replace(emptyCaseDocument, `"pre": {}`,
		`"pre": {"0x0000000000000000000000000000000000000001": {"balance": "x", "code": "0x", "nonce": "0", "storage": {}}}`, 1)

	_, err := Decode([]byte(document))
	if !errors.Is(err, ErrInvalidNumber) {
		t.Fatalf("expected %v, got %v", ErrInvalidNumber, err)
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected a DecodeError, got %T", err)
	}
	if want, got := "empty/pre/0x0000000000000000000000000000000000000001/balance", decodeErr.Field; want != got {
		t.Errorf("unexpected field path, wanted %q, got %q", want, got)
	}
}

func TestDecode_UnknownNetworkIsRejected(t *testing.T) {
	document := strings.Replace(emptyCaseDocument, `"Merge"`, `"Homestead"`, 1)
	_, err := Decode([]byte(document))
	if !errors.Is(err, ErrUnknownNetwork) {
		t.Fatalf("expected %v, got %v", ErrUnknownNetwork, err)
	}
	if !strings.Contains(err.Error(), "Homestead") {
		t.Errorf("error should name the network, got %v", err)
	}
}

func TestDecode_InvalidJsonIsRejected(t *testing.T) {
	if _, err := Decode([]byte("{")); err == nil {
		t.Errorf("expected decoding to fail")
	}
}

func TestDecode_DuplicateAddressesAreResolvedLastWins(t *testing.T) {
	document := strings.Replace(emptyCaseDocument, `"postState": {}`, `"postState": {
		"0x00000000000000000000000000000000000000AB": {"balance": "1", "code": "0x", "nonce": "0", "storage": {}},
		"0x00000000000000000000000000000000000000ab": {"balance": "2", "code": "0x", "nonce": "0", "storage": {}}
	}`, 1)
	fixture, err := Decode([]byte(document))
	if err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	post := fixture["empty"].PostState
	if want, got := 1, len(post); want != got {
		t.Fatalf("unexpected number of accounts, wanted %d, got %d", want, got)
	}
	// keys are processed in sorted order, the lower-case spelling comes last
	if want, got := *uint256.NewInt(2), post[Address{19: 0xab}].Balance; want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want.Dec(), got.Dec())
	}
}

func TestDecode_OptionalHeaderFields(t *testing.T) {
	document := strings.Replace(emptyCaseDocument, `"timestamp": "0"`,
		`"timestamp": "0", "mixHash": "0x`+strings.Repeat("02", 32)+`", "baseFeePerGas": "0x0a"`, 1)
	fixture, err := Decode([]byte(document))
	if err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	genesis := fixture["empty"].Genesis
	if want, got := bytes32(0x02), genesis.MixHash; want != got {
		t.Errorf("unexpected mix hash, wanted %v, got %v", want, got)
	}
	if genesis.BaseFee == nil || genesis.BaseFee.Uint64() != 10 {
		t.Errorf("unexpected base fee, got %v", genesis.BaseFee)
	}
}

func TestNetworkType_ParsesExactlyTheKnownLiterals(t *testing.T) {
	for _, network := range NetworkTypes {
		got, err := ParseNetworkType(network.String())
		if err != nil {
			t.Fatalf("failed to parse %v: %v", network, err)
		}
		if want := network; want != got {
			t.Errorf("unexpected network, wanted %v, got %v", want, got)
		}
	}

	for _, name := range []string{"", "Homestead", "istanbul", "BERLIN", "London ", "Paris"} {
		if _, err := ParseNetworkType(name); !errors.Is(err, ErrUnknownNetwork) {
			t.Errorf("expected %v for %q, got %v", ErrUnknownNetwork, name, err)
		}
	}
}

func TestAccountState_MarshalJSON(t *testing.T) {
	account := AccountState{
		Balance: *uint256.NewInt(12),
		Code:    []byte{0x60, 0x00},
		Nonce:   *uint256.NewInt(1),
		Storage: map[Hash]Hash{{31: 1}: {31: 2}},
	}
	data, err := account.MarshalJSON()
	if err != nil {
		t.Fatalf("failed to encode account: %v", err)
	}
	want := `{"balance":"12","code":"0x6000","nonce":"1","storage":{"0x` +
		strings.Repeat("00", 31) + `01":"0x` + strings.Repeat("00", 31) + `02"}}`
	if got := string(data); want != got {
		t.Errorf("unexpected encoding, wanted %s, got %s", want, got)
	}

	restored, err := (&accountJSON{Balance: "12", Code: "0x6000", Nonce: "1", Storage: map[string]string{"0x1": "0x2"}}).decode()
	if err != nil {
		t.Fatalf("failed to decode account: %v", err)
	}
	if !account.Equal(&restored) {
		t.Errorf("decoded account %v differs from %v", restored, account)
	}
}

func TestAccountState_EqualIgnoresZeroStorage(t *testing.T) {
	a := AccountState{Storage: map[Hash]Hash{{1}: {}}}
	b := AccountState{}
	if !a.Equal(&b) || !b.Equal(&a) {
		t.Errorf("zero-valued storage slots should be ignored")
	}
	c := AccountState{Storage: map[Hash]Hash{{1}: {2}}}
	if a.Equal(&c) || c.Equal(&b) {
		t.Errorf("differing storage should be detected")
	}
	d := AccountState{Code: []byte{1}}
	if d.Equal(&b) {
		t.Errorf("differing code should be detected")
	}
}

func TestAddress_TextEncodingRoundTrip(t *testing.T) {
	address := Address{1, 2, 3, 19: 0xff}
	text, err := address.MarshalText()
	if err != nil {
		t.Fatalf("failed to encode address: %v", err)
	}
	var restored Address
	if err := restored.UnmarshalText(text); err != nil {
		t.Fatalf("failed to decode address: %v", err)
	}
	if address != restored {
		t.Errorf("unexpected restored value, wanted %v, got %v", address, restored)
	}
	if err := restored.UnmarshalText([]byte("0x01")); err == nil {
		t.Errorf("expected decoding of short address to fail")
	}
}

func bytes32(b byte) (res Hash) {
	for i := range res {
		res[i] = b
	}
	return
}

const emptyCaseDocument = `{
	"empty": {
		"pre": {},
		"network": "Merge",
		"genesisBlockHeader": {
			"coinbase": "0x0000000000000000000000000000000000000c0b",
			"difficulty": "0",
			"gasLimit": "0x05f5e100",
			"hash": "0x0000000000000000000000000000000000000000000000000000000000000000",
			"number": "0",
			"timestamp": "0"
		},
		"blocks": [],
		"postState": {}
	}
}`
