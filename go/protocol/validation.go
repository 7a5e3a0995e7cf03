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
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Fantom-foundation/evm-compat/go/fixture"
)

// ValidationKind distinguishes the outcomes of a failed account validation.
type ValidationKind int

const (
	// Skip marks an account that was deliberately not compared.
	Skip ValidationKind = iota
	// Mismatch marks an account whose state differs from the expectation.
	Mismatch
)

func (k ValidationKind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Mismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("ValidationKind(%d)", int(k))
	}
}

// ValidationError is the result of ValidateAccount for accounts that are
// not matching. Expected and Actual are optional; if both are present, the
// reporter can render a detailed diff.
type ValidationError struct {
	Kind     ValidationKind
	Address  fixture.Address
	Diffs    []string
	Expected *fixture.AccountState
	Actual   *fixture.AccountState
	Cause    error
}

func (e *ValidationError) Error() string {
	if e.Kind == Skip {
		return fmt.Sprintf("skipped account %v", e.Address)
	}
	var details []string
	details = append(details, e.Diffs...)
	if e.Cause != nil {
		details = append(details, e.Cause.Error())
	}
	if len(details) == 0 {
		return fmt.Sprintf("account %v does not match", e.Address)
	}
	return fmt.Sprintf("account %v does not match: %s", e.Address, strings.Join(details, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewSkip creates an error signaling that the given account was skipped.
func NewSkip(address fixture.Address) error {
	return &ValidationError{Kind: Skip, Address: address}
}

// NewMismatch creates an error signaling that the given account differs
// from its expected state. The differences are computed field by field.
func NewMismatch(address fixture.Address, expected, actual fixture.AccountState) error {
	return &ValidationError{
		Kind:     Mismatch,
		Address:  address,
		Diffs:    DiffAccounts(&expected, &actual),
		Expected: &expected,
		Actual:   &actual,
	}
}

// ClassifyValidation maps the result of a ValidateAccount call onto a
// validation outcome. Nil means the account matched. Errors that are not a
// ValidationError are treated as mismatches of the given address.
func ClassifyValidation(address fixture.Address, err error) *ValidationError {
	if err == nil {
		return nil
	}
	var res *ValidationError
	if errors.As(err, &res) {
		return res
	}
	return &ValidationError{Kind: Mismatch, Address: address, Cause: err}
}

// IsSkippedCoinbase reports whether the given address is to be excluded
// from the validation because it is the coinbase and skipping was requested.
func IsSkippedCoinbase(address, coinbase fixture.Address, skipCoinbase bool) bool {
	return skipCoinbase && address == coinbase
}

// CompareAccounts is a validation helper for engines. It returns a
// Mismatch error listing the differences between the expected and actual
// account states, or nil if they are equal.
func CompareAccounts(address fixture.Address, expected, actual fixture.AccountState) error {
	if expected.Equal(&actual) {
		return nil
	}
	return NewMismatch(address, expected, actual)
}

// DiffAccounts lists the differences between two account states in a
// deterministic order. Zero-valued storage slots are treated as absent.
func DiffAccounts(expected, actual *fixture.AccountState) []string {
	var res []string
	if expected.Balance != actual.Balance {
		res = append(res, fmt.Sprintf("different balance: %v != %v", expected.Balance.Dec(), actual.Balance.Dec()))
	}
	if expected.Nonce != actual.Nonce {
		res = append(res, fmt.Sprintf("different nonce: %v != %v", expected.Nonce.Dec(), actual.Nonce.Dec()))
	}
	if !bytes.Equal(expected.Code, actual.Code) {
		res = append(res, fmt.Sprintf("different code: 0x%x != 0x%x", expected.Code, actual.Code))
	}
	return append(res, diffStorage(expected.Storage, actual.Storage)...)
}

func diffStorage(a, b map[fixture.Hash]fixture.Hash) []string {
	var diffs []string
	diff := func(key, x, y fixture.Hash) {
		if x != y {
			diffs = append(diffs, fmt.Sprintf("different value for key %v: %v != %v", key, x, y))
		}
	}
	for k, v := range a {
		diff(k, v, b[k])
	}
	for k, v := range b {
		if _, overlap := a[k]; !overlap {
			diff(k, a[k], v)
		}
	}
	sort.Strings(diffs)
	for i, d := range diffs {
		diffs[i] = "storage/" + d
	}
	return diffs
}
