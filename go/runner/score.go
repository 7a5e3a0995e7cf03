// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package runner

import (
	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/Fantom-foundation/evm-compat/go/protocol"
)

// TestNum counts the validated accounts of a test case, a fixture, or a
// whole run.
type TestNum struct {
	Total   int
	Failed  int
	Skipped int
}

// Success is the number of accounts that were compared and matched.
func (n TestNum) Success() int {
	return n.Total - n.Failed - n.Skipped
}

// Add returns the element-wise sum of both counters.
func (n TestNum) Add(other TestNum) TestNum {
	return TestNum{
		Total:   n.Total + other.Total,
		Failed:  n.Failed + other.Failed,
		Skipped: n.Skipped + other.Skipped,
	}
}

// Score validates every expected account against the given state, in
// ascending address order. Every mismatch is recorded; if failFast is set,
// scoring stops at the first one.
func Score(
	state protocol.State,
	expected fixture.Accounts,
	coinbase fixture.Address,
	skipCoinbase bool,
	failFast bool,
) (TestNum, []*protocol.ValidationError) {
	var num TestNum
	var mismatches []*protocol.ValidationError
	for _, address := range expected.Addresses() {
		num.Total++
		err := state.ValidateAccount(address, coinbase, skipCoinbase, expected[address])
		result := protocol.ClassifyValidation(address, err)
		if result == nil {
			continue
		}
		if result.Kind == protocol.Skip {
			num.Skipped++
			continue
		}
		num.Failed++
		mismatches = append(mismatches, result)
		if failFast {
			break
		}
	}
	return num, mismatches
}
