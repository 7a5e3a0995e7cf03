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
	"fmt"
)

// NetworkType identifies the fork a test case is to be executed on.
type NetworkType int

const (
	Istanbul NetworkType = iota
	Berlin
	London
	Merge
)

// NetworkTypes lists all supported network types in fork order.
var NetworkTypes = []NetworkType{Istanbul, Berlin, London, Merge}

func (n NetworkType) String() string {
	switch n {
	case Istanbul:
		return "Istanbul"
	case Berlin:
		return "Berlin"
	case London:
		return "London"
	case Merge:
		return "Merge"
	default:
		return fmt.Sprintf("NetworkType(%d)", n)
	}
}

// ParseNetworkType converts the literal used in fixture documents into a
// network type. The match is case-sensitive.
func ParseNetworkType(name string) (NetworkType, error) {
	for _, network := range NetworkTypes {
		if network.String() == name {
			return network, nil
		}
	}
	return 0, &DecodeError{Kind: ErrUnknownNetwork, Input: name}
}

func (n NetworkType) MarshalJSON() ([]byte, error) {
	if n < Istanbul || n > Merge {
		return nil, fmt.Errorf("invalid network type: %d", int(n))
	}
	return json.Marshal(n.String())
}

func (n *NetworkType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	network, err := ParseNetworkType(s)
	if err != nil {
		return err
	}
	*n = network
	return nil
}
