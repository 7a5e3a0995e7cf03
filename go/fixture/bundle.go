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

// BundleEntry names a single fixture document of a bundle.
type BundleEntry struct {
	Name string // short name used in reports
	File string // path of the document relative to the loader root
}

// Bundle is an ordered collection of fixture documents run together.
type Bundle []BundleEntry

// VMTests is the bundle of VM tests from the BlockchainTests section of the
// ethereum/tests repository. File names are relative to
// BlockchainTests/GeneralStateTests/VMTests/vmTests.
var VMTests = Bundle{
	{Name: "block-info", File: "blockInfo.json"},
	{Name: "call-data-copy", File: "calldatacopy.json"},
	{Name: "call-data-load", File: "calldataload.json"},
	{Name: "call-data-size", File: "calldatasize.json"},
	{Name: "dup", File: "dup.json"},
	{Name: "env-info", File: "envInfo.json"},
	{Name: "push", File: "push.json"},
	{Name: "random", File: "random.json"},
	{Name: "sha3", File: "sha3.json"},
	{Name: "suicide", File: "suicide.json"},
	{Name: "swap", File: "swap.json"},
}

// Names lists the names of all entries in bundle order.
func (b Bundle) Names() []string {
	res := make([]string, 0, len(b))
	for _, entry := range b {
		res = append(res, entry.Name)
	}
	return res
}
