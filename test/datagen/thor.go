// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/whiteswap/farming/thor"
)

// RandAddress returns a random non-zero address.
func RandAddress() (addr thor.Address) {
	for addr.IsZero() {
		rand.Read(addr[:])
	}
	return
}

// RandAddresses returns n distinct random addresses.
func RandAddresses(n int) []thor.Address {
	seen := make(map[thor.Address]bool, n)
	addrs := make([]thor.Address, 0, n)
	for len(addrs) < n {
		a := RandAddress()
		if !seen[a] {
			seen[a] = true
			addrs = append(addrs, a)
		}
	}
	return addrs
}
