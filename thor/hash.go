// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b computes blake2b-256 checksum for given data.
// It is used to derive storage positions.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	h, _ := blake2b.New256(nil)
	for _, b := range data {
		h.Write(b)
	}
	var b32 Bytes32
	h.Sum(b32[:0])
	return b32
}

// keccakState wraps sha3.state. Read is faster than Sum because it
// doesn't copy the internal state.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

var keccak256Pool = sync.Pool{
	New: func() any {
		return sha3.NewLegacyKeccak256().(keccakState)
	},
}

// Keccak256 computes the legacy keccak-256 checksum for given data.
// It is used for address derivation and event ids.
func Keccak256(data ...[]byte) (h Bytes32) {
	state := keccak256Pool.Get().(keccakState)
	for _, b := range data {
		state.Write(b)
	}
	state.Read(h[:])
	state.Reset()
	keccak256Pool.Put(state)
	return
}
