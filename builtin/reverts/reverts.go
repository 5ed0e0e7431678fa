// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// ErrRevert is a contract rejection carrying a short reason.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Bytes returns the reason ABI encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}
	// 4-byte selector for Error(string)
	selector, _ := hex.DecodeString("08c379a0")
	msgBytes := []byte(e.message)
	padded := ((len(msgBytes) + 31) / 32) * 32

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 4+32+32+padded)
	copy(encoded, selector)
	binary.BigEndian.PutUint64(encoded[4+24:], 32)
	binary.BigEndian.PutUint64(encoded[4+32+24:], uint64(len(msgBytes)))
	copy(encoded[4+64:], msgBytes)
	return encoded
}

// IsRevertErr returns whether err is or wraps a revert.
func IsRevertErr(err any) bool {
	_, ok := As(err)
	return ok
}

// As finds the revert in err's chain.
func As(err any) (*ErrRevert, bool) {
	e, ok := err.(error)
	if !ok || e == nil {
		return nil, false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) && ve != nil {
		return ve, true
	}
	return nil, false
}
