// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Amount is a non-negative integer amount written as decimal ("1000"),
// scientific ("1e21") or hex ("0x3635c9adc5dea00000") text.
type Amount big.Int

func (a *Amount) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if strings.HasPrefix(s, "0x") {
		v, err := hexutil.DecodeBig(s)
		if err != nil {
			return errors.Wrapf(err, "invalid amount %q", s)
		}
		*a = Amount(*v)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Wrapf(err, "invalid amount %q", s)
	}
	if !d.Equal(d.Truncate(0)) {
		return errors.Errorf("amount %q is not an integer", s)
	}
	if d.Sign() < 0 {
		return errors.Errorf("amount %q is negative", s)
	}
	*a = Amount(*d.BigInt())
	return nil
}

func (a *Amount) MarshalText() ([]byte, error) {
	return []byte(a.Big().String()), nil
}

// Big returns a copy of the amount, zero for nil.
func (a *Amount) Big() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// NewAmount converts v to an Amount.
func NewAmount(v *big.Int) *Amount {
	a := Amount(*new(big.Int).Set(v))
	return &a
}
