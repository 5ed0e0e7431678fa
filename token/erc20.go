// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

// Kind selects the calling convention of a stored token.
type Kind uint8

const (
	KindStandard Kind = iota + 1 // operations return bool
	KindVoid                     // operations return nothing
)

const (
	ReasonExceedsBalance   = "ERC20: transfer amount exceeds balance"
	ReasonInsufficient     = "ERC20: insufficient allowance"
	ReasonTransferToZero   = "ERC20: transfer to the zero address"
	ReasonTransferFromZero = "ERC20: transfer from the zero address"
	ReasonApproveToZero    = "ERC20: approve to the zero address"
	ReasonMintToZero       = "ERC20: mint to the zero address"
	ReasonNotMinter        = "ERC20: caller is not the minter"
	ReasonNonContract      = "Address: call to non-contract"
	ReasonNegativeAmount   = "ERC20: negative amount"

	EventTransfer = "Transfer"
	EventApproval = "Approval"
)

var (
	slotMeta        = thor.BytesToBytes32([]byte("meta"))
	slotTotalSupply = thor.BytesToBytes32([]byte("totalSupply"))
	slotBalances    = thor.BytesToBytes32([]byte("balances"))
	slotAllowances  = thor.BytesToBytes32([]byte("allowances"))
)

// Meta describes a token.
type Meta struct {
	Name     string
	Symbol   string
	Decimals uint8
	Kind     Kind
	// Commission is the percentage of each transfer that is burnt.
	Commission uint8
	Minter     thor.Address
}

type allowanceKey struct {
	owner, spender thor.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token is a storage backed fungible asset.
type Token struct {
	addr        thor.Address
	state       *state.State
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[thor.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
}

var _ Checked = (*Token)(nil)

// New binds a token at addr.
func New(addr thor.Address, st *state.State) *Token {
	ctx := solidity.NewContext(addr, st)
	return &Token{
		addr:        addr,
		state:       st,
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
		balances:    solidity.NewMapping[thor.Address, *big.Int](ctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](ctx, slotAllowances),
	}
}

// Deploy stores a new token at addr.
func Deploy(st *state.State, addr thor.Address, meta Meta) (*Token, error) {
	if meta.Kind != KindStandard && meta.Kind != KindVoid {
		return nil, errors.Errorf("unknown token kind %d", meta.Kind)
	}
	if meta.Commission >= 100 {
		return nil, errors.New("commission must be below 100 percent")
	}
	t := New(addr, st)
	exists, err := t.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Errorf("token already deployed at %v", addr)
	}
	if err := st.EncodeStorage(addr, slotMeta, func() ([]byte, error) {
		return rlp.EncodeToBytes(&meta)
	}); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Token) Address() thor.Address { return t.addr }

// Exists returns whether a token is deployed at the bound address.
func (t *Token) Exists() (bool, error) {
	raw, err := t.state.GetRawStorage(t.addr, slotMeta)
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

func (t *Token) Meta() (*Meta, error) {
	raw, err := t.state.GetRawStorage(t.addr, slotMeta)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, reverts.New(ReasonNonContract)
	}
	var meta Meta
	if err := rlp.DecodeBytes(raw, &meta); err != nil {
		return nil, errors.Wrap(err, "decode token meta")
	}
	return &meta, nil
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(owner thor.Address) (*big.Int, error) {
	return t.balances.Get(owner)
}

func (t *Token) Allowance(owner, spender thor.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey{owner, spender})
}

// Mint creates amount for to. Only the minter may call.
func (t *Token) Mint(env *xenv.Environment, to thor.Address, amount *big.Int) error {
	return env.Call(func() error {
		meta, err := t.Meta()
		if err != nil {
			return err
		}
		if env.Caller() != meta.Minter {
			return reverts.New(ReasonNotMinter)
		}
		if err := checkAmount(amount); err != nil {
			return err
		}
		if to.IsZero() {
			return reverts.New(ReasonMintToZero)
		}
		if err := t.totalSupply.Add(amount); err != nil {
			return err
		}
		bal, err := t.balances.Get(to)
		if err != nil {
			return err
		}
		if err := t.setBalance(to, bal.Add(bal, amount)); err != nil {
			return err
		}
		t.log(env, EventTransfer, thor.Address{}, to, amount)
		return nil
	})
}

func (t *Token) Transfer(env *xenv.Environment, to thor.Address, amount *big.Int) (bool, error) {
	if err := env.Call(func() error {
		return t.transfer(env, env.Caller(), to, amount)
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) TransferFrom(env *xenv.Environment, from, to thor.Address, amount *big.Int) (bool, error) {
	if err := env.Call(func() error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		if err := t.spendAllowance(from, env.Caller(), amount); err != nil {
			return err
		}
		return t.transfer(env, from, to, amount)
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) (bool, error) {
	if err := env.Call(func() error {
		if _, err := t.Meta(); err != nil {
			return err
		}
		if spender.IsZero() {
			return reverts.New(ReasonApproveToZero)
		}
		if err := checkAmount(amount); err != nil {
			return err
		}
		if err := t.allowances.Set(allowanceKey{env.Caller(), spender}, amount); err != nil {
			return err
		}
		t.log(env, EventApproval, env.Caller(), spender, amount)
		return nil
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) spendAllowance(owner, spender thor.Address, amount *big.Int) error {
	current, err := t.Allowance(owner, spender)
	if err != nil {
		return err
	}
	// unlimited approvals are never decreased
	if current.Cmp(math.MaxBig256) == 0 {
		return nil
	}
	if current.Cmp(amount) < 0 {
		return reverts.New(ReasonInsufficient)
	}
	return t.allowances.Set(allowanceKey{owner, spender}, current.Sub(current, amount))
}

func (t *Token) transfer(env *xenv.Environment, from, to thor.Address, amount *big.Int) error {
	meta, err := t.Meta()
	if err != nil {
		return err
	}
	if from.IsZero() {
		return reverts.New(ReasonTransferFromZero)
	}
	if to.IsZero() {
		return reverts.New(ReasonTransferToZero)
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	fromBal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.New(ReasonExceedsBalance)
	}
	if err := t.setBalance(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}

	received := new(big.Int).Set(amount)
	if meta.Commission > 0 {
		burnt := new(big.Int).Mul(amount, big.NewInt(int64(meta.Commission)))
		burnt.Div(burnt, big.NewInt(100))
		if err := t.totalSupply.Sub(burnt); err != nil {
			return err
		}
		received.Sub(received, burnt)
	}

	toBal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	if err := t.setBalance(to, toBal.Add(toBal, received)); err != nil {
		return err
	}
	t.log(env, EventTransfer, from, to, received)
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.New(ReasonNegativeAmount)
	}
	return nil
}

func (t *Token) setBalance(owner thor.Address, bal *big.Int) error {
	if bal.Sign() == 0 {
		t.balances.Delete(owner)
		return nil
	}
	return t.balances.Set(owner, bal)
}

func (t *Token) log(env *xenv.Environment, name string, a, b thor.Address, amount *big.Int) {
	env.Log(&xenv.Event{
		Address: t.addr,
		Name:    name,
		Topics:  []thor.Address{a, b},
		Amount:  new(big.Int).Set(amount),
	})
}
