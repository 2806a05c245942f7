package types

import "math/big"

// TokenBalance is one denom's balance inside an account. Balances are
// kept as a sorted slice rather than a map so the RLP encoding of an
// account is deterministic.
type TokenBalance struct {
	Denom  string
	Amount *big.Int
}

// Account is the ledger-side record for an address. Only the fields the
// settlement flow needs are tracked; there is no nonce-based replay
// protection because call ordering is the host's responsibility.
type Account struct {
	Balances []TokenBalance
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return &Account{}
	}
	clone := &Account{Balances: make([]TokenBalance, len(a.Balances))}
	for i, bal := range a.Balances {
		amt := big.NewInt(0)
		if bal.Amount != nil {
			amt = new(big.Int).Set(bal.Amount)
		}
		clone.Balances[i] = TokenBalance{Denom: bal.Denom, Amount: amt}
	}
	return clone
}

// BalanceOf returns the balance held in the given denom. Missing denoms
// read as zero.
func (a *Account) BalanceOf(denom string) *big.Int {
	if a == nil {
		return big.NewInt(0)
	}
	for _, bal := range a.Balances {
		if bal.Denom == denom {
			if bal.Amount == nil {
				return big.NewInt(0)
			}
			return new(big.Int).Set(bal.Amount)
		}
	}
	return big.NewInt(0)
}

// SetBalance replaces the balance for a denom, keeping the slice sorted
// by denom. Zero balances are retained so the encoding of "touched"
// accounts stays stable.
func (a *Account) SetBalance(denom string, amount *big.Int) {
	amt := big.NewInt(0)
	if amount != nil {
		amt = new(big.Int).Set(amount)
	}
	for i, bal := range a.Balances {
		if bal.Denom == denom {
			a.Balances[i].Amount = amt
			return
		}
	}
	insert := 0
	for insert < len(a.Balances) && a.Balances[insert].Denom < denom {
		insert++
	}
	a.Balances = append(a.Balances, TokenBalance{})
	copy(a.Balances[insert+1:], a.Balances[insert:])
	a.Balances[insert] = TokenBalance{Denom: denom, Amount: amt}
}
