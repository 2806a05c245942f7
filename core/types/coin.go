package types

import (
	"fmt"
	"math/big"
	"strings"
)

// Coin is a quantity of a single currency unit. Amounts are
// arbitrary-precision integers; the host never deals in fractions.
type Coin struct {
	Denom  string   `json:"denom"`
	Amount *big.Int `json:"amount"`
}

// NewCoin builds a coin with a defensive copy of the amount.
func NewCoin(denom string, amount *big.Int) Coin {
	amt := big.NewInt(0)
	if amount != nil {
		amt = new(big.Int).Set(amount)
	}
	return Coin{Denom: strings.TrimSpace(denom), Amount: amt}
}

// Clone returns a deep copy so callers can mutate the result freely.
func (c Coin) Clone() Coin {
	return NewCoin(c.Denom, c.Amount)
}

// IsPositive reports whether the coin carries a strictly positive amount.
func (c Coin) IsPositive() bool {
	return c.Amount != nil && c.Amount.Sign() > 0
}

func (c Coin) String() string {
	amt := "0"
	if c.Amount != nil {
		amt = c.Amount.String()
	}
	return fmt.Sprintf("%s%s", amt, c.Denom)
}

// CloneCoins deep-copies a coin slice. A nil input yields an empty slice
// so downstream length checks stay straightforward.
func CloneCoins(coins []Coin) []Coin {
	out := make([]Coin, 0, len(coins))
	for _, c := range coins {
		out = append(out, c.Clone())
	}
	return out
}
