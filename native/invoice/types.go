package invoice

import (
	"math/big"
	"strings"
)

// ContractName and ContractVersion identify this contract build for
// client compatibility checks (the GetVersionInfo query).
const (
	ContractName    = "invoicechain.invoice"
	ContractVersion = "1.0.0"
)

const (
	maxIDLength          = 128
	maxDescriptionLength = 64
)

// Config is the contract configuration written exactly once at
// instantiation. There is no update entry point; the record is immutable
// for the lifetime of the contract.
type Config struct {
	Admin        string
	Recipient    string
	Denom        string
	BusinessName string
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// IsAdmin reports whether the caller is the configured merchant. This is
// the single authorization predicate guarding add and cancel.
func (c *Config) IsAdmin(caller string) bool {
	if c == nil {
		return false
	}
	normalized := NormalizeAddress(caller)
	return normalized != "" && normalized == c.Admin
}

// Invoice is a single billable obligation. While present in the store an
// invoice is open; absence is the only representation of settled or
// cancelled, so the record carries no status field.
type Invoice struct {
	ID          string
	Amount      *big.Int
	Description string
}

// Clone returns a deep copy so callers can safely mutate the result
// without affecting the stored instance.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	clone := *inv
	if inv.Amount != nil {
		clone.Amount = new(big.Int).Set(inv.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

// NormalizeAddress canonicalises an opaque host address. Address syntax
// is the host's concern; the contract only needs a stable comparison
// form.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// NormalizeDenom canonicalises a currency-unit identifier.
func NormalizeDenom(denom string) string {
	return strings.ToLower(strings.TrimSpace(denom))
}
