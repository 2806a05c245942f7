package state

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"invoicechain/core/types"
	"invoicechain/storage"
)

// ErrInsufficientBalance is returned by Debit and Transfer when the
// source account does not hold the requested amount.
var ErrInsufficientBalance = errors.New("state: insufficient balance")

// Manager provides the read/write surface contract engines run against.
// Values are RLP encoded and keys are hashed with keccak256 so raw key
// material never leaks into the backing store.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var accountPrefix = []byte("account:")

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func accountKey(addr string) []byte {
	buf := make([]byte, len(accountPrefix)+len(addr))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr)
	return ethcrypto.Keccak256(buf)
}

// KVPut stores the provided value under the supplied key using RLP encoding.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.db.Get(kvKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVHas reports whether a value exists under the supplied key.
func (m *Manager) KVHas(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	return m.db.Has(kvKey(key))
}

// KVDelete removes the value stored under the supplied key. Deleting an
// absent key is not an error; the caller decides whether absence matters.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.db.Delete(kvKey(key))
}

func normalizeAddr(addr string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(addr))
	if trimmed == "" {
		return "", fmt.Errorf("state: address must not be empty")
	}
	return trimmed, nil
}

// GetAccount loads the account record for an address. Unknown addresses
// resolve to an empty account rather than an error.
func (m *Manager) GetAccount(addr string) (*types.Account, error) {
	normalized, err := normalizeAddr(addr)
	if err != nil {
		return nil, err
	}
	data, err := m.db.Get(accountKey(normalized))
	if errors.Is(err, storage.ErrNotFound) {
		return &types.Account{}, nil
	}
	if err != nil {
		return nil, err
	}
	account := &types.Account{}
	if err := rlp.DecodeBytes(data, account); err != nil {
		return nil, err
	}
	return account, nil
}

// PutAccount persists the account record for an address.
func (m *Manager) PutAccount(addr string, account *types.Account) error {
	normalized, err := normalizeAddr(addr)
	if err != nil {
		return err
	}
	if account == nil {
		account = &types.Account{}
	}
	encoded, err := rlp.EncodeToBytes(account)
	if err != nil {
		return err
	}
	return m.db.Put(accountKey(normalized), encoded)
}

// Balance returns the amount of a denom held by an address.
func (m *Manager) Balance(addr, denom string) (*big.Int, error) {
	account, err := m.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return account.BalanceOf(denom), nil
}

// Credit adds the amount of a denom to an address.
func (m *Manager) Credit(addr, denom string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: credit amount must be positive")
	}
	account, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	account.SetBalance(denom, new(big.Int).Add(account.BalanceOf(denom), amount))
	return m.PutAccount(addr, account)
}

// Debit removes the amount of a denom from an address, failing with
// ErrInsufficientBalance when the account does not cover it.
func (m *Manager) Debit(addr, denom string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: debit amount must be positive")
	}
	account, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	balance := account.BalanceOf(denom)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	account.SetBalance(denom, balance.Sub(balance, amount))
	return m.PutAccount(addr, account)
}

// Transfer moves an amount of a denom between two addresses as one
// logical step. The debit happens first so a failed transfer never
// creates funds; if the credit fails the debit is compensated.
func (m *Manager) Transfer(from, to, denom string, amount *big.Int) error {
	if err := m.Debit(from, denom, amount); err != nil {
		return err
	}
	if err := m.Credit(to, denom, amount); err != nil {
		if restoreErr := m.Credit(from, denom, amount); restoreErr != nil {
			return fmt.Errorf("state: transfer credit failed: %w (restore failed: %v)", err, restoreErr)
		}
		return err
	}
	return nil
}
