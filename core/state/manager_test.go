package state

import (
	"errors"
	"math/big"
	"testing"

	"invoicechain/storage"
)

type record struct {
	Name  string
	Value uint64
}

func TestKVRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	key := []byte("test/record")
	if err := manager.KVPut(key, &record{Name: "alpha", Value: 7}); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out record
	ok, err := manager.KVGet(key, &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Name != "alpha" || out.Value != 7 {
		t.Fatalf("unexpected record: %+v", out)
	}

	has, err := manager.KVHas(key)
	if err != nil || !has {
		t.Fatalf("has: ok=%v err=%v", has, err)
	}

	if err := manager.KVDelete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = manager.KVGet(key, &out)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if ok {
		t.Fatalf("key still present after delete")
	}
}

func TestKVRejectsEmptyKey(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	if err := manager.KVPut(nil, &record{}); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := manager.KVGet(nil, nil); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestAccountBalances(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	balance, err := manager.Balance("payer", "usdx.c")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("fresh account should read zero, got %s", balance)
	}

	if err := manager.Credit("Payer", "usdx.c", big.NewInt(750)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	// address lookups are case-insensitive after normalization
	balance, err = manager.Balance("payer", "usdx.c")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(750)) != 0 {
		t.Fatalf("unexpected balance: %s", balance)
	}

	if err := manager.Debit("payer", "usdx.c", big.NewInt(800)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := manager.Debit("payer", "usdx.c", big.NewInt(250)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	balance, _ = manager.Balance("payer", "usdx.c")
	if balance.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("unexpected balance after debit: %s", balance)
	}
}

func TestTransferMovesExactAmount(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	if err := manager.Credit("from", "usdx.c", big.NewInt(1000)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := manager.Transfer("from", "to", "usdx.c", big.NewInt(400)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	fromBal, _ := manager.Balance("from", "usdx.c")
	toBal, _ := manager.Balance("to", "usdx.c")
	if fromBal.Cmp(big.NewInt(600)) != 0 || toBal.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("unexpected balances after transfer: from=%s to=%s", fromBal, toBal)
	}

	if err := manager.Transfer("from", "to", "usdx.c", big.NewInt(601)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	fromBal, _ = manager.Balance("from", "usdx.c")
	if fromBal.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("failed transfer mutated source balance: %s", fromBal)
	}
}

func TestBalancesArePerDenom(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	if err := manager.Credit("addr", "usdx.c", big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := manager.Credit("addr", "eurx.c", big.NewInt(200)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	usd, _ := manager.Balance("addr", "usdx.c")
	eur, _ := manager.Balance("addr", "eurx.c")
	if usd.Cmp(big.NewInt(100)) != 0 || eur.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("denom balances bleed: usd=%s eur=%s", usd, eur)
	}
}
