package invoice

import (
	"math/big"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	cases := map[string]string{
		"  Merchant ": "merchant",
		"RECIPIENT":   "recipient",
		"":            "",
		"   ":         "",
	}
	for input, want := range cases {
		if got := NormalizeAddress(input); got != want {
			t.Fatalf("NormalizeAddress(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestConfigIsAdmin(t *testing.T) {
	cfg := &Config{Admin: "merchant"}
	if !cfg.IsAdmin(" Merchant ") {
		t.Fatalf("expected normalized caller to match admin")
	}
	if cfg.IsAdmin("other") {
		t.Fatalf("non-admin caller matched")
	}
	if cfg.IsAdmin("") {
		t.Fatalf("empty caller matched")
	}
	var nilCfg *Config
	if nilCfg.IsAdmin("merchant") {
		t.Fatalf("nil config matched")
	}
}

func TestInvoiceCloneIsIndependent(t *testing.T) {
	original := &Invoice{ID: "inv-1", Amount: big.NewInt(100), Description: "shoes"}
	clone := original.Clone()
	clone.Amount.SetInt64(999)
	clone.Description = "changed"
	if original.Amount.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("clone mutation leaked into original amount")
	}
	if original.Description != "shoes" {
		t.Fatalf("clone mutation leaked into original description")
	}

	nilAmount := &Invoice{ID: "inv-2"}
	if clone := nilAmount.Clone(); clone.Amount == nil || clone.Amount.Sign() != 0 {
		t.Fatalf("nil amount should clone to zero")
	}
}
