package events

import (
	"math/big"
	"testing"
)

func TestInvoicePaidWireEvent(t *testing.T) {
	payload := InvoicePaid{
		ID:        "inv-1",
		Denom:     "usdx.c",
		Amount:    big.NewInt(10000),
		Payer:     "payer",
		Recipient: "settlement",
	}
	evt := payload.Event()
	if evt == nil {
		t.Fatalf("expected wire event")
	}
	if evt.Type != TypeInvoicePaid {
		t.Fatalf("unexpected type: %s", evt.Type)
	}
	want := map[string]string{
		"id":        "inv-1",
		"denom":     "usdx.c",
		"amount":    "10000",
		"payer":     "payer",
		"recipient": "settlement",
	}
	for key, value := range want {
		if evt.Attributes[key] != value {
			t.Fatalf("attribute %s: got %q want %q", key, evt.Attributes[key], value)
		}
	}
}

func TestCreatedAndCancelledOmitPayer(t *testing.T) {
	created := InvoiceCreated{ID: "inv-1", Denom: "usdx.c", Amount: big.NewInt(5), Recipient: "settlement"}
	cancelled := InvoiceCancelled{ID: "inv-1", Denom: "usdx.c", Amount: big.NewInt(5), Recipient: "settlement"}

	if evt := created.Event(); evt == nil || evt.Attributes["payer"] != "" {
		t.Fatalf("created event should not carry payer: %+v", evt)
	}
	if evt := cancelled.Event(); evt == nil || evt.Type != TypeInvoiceCancelled {
		t.Fatalf("unexpected cancelled event: %+v", evt)
	}
}

func TestEmptyIDYieldsNoWireEvent(t *testing.T) {
	if evt := (InvoiceCreated{}).Event(); evt != nil {
		t.Fatalf("expected nil event for empty id, got %+v", evt)
	}
}
