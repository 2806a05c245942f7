package events

import (
	"math/big"
	"strings"

	"invoicechain/core/types"
)

const (
	// TypeInvoiceCreated is emitted when the merchant records a new invoice.
	TypeInvoiceCreated = "invoice.created"
	// TypeInvoicePaid is emitted when an invoice is settled and funds are
	// forwarded to the recipient.
	TypeInvoicePaid = "invoice.paid"
	// TypeInvoiceCancelled is emitted when the merchant withdraws an
	// unpaid invoice.
	TypeInvoiceCancelled = "invoice.cancelled"
)

// InvoiceCreated mirrors the attribute set the contract reports on a
// successful add: the invoice identity plus the settlement terms.
type InvoiceCreated struct {
	ID        string
	Denom     string
	Amount    *big.Int
	Recipient string
}

// EventType satisfies the events.Event interface.
func (InvoiceCreated) EventType() string { return TypeInvoiceCreated }

// Event converts the structured payload into a wire-friendly representation
// for RPC subscribers.
func (e InvoiceCreated) Event() *types.Event {
	if strings.TrimSpace(e.ID) == "" {
		return nil
	}
	return &types.Event{Type: TypeInvoiceCreated, Attributes: invoiceAttributes(e.ID, e.Denom, e.Amount, e.Recipient, "")}
}

// InvoicePaid records a settlement: the invoice is gone and the attached
// funds moved to the recipient. Payer identifies who settled it.
type InvoicePaid struct {
	ID        string
	Denom     string
	Amount    *big.Int
	Payer     string
	Recipient string
}

// EventType satisfies the events.Event interface.
func (InvoicePaid) EventType() string { return TypeInvoicePaid }

// Event converts the structured payload into a wire-friendly representation
// for RPC subscribers.
func (e InvoicePaid) Event() *types.Event {
	if strings.TrimSpace(e.ID) == "" {
		return nil
	}
	return &types.Event{Type: TypeInvoicePaid, Attributes: invoiceAttributes(e.ID, e.Denom, e.Amount, e.Recipient, e.Payer)}
}

// InvoiceCancelled records a merchant withdrawal of an open invoice.
type InvoiceCancelled struct {
	ID        string
	Denom     string
	Amount    *big.Int
	Recipient string
}

// EventType satisfies the events.Event interface.
func (InvoiceCancelled) EventType() string { return TypeInvoiceCancelled }

// Event converts the structured payload into a wire-friendly representation
// for RPC subscribers.
func (e InvoiceCancelled) Event() *types.Event {
	if strings.TrimSpace(e.ID) == "" {
		return nil
	}
	return &types.Event{Type: TypeInvoiceCancelled, Attributes: invoiceAttributes(e.ID, e.Denom, e.Amount, e.Recipient, "")}
}

func invoiceAttributes(id, denom string, amount *big.Int, recipient, payer string) map[string]string {
	attrs := map[string]string{
		"id": id,
	}
	if denom = strings.TrimSpace(denom); denom != "" {
		attrs["denom"] = denom
	}
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	if recipient = strings.TrimSpace(recipient); recipient != "" {
		attrs["recipient"] = recipient
	}
	if payer = strings.TrimSpace(payer); payer != "" {
		attrs["payer"] = payer
	}
	return attrs
}
