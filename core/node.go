package core

import (
	"math/big"
	"sync"

	"invoicechain/core/events"
	"invoicechain/core/state"
	"invoicechain/core/types"
	"invoicechain/native/invoice"
	"invoicechain/observability/metrics"
	"invoicechain/storage"
)

// eventTailLimit bounds the in-memory event history exposed over RPC.
const eventTailLimit = 256

// Node hosts the invoice contract: it owns the database, the state
// manager and the engine, and serializes every mutating call so the
// engine sees the one-at-a-time execution model it was written for.
type Node struct {
	mu      sync.Mutex
	db      storage.Database
	manager *state.Manager
	engine  *invoice.Engine

	eventsMu sync.Mutex
	events   []types.Event
}

// NewNode builds a node over the provided database and wires the engine
// to its state and event sink.
func NewNode(db storage.Database) *Node {
	manager := state.NewManager(db)
	engine := invoice.NewEngine()
	engine.SetState(manager)
	node := &Node{db: db, manager: manager, engine: engine}
	engine.SetEmitter(node)
	return node
}

// Emit implements events.Emitter: wire-convertible payloads are appended
// to a bounded tail for RPC inspection.
func (n *Node) Emit(evt events.Event) {
	wirer, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	wire := wirer.Event()
	if wire == nil {
		return
	}
	n.eventsMu.Lock()
	defer n.eventsMu.Unlock()
	n.events = append(n.events, *wire)
	if len(n.events) > eventTailLimit {
		n.events = n.events[len(n.events)-eventTailLimit:]
	}
}

// Events returns a copy of the recent event tail, newest last.
func (n *Node) Events() []types.Event {
	n.eventsMu.Lock()
	defer n.eventsMu.Unlock()
	out := make([]types.Event, len(n.events))
	copy(out, n.events)
	return out
}

// Instantiate performs the one-time contract configuration write with
// the supplied caller as admin.
func (n *Node) Instantiate(caller, denom, recipient, businessName string, funds []types.Coin) (*invoice.Config, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Instantiate(caller, denom, recipient, businessName, funds)
}

// Bootstrap instantiates the contract on first boot and is a no-op when
// a configuration already exists. The configured admin address plays
// the instantiation caller, preserving admin = caller at the engine
// boundary.
func (n *Node) Bootstrap(admin, denom, recipient, businessName string) (*invoice.Config, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	exists, err := n.engine.Instantiated()
	if err != nil {
		return nil, false, err
	}
	if exists {
		cfg, err := n.engine.ContractInfo()
		return cfg, false, err
	}
	cfg, err := n.engine.Instantiate(admin, denom, recipient, businessName, nil)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// AddInvoice records a new invoice on behalf of caller.
func (n *Node) AddInvoice(caller, id string, amount *big.Int, description string, funds []types.Coin) (*invoice.Invoice, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	inv, err := n.engine.AddInvoice(caller, id, amount, description, funds)
	if err != nil {
		return nil, err
	}
	metrics.Invoice().RecordCreated()
	return inv, nil
}

// PayInvoice settles an invoice with the caller's attached payment.
func (n *Node) PayInvoice(caller, id string, funds []types.Coin) (*invoice.Invoice, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	inv, err := n.engine.PayInvoice(caller, id, funds)
	if err != nil {
		return nil, err
	}
	metrics.Invoice().RecordSettled(fundsDenom(funds), inv.Amount)
	return inv, nil
}

// CancelInvoice withdraws an open invoice on behalf of caller.
func (n *Node) CancelInvoice(caller, id string, funds []types.Coin) (*invoice.Invoice, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	inv, err := n.engine.CancelInvoice(caller, id, funds)
	if err != nil {
		return nil, err
	}
	metrics.Invoice().RecordCancelled()
	return inv, nil
}

// GetInvoice returns the open invoice for an id.
func (n *Node) GetInvoice(id string) (*invoice.Invoice, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Invoice(id)
}

// ContractInfo returns the contract configuration.
func (n *Node) ContractInfo() (*invoice.Config, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.ContractInfo()
}

// VersionInfo returns the static contract name and version.
func (n *Node) VersionInfo() (string, string) {
	return n.engine.VersionInfo()
}

// Balance reports the amount of denom held by an address.
func (n *Node) Balance(addr, denom string) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.manager.Balance(addr, denom)
}

// FundAccount credits an address with denom out of thin air. This is the
// development faucet backing the bank_fund RPC; production deployments
// receive balances from the surrounding ledger instead.
func (n *Node) FundAccount(addr, denom string, amount *big.Int) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.manager.Credit(addr, denom, amount); err != nil {
		return nil, err
	}
	return n.manager.Balance(addr, denom)
}

func fundsDenom(funds []types.Coin) string {
	if len(funds) == 0 {
		return ""
	}
	return funds[0].Denom
}
