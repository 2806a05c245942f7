package invoice

import (
	"math/big"

	"invoicechain/core/events"
	"invoicechain/core/types"
)

// engineState abstracts the subset of state manager functionality the
// invoice lifecycle needs: the keyed invoice store plus the currency
// transfer primitive used at settlement.
type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVHas(key []byte) (bool, error)
	KVDelete(key []byte) error
	Transfer(from, to, denom string, amount *big.Int) error
}

var configKey = []byte("invoice/config")

func invoiceKey(id string) []byte {
	return []byte("invoice/record/" + id)
}

// Engine implements the invoice lifecycle state machine: guarded
// creation, exactly-once settlement coupled to a fund transfer, and
// cancellation. The host executes calls one at a time, so the engine
// relies on check-then-mutate within a single call rather than locks.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine creates an invoice engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) loadConfig() (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg := &Config{}
	ok, err := e.state.KVGet(configKey, cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInstantiated
	}
	return cfg, nil
}

func (e *Engine) loadInvoice(id string) (*Invoice, error) {
	inv := &Invoice{}
	ok, err := e.state.KVGet(invoiceKey(id), inv)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// Instantiated reports whether the one-time configuration exists.
func (e *Engine) Instantiated() (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.KVHas(configKey)
}

// Instantiate writes the one-time contract configuration with the caller
// as admin. The configuration is immutable afterwards; a second call
// fails with ErrAlreadyInstantiated.
func (e *Engine) Instantiate(caller, denom, recipient, businessName string, funds []types.Coin) (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if len(funds) != 0 {
		return nil, ErrInvalidPayment
	}
	admin := NormalizeAddress(caller)
	cfg := &Config{
		Admin:        admin,
		Recipient:    NormalizeAddress(recipient),
		Denom:        NormalizeDenom(denom),
		BusinessName: businessName,
	}
	var invalid []string
	if admin == "" {
		invalid = append(invalid, "caller")
	}
	if cfg.Denom == "" {
		invalid = append(invalid, "denom")
	}
	if cfg.Recipient == "" {
		invalid = append(invalid, "recipient")
	}
	if cfg.BusinessName == "" {
		invalid = append(invalid, "business_name")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}
	exists, err := e.state.KVHas(configKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyInstantiated
	}
	if err := e.state.KVPut(configKey, cfg); err != nil {
		return nil, err
	}
	return cfg.Clone(), nil
}

// AddInvoice records a new open invoice. Admin-only; ids are never
// overwritten, so a legitimate retry after a duplicate failure needs a
// fresh id.
func (e *Engine) AddInvoice(caller, id string, amount *big.Int, description string, funds []types.Coin) (*Invoice, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsAdmin(caller) {
		return nil, ErrUnauthorized
	}
	if len(funds) != 0 {
		return nil, ErrInvalidPayment
	}
	var invalid []string
	if id == "" || len(id) > maxIDLength {
		invalid = append(invalid, "id")
	}
	if amount == nil || amount.Sign() <= 0 {
		invalid = append(invalid, "amount")
	}
	if len(description) > maxDescriptionLength {
		invalid = append(invalid, "description")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}
	exists, err := e.state.KVHas(invoiceKey(id))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateInvoice
	}
	inv := &Invoice{
		ID:          id,
		Amount:      new(big.Int).Set(amount),
		Description: description,
	}
	if err := e.state.KVPut(invoiceKey(id), inv); err != nil {
		return nil, err
	}
	e.emit(events.InvoiceCreated{
		ID:        inv.ID,
		Denom:     cfg.Denom,
		Amount:    new(big.Int).Set(inv.Amount),
		Recipient: cfg.Recipient,
	})
	return inv.Clone(), nil
}

// PayInvoice settles an open invoice with the attached payment. The
// checks run in a fixed order and no state changes until all of them
// pass: exactly one coin attached, denom match, invoice present, amount
// exact. Settlement then forwards the funds to the configured recipient
// and removes the invoice as one unit. An already settled or cancelled
// id fails with ErrInvoiceNotFound, which is what makes double payment
// impossible under the host's serialized execution.
func (e *Engine) PayInvoice(caller, id string, funds []types.Coin) (*Invoice, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	payer := NormalizeAddress(caller)
	if payer == "" {
		return nil, &ValidationError{Fields: []string{"caller"}}
	}
	if len(funds) != 1 {
		return nil, ErrInvalidPayment
	}
	attached := funds[0]
	if !attached.IsPositive() {
		return nil, ErrInvalidPayment
	}
	if NormalizeDenom(attached.Denom) != cfg.Denom {
		return nil, ErrInvalidDenom
	}
	inv, err := e.loadInvoice(id)
	if err != nil {
		return nil, err
	}
	if attached.Amount.Cmp(inv.Amount) != 0 {
		return nil, ErrAmountMismatch
	}
	if err := e.state.Transfer(payer, cfg.Recipient, cfg.Denom, inv.Amount); err != nil {
		return nil, err
	}
	if err := e.state.KVDelete(invoiceKey(id)); err != nil {
		// compensate the forwarded funds so a storage failure cannot
		// leave the invoice open after the money moved
		_ = e.state.Transfer(cfg.Recipient, payer, cfg.Denom, inv.Amount)
		return nil, err
	}
	e.emit(events.InvoicePaid{
		ID:        inv.ID,
		Denom:     cfg.Denom,
		Amount:    new(big.Int).Set(inv.Amount),
		Payer:     payer,
		Recipient: cfg.Recipient,
	})
	return inv.Clone(), nil
}

// CancelInvoice withdraws an open invoice. Admin-only; no funds move.
// A settled invoice is already absent, so cancellation of a paid id
// fails with ErrInvoiceNotFound.
func (e *Engine) CancelInvoice(caller, id string, funds []types.Coin) (*Invoice, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsAdmin(caller) {
		return nil, ErrUnauthorized
	}
	if len(funds) != 0 {
		return nil, ErrInvalidPayment
	}
	inv, err := e.loadInvoice(id)
	if err != nil {
		return nil, err
	}
	if err := e.state.KVDelete(invoiceKey(id)); err != nil {
		return nil, err
	}
	e.emit(events.InvoiceCancelled{
		ID:        inv.ID,
		Denom:     cfg.Denom,
		Amount:    new(big.Int).Set(inv.Amount),
		Recipient: cfg.Recipient,
	})
	return inv.Clone(), nil
}

// Invoice returns the open invoice for an id. No authorization check;
// any caller may query.
func (e *Engine) Invoice(id string) (*Invoice, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	inv, err := e.loadInvoice(id)
	if err != nil {
		return nil, err
	}
	return inv.Clone(), nil
}

// ContractInfo returns the full contract configuration.
func (e *Engine) ContractInfo() (*Config, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Clone(), nil
}

// VersionInfo returns the static contract name and semantic version.
func (e *Engine) VersionInfo() (string, string) {
	return ContractName, ContractVersion
}
