package rpc

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"invoicechain/core/state"
	"invoicechain/core/types"
	"invoicechain/native/invoice"
)

const (
	codeInvoiceInvalidParams = -32041
	codeInvoiceNotFound      = -32042
	codeInvoiceForbidden     = -32043
	codeInvoiceConflict      = -32044
	codeInvoicePayment       = -32045
	codeInvoiceInternal      = -32046
)

type attachedPayment struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type invoiceInstantiateParams struct {
	Caller       string `json:"caller"`
	Denom        string `json:"denom"`
	Recipient    string `json:"recipient"`
	BusinessName string `json:"businessName"`
}

type invoiceAddParams struct {
	Caller      string `json:"caller"`
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type invoicePayParams struct {
	Caller  string            `json:"caller"`
	ID      string            `json:"id"`
	Payment []attachedPayment `json:"payment"`
}

type invoiceActorParams struct {
	Caller string `json:"caller"`
	ID     string `json:"id"`
}

type invoiceIDParams struct {
	ID string `json:"id"`
}

type bankBalanceParams struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

type bankFundParams struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
	Amount  string `json:"amount"`
}

type invoiceJSON struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type contractInfoJSON struct {
	Admin        string `json:"admin"`
	Recipient    string `json:"recipient"`
	Denom        string `json:"denom"`
	BusinessName string `json:"businessName"`
}

type versionInfoJSON struct {
	ContractName string `json:"contractName"`
	Version      string `json:"version"`
}

type balanceJSON struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
	Amount  string `json:"amount"`
}

func invoiceToJSON(inv *invoice.Invoice) invoiceJSON {
	amount := "0"
	if inv.Amount != nil {
		amount = inv.Amount.String()
	}
	return invoiceJSON{ID: inv.ID, Amount: amount, Description: inv.Description}
}

func decodeParams(req *RPCRequest, out interface{}) *RPCError {
	if len(req.Params) != 1 {
		return &RPCError{Code: codeInvoiceInvalidParams, Message: "invalid_params", Data: "exactly one parameter object expected"}
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return &RPCError{Code: codeInvoiceInvalidParams, Message: "invalid_params", Data: err.Error()}
	}
	return nil
}

// parseAmount accepts a base-10 integer string. Amounts travel as
// strings on the wire so precision never rounds through float64.
func parseAmount(raw string) (*big.Int, *RPCError) {
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, &RPCError{Code: codeInvoiceInvalidParams, Message: "invalid_params", Data: "amount must be a base-10 integer string"}
	}
	return value, nil
}

func paymentToCoins(payment []attachedPayment) ([]types.Coin, *RPCError) {
	coins := make([]types.Coin, 0, len(payment))
	for _, p := range payment {
		amount, rpcErr := parseAmount(p.Amount)
		if rpcErr != nil {
			return nil, rpcErr
		}
		coins = append(coins, types.NewCoin(p.Denom, amount))
	}
	return coins, nil
}

// writeEngineError maps the contract error taxonomy onto RPC codes.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	if fields, ok := invoice.InvalidFields(err); ok {
		writeError(w, http.StatusBadRequest, id, codeInvoiceInvalidParams, "invalid_params", fields)
		return
	}
	switch {
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		writeError(w, http.StatusNotFound, id, codeInvoiceNotFound, "invoice_not_found", nil)
	case errors.Is(err, invoice.ErrUnauthorized):
		writeError(w, http.StatusForbidden, id, codeInvoiceForbidden, "unauthorized", nil)
	case errors.Is(err, invoice.ErrDuplicateInvoice):
		writeError(w, http.StatusConflict, id, codeInvoiceConflict, "duplicate_invoice", nil)
	case errors.Is(err, invoice.ErrAlreadyInstantiated):
		writeError(w, http.StatusConflict, id, codeInvoiceConflict, "already_instantiated", nil)
	case errors.Is(err, invoice.ErrNotInstantiated):
		writeError(w, http.StatusConflict, id, codeInvoiceConflict, "not_instantiated", nil)
	case errors.Is(err, invoice.ErrInvalidPayment):
		writeError(w, http.StatusBadRequest, id, codeInvoicePayment, "invalid_payment", nil)
	case errors.Is(err, invoice.ErrInvalidDenom):
		writeError(w, http.StatusBadRequest, id, codeInvoicePayment, "invalid_denom", nil)
	case errors.Is(err, invoice.ErrAmountMismatch):
		writeError(w, http.StatusBadRequest, id, codeInvoicePayment, "amount_mismatch", nil)
	case errors.Is(err, state.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, id, codeInvoicePayment, "insufficient_funds", nil)
	default:
		writeError(w, http.StatusInternalServerError, id, codeInvoiceInternal, "internal_error", err.Error())
	}
}

func (s *Server) handleInvoiceInstantiate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params invoiceInstantiateParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	cfg, err := s.node.Instantiate(params.Caller, params.Denom, params.Recipient, params.BusinessName, nil)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, contractInfoJSON{
		Admin:        cfg.Admin,
		Recipient:    cfg.Recipient,
		Denom:        cfg.Denom,
		BusinessName: cfg.BusinessName,
	})
}

func (s *Server) handleInvoiceAdd(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params invoiceAddParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	inv, err := s.node.AddInvoice(params.Caller, params.ID, amount, params.Description, nil)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, invoiceToJSON(inv))
}

func (s *Server) handleInvoicePay(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params invoicePayParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	coins, rpcErr := paymentToCoins(params.Payment)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	inv, err := s.node.PayInvoice(params.Caller, params.ID, coins)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, invoiceToJSON(inv))
}

func (s *Server) handleInvoiceCancel(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params invoiceActorParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	inv, err := s.node.CancelInvoice(params.Caller, params.ID, nil)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, invoiceToJSON(inv))
}

func (s *Server) handleInvoiceGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params invoiceIDParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	inv, err := s.node.GetInvoice(params.ID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, invoiceToJSON(inv))
}

func (s *Server) handleContractInfo(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	cfg, err := s.node.ContractInfo()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, contractInfoJSON{
		Admin:        cfg.Admin,
		Recipient:    cfg.Recipient,
		Denom:        cfg.Denom,
		BusinessName: cfg.BusinessName,
	})
}

func (s *Server) handleVersionInfo(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	name, version := s.node.VersionInfo()
	writeResult(w, req.ID, versionInfoJSON{ContractName: name, Version: version})
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, s.node.Events())
}

func (s *Server) handleBankBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params bankBalanceParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	balance, err := s.node.Balance(params.Address, params.Denom)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceJSON{Address: params.Address, Denom: params.Denom, Amount: balance.String()})
}

func (s *Server) handleBankFund(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params bankFundParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	if amount.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvoiceInvalidParams, "invalid_params", "amount must be positive")
		return
	}
	balance, err := s.node.FundAccount(params.Address, params.Denom, amount)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceJSON{Address: params.Address, Denom: params.Denom, Amount: balance.String()})
}
