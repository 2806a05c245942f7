package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"invoicechain/core"
	"invoicechain/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	t.Setenv("INVOICE_RPC_TOKEN", "")
	node := core.NewNode(storage.NewMemDB())
	_, created, err := node.Bootstrap("merchant", "usdx.c", "settlement", "Shoe Co")
	require.NoError(t, err)
	require.True(t, created)

	server := NewServer(node)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return server, ts
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}) (*http.Response, RPCResponse) {
	t.Helper()
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func resultField(t *testing.T, resp RPCResponse, key string) string {
	t.Helper()
	obj, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "result is not an object: %+v", resp.Result)
	value, _ := obj[key].(string)
	return value
}

func TestInvoiceLifecycleOverRPC(t *testing.T) {
	_, ts := newTestServer(t)

	_, resp := call(t, ts, "bank_fund", map[string]string{
		"address": "payer", "denom": "usdx.c", "amount": "10000",
	})
	require.Nil(t, resp.Error)

	_, resp = call(t, ts, "invoice_add", map[string]string{
		"caller": "merchant", "id": "inv-1", "amount": "10000", "description": "shoes",
	})
	require.Nil(t, resp.Error)
	require.Equal(t, "inv-1", resultField(t, resp, "id"))
	require.Equal(t, "10000", resultField(t, resp, "amount"))

	_, resp = call(t, ts, "invoice_get", map[string]string{"id": "inv-1"})
	require.Nil(t, resp.Error)
	require.Equal(t, "shoes", resultField(t, resp, "description"))

	_, resp = call(t, ts, "invoice_pay", map[string]interface{}{
		"caller": "payer",
		"id":     "inv-1",
		"payment": []map[string]string{
			{"denom": "usdx.c", "amount": "10000"},
		},
	})
	require.Nil(t, resp.Error)

	_, resp = call(t, ts, "bank_balance", map[string]string{
		"address": "settlement", "denom": "usdx.c",
	})
	require.Nil(t, resp.Error)
	require.Equal(t, "10000", resultField(t, resp, "amount"))

	httpResp, resp := call(t, ts, "invoice_get", map[string]string{"id": "inv-1"})
	require.NotNil(t, resp.Error)
	require.Equal(t, http.StatusNotFound, httpResp.StatusCode)
	require.Equal(t, codeInvoiceNotFound, resp.Error.Code)
}

func TestInvoiceErrorMapping(t *testing.T) {
	_, ts := newTestServer(t)

	httpResp, resp := call(t, ts, "invoice_add", map[string]string{
		"caller": "stranger", "id": "inv-1", "amount": "100",
	})
	require.Equal(t, http.StatusForbidden, httpResp.StatusCode)
	require.Equal(t, codeInvoiceForbidden, resp.Error.Code)
	require.Equal(t, "unauthorized", resp.Error.Message)

	_, resp = call(t, ts, "invoice_add", map[string]string{
		"caller": "merchant", "id": "inv-1", "amount": "500",
	})
	require.Nil(t, resp.Error)

	httpResp, resp = call(t, ts, "invoice_add", map[string]string{
		"caller": "merchant", "id": "inv-1", "amount": "999",
	})
	require.Equal(t, http.StatusConflict, httpResp.StatusCode)
	require.Equal(t, "duplicate_invoice", resp.Error.Message)

	_, resp = call(t, ts, "bank_fund", map[string]string{
		"address": "payer", "denom": "usdx.c", "amount": "500",
	})
	require.Nil(t, resp.Error)

	httpResp, resp = call(t, ts, "invoice_pay", map[string]interface{}{
		"caller": "payer",
		"id":     "inv-1",
		"payment": []map[string]string{
			{"denom": "usdx.c", "amount": "400"},
		},
	})
	require.Equal(t, http.StatusBadRequest, httpResp.StatusCode)
	require.Equal(t, "amount_mismatch", resp.Error.Message)

	httpResp, resp = call(t, ts, "invoice_pay", map[string]interface{}{
		"caller": "payer",
		"id":     "inv-1",
		"payment": []map[string]string{
			{"denom": "other", "amount": "500"},
		},
	})
	require.Equal(t, http.StatusBadRequest, httpResp.StatusCode)
	require.Equal(t, "invalid_denom", resp.Error.Message)

	_, resp = call(t, ts, "invoice_add", map[string]string{
		"caller": "merchant", "id": "", "amount": "0",
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvoiceInvalidParams, resp.Error.Code)
	require.NotNil(t, resp.Error.Data)
}

func TestInvoiceQueries(t *testing.T) {
	_, ts := newTestServer(t)

	_, resp := call(t, ts, "invoice_contractInfo", nil)
	require.Nil(t, resp.Error)
	require.Equal(t, "merchant", resultField(t, resp, "admin"))
	require.Equal(t, "usdx.c", resultField(t, resp, "denom"))
	require.Equal(t, "Shoe Co", resultField(t, resp, "businessName"))

	_, resp = call(t, ts, "invoice_versionInfo", nil)
	require.Nil(t, resp.Error)
	require.NotEmpty(t, resultField(t, resp, "contractName"))
	require.NotEmpty(t, resultField(t, resp, "version"))

	httpResp, resp := call(t, ts, "invoice_unknown", nil)
	require.Equal(t, http.StatusNotFound, httpResp.StatusCode)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestMutationRequiresBearerToken(t *testing.T) {
	node := core.NewNode(storage.NewMemDB())
	_, _, err := node.Bootstrap("merchant", "usdx.c", "settlement", "Shoe Co")
	require.NoError(t, err)

	server := NewServer(node)
	server.authToken = "secret"
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "invoice_add",
		"params": []interface{}{map[string]string{
			"caller": "merchant", "id": "inv-1", "amount": "100",
		}},
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	require.Equal(t, http.StatusOK, authed.StatusCode)

	// queries stay open
	_, queryResp := call(t, ts, "invoice_get", map[string]string{"id": "inv-1"})
	require.Nil(t, queryResp.Error)
}
