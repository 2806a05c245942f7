package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

var rpcEndpoint = defaultRPCEndpoint() // Defaults to localhost, can be overridden via RPC_URL or --rpc flag
var rpcAuthToken = os.Getenv("INVOICE_RPC_TOKEN")

func defaultRPCEndpoint() string {
	if url := strings.TrimSpace(os.Getenv("RPC_URL")); url != "" {
		return url
	}
	return "http://127.0.0.1:8645"
}

func main() {
	args := os.Args[1:]
	var err error
	args, err = applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(args) < 1 {
		printUsage()
		return
	}

	command := args[0]
	switch command {
	case "add":
		if len(args) < 3 {
			fmt.Println("Error: Please provide a caller and an amount.")
			printUsage()
			return
		}
		addInvoice(args[1], args[2], args[3:])
	case "pay":
		if len(args) < 4 {
			fmt.Println("Error: Please provide a caller, an invoice id and an amount.")
			printUsage()
			return
		}
		payInvoice(args[1], args[2], args[3], args[4:])
	case "cancel":
		if len(args) < 3 {
			fmt.Println("Error: Please provide a caller and an invoice id.")
			printUsage()
			return
		}
		cancelInvoice(args[1], args[2])
	case "get":
		if len(args) < 2 {
			fmt.Println("Error: Please provide an invoice id.")
			printUsage()
			return
		}
		getInvoice(args[1])
	case "info":
		contractInfo()
	case "version":
		versionInfo()
	case "events":
		listEvents()
	case "balance":
		if len(args) < 3 {
			fmt.Println("Error: Please provide an address and a denom.")
			printUsage()
			return
		}
		getBalance(args[1], args[2])
	case "fund":
		if len(args) < 4 {
			fmt.Println("Error: Please provide an address, a denom and an amount.")
			printUsage()
			return
		}
		fundAccount(args[1], args[2], args[3])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func applyGlobalFlags(args []string) ([]string, error) {
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--rpc":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--rpc requires a value")
			}
			i++
			rpcEndpoint = args[i]
		case strings.HasPrefix(arg, "--rpc="):
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
		default:
			remaining = append(remaining, arg)
		}
	}
	if strings.TrimSpace(rpcEndpoint) == "" {
		return nil, fmt.Errorf("rpc endpoint must not be empty")
	}
	return remaining, nil
}

func printUsage() {
	fmt.Println(`Usage: invoice-cli [--rpc <url>] <command> [args]

Commands:
  add <caller> <amount> [id] [description]   Record a new invoice (id defaults to a fresh UUID)
  pay <caller> <id> <amount> [denom]         Settle an invoice with an attached payment
  cancel <caller> <id>                       Withdraw an unpaid invoice
  get <id>                                   Show an open invoice
  info                                       Show the contract configuration
  version                                    Show the contract name and version
  events                                     Show recent contract events
  balance <address> <denom>                  Show an account balance
  fund <address> <denom> <amount>            Credit an account (dev faucet)

Environment:
  RPC_URL            Overrides the default RPC endpoint
  INVOICE_RPC_TOKEN  Bearer token for mutating calls`)
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func callRPC(method string, params interface{}) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		payload["params"] = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, rpcEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if rpcAuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+rpcAuthToken)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	decoded := &rpcResponse{}
	if err := json.NewDecoder(resp.Body).Decode(decoded); err != nil {
		return nil, err
	}
	if decoded.Error != nil {
		detail := ""
		if len(decoded.Error.Data) > 0 {
			detail = " " + string(decoded.Error.Data)
		}
		return nil, fmt.Errorf("%s (code %d)%s", decoded.Error.Message, decoded.Error.Code, detail)
	}
	return decoded.Result, nil
}

func printResult(result json.RawMessage) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(pretty.String())
}

func run(method string, params interface{}) {
	result, err := callRPC(method, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printResult(result)
}

func addInvoice(caller, amount string, rest []string) {
	id := ""
	description := ""
	if len(rest) > 0 {
		id = rest[0]
	}
	if len(rest) > 1 {
		description = strings.Join(rest[1:], " ")
	}
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
		fmt.Printf("Generated invoice id: %s\n", id)
	}
	run("invoice_add", map[string]string{
		"caller":      caller,
		"id":          id,
		"amount":      amount,
		"description": description,
	})
}

func payInvoice(caller, id, amount string, rest []string) {
	denom := ""
	if len(rest) > 0 {
		denom = rest[0]
	}
	if strings.TrimSpace(denom) == "" {
		result, err := callRPC("invoice_contractInfo", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		var info struct {
			Denom string `json:"denom"`
		}
		if err := json.Unmarshal(result, &info); err != nil || info.Denom == "" {
			fmt.Fprintln(os.Stderr, "Error: could not resolve contract denom; pass it explicitly")
			os.Exit(1)
		}
		denom = info.Denom
	}
	run("invoice_pay", map[string]interface{}{
		"caller": caller,
		"id":     id,
		"payment": []map[string]string{
			{"denom": denom, "amount": amount},
		},
	})
}

func cancelInvoice(caller, id string) {
	run("invoice_cancel", map[string]string{"caller": caller, "id": id})
}

func getInvoice(id string) {
	run("invoice_get", map[string]string{"id": id})
}

func contractInfo() {
	run("invoice_contractInfo", nil)
}

func versionInfo() {
	run("invoice_versionInfo", nil)
}

func listEvents() {
	run("invoice_events", nil)
}

func getBalance(address, denom string) {
	run("bank_balance", map[string]string{"address": address, "denom": denom})
}

func fundAccount(address, denom, amount string) {
	run("bank_fund", map[string]string{"address": address, "denom": denom, "amount": amount})
}
