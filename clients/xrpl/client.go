// Package xrpl implements remit.LedgerClient over a rippled node's public
// JSON-RPC API. Signing is delegated to the node's sign-and-submit mode, so
// no key material is handled here beyond forwarding the seed in the submit
// request body.
package xrpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ShyamalV18/Migrasend-mvp/domain"
	"github.com/ShyamalV18/Migrasend-mvp/remit"
)

// Config holds connection configuration.
type Config struct {
	// Endpoint is the node's JSON-RPC URL, e.g. the XRPL testnet.
	Endpoint string
	// PollInterval is the delay between validation checks after a submit.
	// Defaults to 2s.
	PollInterval time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks JSON-RPC to a single rippled node.
type Client struct {
	endpoint     string
	pollInterval time.Duration
	http         *http.Client
}

// NewClient creates a ledger client for the configured node.
func NewClient(cfg Config) *Client {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:     cfg.Endpoint,
		pollInterval: interval,
		http:         httpClient,
	}
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// call performs one JSON-RPC round trip. Transport failures come back as
// *remit.TransportError; ledger-level errors are left to the caller, which
// knows the method's result shape.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{Method: method, Params: []interface{}{params}})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &remit.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &remit.TransportError{Err: fmt.Errorf("%s returned HTTP %d", method, resp.StatusCode)}
	}

	var env rpcEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &remit.TransportError{Err: fmt.Errorf("decode %s response: %w", method, err)}
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &remit.TransportError{Err: fmt.Errorf("decode %s result: %w", method, err)}
	}
	return nil
}

type accountInfoResult struct {
	Status      string `json:"status"`
	Error       string `json:"error"`
	AccountData struct {
		Sequence uint32 `json:"Sequence"`
		Balance  string `json:"Balance"`
	} `json:"account_data"`
}

func (c *Client) accountInfo(ctx context.Context, address string) (*accountInfoResult, error) {
	var res accountInfoResult
	params := map[string]interface{}{
		"account":      address,
		"ledger_index": "validated",
	}
	if err := c.call(ctx, "account_info", params, &res); err != nil {
		return nil, err
	}
	if res.Status != "success" {
		if res.Error == "actNotFound" {
			return nil, &remit.AccountNotFoundError{Address: address}
		}
		return nil, fmt.Errorf("account_info failed: %s", res.Error)
	}
	return &res, nil
}

// AccountSequence returns the account's sequence counter from the validated
// ledger.
func (c *Client) AccountSequence(ctx context.Context, address string) (uint32, error) {
	res, err := c.accountInfo(ctx, address)
	if err != nil {
		return 0, err
	}
	return res.AccountData.Sequence, nil
}

// NativeBalance returns the account's XRP balance in drops.
func (c *Client) NativeBalance(ctx context.Context, address string) (uint64, error) {
	res, err := c.accountInfo(ctx, address)
	if err != nil {
		return 0, err
	}
	drops, err := strconv.ParseUint(res.AccountData.Balance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance %q: %w", res.AccountData.Balance, err)
	}
	return drops, nil
}

type accountLinesResult struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Lines  []struct {
		Account  string `json:"account"`
		Currency string `json:"currency"`
		Balance  string `json:"balance"`
		Limit    string `json:"limit"`
	} `json:"lines"`
}

func (c *Client) accountLines(ctx context.Context, address string) (*accountLinesResult, error) {
	var res accountLinesResult
	params := map[string]interface{}{
		"account":      address,
		"ledger_index": "validated",
	}
	if err := c.call(ctx, "account_lines", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TrustLine reports whether account holds a line for currency/issuer.
// Transport failures map to TrustLineUnknown rather than Absent, so callers
// can tell a network blip apart from a genuinely missing line.
func (c *Client) TrustLine(ctx context.Context, account, currency, issuer string) (remit.TrustLineStatus, error) {
	res, err := c.accountLines(ctx, account)
	if err != nil {
		return remit.TrustLineUnknown, err
	}
	if res.Status != "success" {
		if res.Error == "actNotFound" {
			return remit.TrustLineAbsent, nil
		}
		return remit.TrustLineUnknown, fmt.Errorf("account_lines failed: %s", res.Error)
	}
	for _, line := range res.Lines {
		if line.Account == issuer && line.Currency == currency {
			return remit.TrustLinePresent, nil
		}
	}
	return remit.TrustLineAbsent, nil
}

// TokenBalance returns the account's issued-token balance. No matching trust
// line, or no account at all, reports zero.
func (c *Client) TokenBalance(ctx context.Context, address, currency, issuer string) (decimal.Decimal, error) {
	res, err := c.accountLines(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}
	if res.Status != "success" {
		if res.Error == "actNotFound" {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("account_lines failed: %s", res.Error)
	}
	for _, line := range res.Lines {
		if line.Account == issuer && line.Currency == currency {
			balance, err := decimal.NewFromString(line.Balance)
			if err != nil {
				return decimal.Zero, fmt.Errorf("parse line balance %q: %w", line.Balance, err)
			}
			return balance, nil
		}
	}
	return decimal.Zero, nil
}

type submitResult struct {
	Status              string `json:"status"`
	Error               string `json:"error"`
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

type txResult struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	Validated bool   `json:"validated"`
	Meta      struct {
		TransactionResult string `json:"TransactionResult"`
	} `json:"meta"`
}

// SubmitAndWait submits tx in the node's sign-and-submit mode — the node
// autofills fee, sequence and network id, signs with the supplied seed and
// applies the transaction — then blocks polling the tx method until the
// outcome lands in a validated ledger. The seed travels only in the request
// body and is never logged.
func (c *Client) SubmitAndWait(ctx context.Context, tx domain.Instruction, signer domain.Account) (*remit.SubmitResult, error) {
	var res submitResult
	params := map[string]interface{}{
		"tx_json": tx,
		"secret":  signer.Seed,
	}
	if err := c.call(ctx, "submit", params, &res); err != nil {
		return nil, err
	}
	if res.Status != "success" {
		return nil, fmt.Errorf("submit failed: %s", res.Error)
	}

	hash := res.TxJSON.Hash
	if !strings.HasPrefix(res.EngineResult, "tes") {
		return nil, &remit.SubmissionError{Hash: hash, Code: res.EngineResult}
	}

	code, err := c.waitValidated(ctx, hash)
	if err != nil {
		return nil, err
	}
	if code != remit.ResultOK {
		return nil, &remit.SubmissionError{Hash: hash, Code: code}
	}
	return &remit.SubmitResult{Hash: hash, Code: code}, nil
}

// waitValidated polls the tx method until the transaction appears in a
// validated ledger. txnNotFound is expected while the transaction is still in
// flight and is retried on the next tick.
func (c *Client) waitValidated(ctx context.Context, hash string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			var res txResult
			if err := c.call(ctx, "tx", map[string]interface{}{"transaction": hash}, &res); err != nil {
				return "", err
			}
			if res.Status != "success" {
				if res.Error == "txnNotFound" {
					continue
				}
				return "", fmt.Errorf("tx lookup failed: %s", res.Error)
			}
			if res.Validated {
				return res.Meta.TransactionResult, nil
			}
		}
	}
}
