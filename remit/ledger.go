package remit

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ShyamalV18/Migrasend-mvp/domain"
)

// ResultOK is the engine result code of a successfully applied transaction.
const ResultOK = "tesSUCCESS"

// TrustLineStatus is the tri-state outcome of a trust line query. Unknown
// means the query itself failed in transit — presence could not be
// determined — and is deliberately distinct from Absent so callers can retry
// instead of treating a network blip as a missing line.
type TrustLineStatus int

const (
	TrustLineUnknown TrustLineStatus = iota
	TrustLineAbsent
	TrustLinePresent
)

func (s TrustLineStatus) String() string {
	switch s {
	case TrustLineAbsent:
		return "ABSENT"
	case TrustLinePresent:
		return "PRESENT"
	default:
		return "UNKNOWN"
	}
}

// SubmitResult reports the final, validated outcome of a submitted
// transaction.
type SubmitResult struct {
	Hash string
	Code string
}

func (r *SubmitResult) OK() bool { return r.Code == ResultOK }

// LedgerClient is the workflow's only view of the XRP Ledger. The real
// implementation wraps the node's JSON-RPC API (clients/xrpl); tests and
// demos use the in-memory ledger (adapters/mock). The workflow talks ONLY to
// this interface — never to a node directly.
type LedgerClient interface {
	// AccountSequence returns the account's current sequence counter from the
	// validated ledger state.
	AccountSequence(ctx context.Context, address string) (uint32, error)

	// TrustLine reports whether account holds a trust line for currency
	// issued by issuer. On transport failure it returns TrustLineUnknown
	// together with the underlying error.
	TrustLine(ctx context.Context, account, currency, issuer string) (TrustLineStatus, error)

	// SubmitAndWait autofills the ledger-required fields the caller left
	// unset, signs with the signer's key material, submits, and blocks until
	// the ledger reports a final outcome. A final code other than tesSUCCESS
	// is returned as a *SubmissionError.
	SubmitAndWait(ctx context.Context, tx domain.Instruction, signer domain.Account) (*SubmitResult, error)

	// NativeBalance returns the account's XRP balance in drops.
	NativeBalance(ctx context.Context, address string) (uint64, error)

	// TokenBalance returns the account's balance of the issued token. An
	// account with no matching trust line reports zero, not an error.
	TokenBalance(ctx context.Context, address, currency, issuer string) (decimal.Decimal, error)
}
