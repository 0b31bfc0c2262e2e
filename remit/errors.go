package remit

import (
	"errors"
	"fmt"
)

// ErrTrustLineUnknown marks a trust line query that failed in transit. The
// line may or may not exist; the caller should retry rather than assume it is
// absent.
var ErrTrustLineUnknown = errors.New("trust line status unknown")

// TransportError wraps a failure to reach the ledger RPC endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ledger unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AccountNotFoundError reports an address with no entry in the validated
// ledger.
type AccountNotFoundError struct {
	Address string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found on ledger", e.Address)
}

// SubmissionError reports a transaction whose final engine result was not
// tesSUCCESS. Code carries the ledger's result code, e.g. tecNO_PERMISSION
// for an escrow finish before its time gate, or tecNO_TARGET for an escrow
// that was already consumed.
type SubmissionError struct {
	Hash string
	Code string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction rejected by ledger: %s", e.Code)
}

// PreconditionError reports an operation refused locally, before anything was
// submitted to the ledger.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }
