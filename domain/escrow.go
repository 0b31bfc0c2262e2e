package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "HELD"
	EscrowStatusReleased EscrowStatus = "RELEASED"
)

// Escrow represents XRP collateral locked on the ledger until FinishAfter.
// Sequence is assigned by the ledger at creation (equal to the owner's account
// sequence at submission time) and is the only handle by which the escrow can
// later be released. It must be kept by the caller between lock and claim.
type Escrow struct {
	Owner       string
	Destination string
	AmountDrops uint64
	FinishAfter time.Time
	Sequence    uint32
	Status      EscrowStatus
	CreatedAt   time.Time
}

// TrustLine is the receiver-side authorization to hold an issuer's token.
// The receiver can hold at most Limit of the token; Balance is the current
// holding.
type TrustLine struct {
	Account  string
	Currency string
	Issuer   string
	Limit    decimal.Decimal
	Balance  decimal.Decimal
}
