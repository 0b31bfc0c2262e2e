package domain

import (
	"strconv"
	"time"
)

// rippleEpochOffset is the number of seconds between the Unix epoch and the
// XRP Ledger epoch (2000-01-01T00:00:00Z).
const rippleEpochOffset = 946684800

// RippleTime converts t to seconds since the XRP Ledger epoch, the unit the
// ledger uses for escrow time gates.
func RippleTime(t time.Time) uint32 {
	return uint32(t.Unix() - rippleEpochOffset)
}

// FromRippleTime converts seconds since the XRP Ledger epoch back to a
// time.Time.
func FromRippleTime(seconds uint32) time.Time {
	return time.Unix(int64(seconds)+rippleEpochOffset, 0)
}

// Instruction is a ledger transaction in the XRPL public JSON format. Field
// names follow the wire format exactly; fields left unset (Fee, NetworkID,
// Sequence where not required) are autofilled by the node during
// sign-and-submit.
type Instruction interface {
	TxType() string
}

// IssuedAmount identifies a quantity of an issued token: currency code plus
// the issuing account plus a decimal value.
type IssuedAmount struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Value    string `json:"value"`
}

// TrustSet authorizes Account to hold LimitAmount.Issuer's token up to
// LimitAmount.Value. Re-submitting with the same limit is a no-op on the
// ledger.
type TrustSet struct {
	TransactionType string       `json:"TransactionType"`
	Account         string       `json:"Account"`
	LimitAmount     IssuedAmount `json:"LimitAmount"`
}

func NewTrustSet(account string, limit IssuedAmount) *TrustSet {
	return &TrustSet{
		TransactionType: "TrustSet",
		Account:         account,
		LimitAmount:     limit,
	}
}

func (t *TrustSet) TxType() string { return t.TransactionType }

// EscrowCreate locks Amount drops from Account until FinishAfter. Sequence is
// set explicitly because the created escrow is addressed by it afterwards; the
// value must match the account's current sequence or the ledger rejects the
// transaction.
type EscrowCreate struct {
	TransactionType string `json:"TransactionType"`
	Account         string `json:"Account"`
	Destination     string `json:"Destination"`
	Amount          string `json:"Amount"`
	FinishAfter     uint32 `json:"FinishAfter"`
	Sequence        uint32 `json:"Sequence"`
}

func NewEscrowCreate(account, destination string, drops uint64, finishAfter time.Time, sequence uint32) *EscrowCreate {
	return &EscrowCreate{
		TransactionType: "EscrowCreate",
		Account:         account,
		Destination:     destination,
		Amount:          strconv.FormatUint(drops, 10),
		FinishAfter:     RippleTime(finishAfter),
		Sequence:        sequence,
	}
}

func (e *EscrowCreate) TxType() string { return e.TransactionType }

// EscrowFinish releases the escrow identified by (Owner, OfferSequence) to its
// destination. The ledger accepts it only once per escrow and only after the
// escrow's FinishAfter has passed.
type EscrowFinish struct {
	TransactionType string `json:"TransactionType"`
	Account         string `json:"Account"`
	Owner           string `json:"Owner"`
	OfferSequence   uint32 `json:"OfferSequence"`
}

func NewEscrowFinish(account, owner string, offerSequence uint32) *EscrowFinish {
	return &EscrowFinish{
		TransactionType: "EscrowFinish",
		Account:         account,
		Owner:           owner,
		OfferSequence:   offerSequence,
	}
}

func (e *EscrowFinish) TxType() string { return e.TransactionType }

// Payment moves an issued-token Amount from Account to Destination. The
// destination must hold a trust line for the token with room for the amount.
type Payment struct {
	TransactionType string       `json:"TransactionType"`
	Account         string       `json:"Account"`
	Destination     string       `json:"Destination"`
	Amount          IssuedAmount `json:"Amount"`
}

func NewPayment(account, destination string, amount IssuedAmount) *Payment {
	return &Payment{
		TransactionType: "Payment",
		Account:         account,
		Destination:     destination,
		Amount:          amount,
	}
}

func (p *Payment) TxType() string { return p.TransactionType }
