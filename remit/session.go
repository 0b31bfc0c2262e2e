package remit

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Session carries the state one remittance attempt threads between steps: the
// escrow handle recorded at lock time, whether the claim's release phase has
// already completed, and the pending token amount. It is scoped to a single
// interactive session and is the only shared mutable resource; every access
// goes through the mutex because the HTTP front end may serve steps
// concurrently.
type Session struct {
	mu             sync.Mutex
	escrowOwner    string
	escrowSeq      uint32
	haveEscrow     bool
	releasedOwner  string
	releasedSeq    uint32
	escrowReleased bool
	pendingAmount  decimal.Decimal
}

func NewSession() *Session {
	return &Session{}
}

// RecordEscrow stores the handle of a freshly created escrow. Called only
// after LockCollateral fully succeeds — a failed lock records nothing.
func (s *Session) RecordEscrow(owner string, sequence uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.escrowOwner = owner
	s.escrowSeq = sequence
	s.haveEscrow = true
	s.escrowReleased = false
}

// Escrow returns the recorded escrow handle, if any.
func (s *Session) Escrow() (owner string, sequence uint32, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.escrowOwner, s.escrowSeq, s.haveEscrow
}

// MarkReleased records that the escrow identified by (owner, sequence) has
// been released, so a re-entered claim skips straight to the payment.
func (s *Session) MarkReleased(owner string, sequence uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releasedOwner = owner
	s.releasedSeq = sequence
	s.escrowReleased = true
}

// Released reports whether this session already released the escrow
// identified by (owner, sequence).
func (s *Session) Released(owner string, sequence uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.escrowReleased && s.releasedOwner == owner && s.releasedSeq == sequence
}

// SetPendingAmount remembers the token amount entered on the send panel so
// the claim panel can default to it.
func (s *Session) SetPendingAmount(amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingAmount = amount
}

// PendingAmount returns the remembered token amount.
func (s *Session) PendingAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingAmount
}
