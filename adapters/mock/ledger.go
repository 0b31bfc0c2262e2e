package mock

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ShyamalV18/Migrasend-mvp/domain"
	"github.com/ShyamalV18/Migrasend-mvp/remit"
)

// Ledger implements remit.LedgerClient in memory for tests and demos. It
// reproduces the ledger rules the workflow depends on: per-account sequence
// counters, the escrow time gate, one release per (owner, sequence), and
// trust line gating of issued-token payments. The clock is injectable so the
// time gate can be moved in tests.
type Ledger struct {
	mu       sync.RWMutex
	now      func() time.Time
	feeDrops uint64
	txCount  int
	down     bool
	accounts map[string]*account
	escrows  map[escrowKey]*domain.Escrow
}

type account struct {
	sequence uint32
	drops    uint64
	lines    map[lineKey]*domain.TrustLine
}

type lineKey struct {
	currency string
	issuer   string
}

type escrowKey struct {
	owner    string
	sequence uint32
}

func NewLedger() *Ledger {
	return &Ledger{
		now:      time.Now,
		feeDrops: 10,
		accounts: make(map[string]*account),
		escrows:  make(map[escrowKey]*domain.Escrow),
	}
}

// SetClock overrides the ledger's time source.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// SetDown simulates an unreachable RPC endpoint; every call fails with a
// transport error until it is cleared.
func (l *Ledger) SetDown(down bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.down = down
}

// FundAccount creates or tops up an account, like the testnet faucet. A fresh
// account starts at sequence 1.
func (l *Ledger) FundAccount(address string, drops uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct := l.accounts[address]
	if acct == nil {
		acct = &account{sequence: 1, lines: make(map[lineKey]*domain.TrustLine)}
		l.accounts[address] = acct
	}
	acct.drops += drops
	slog.Info("🏦 [MockLedger] Account funded", "address", address, "drops", acct.drops)
}

func (l *Ledger) transportErr() error {
	return &remit.TransportError{Err: fmt.Errorf("mock endpoint down")}
}

// AccountSequence returns the account's current sequence counter.
func (l *Ledger) AccountSequence(ctx context.Context, address string) (uint32, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.down {
		return 0, l.transportErr()
	}
	acct, ok := l.accounts[address]
	if !ok {
		return 0, &remit.AccountNotFoundError{Address: address}
	}
	return acct.sequence, nil
}

// TrustLine reports line presence; with the endpoint down it returns
// TrustLineUnknown plus the transport error, like the real client.
func (l *Ledger) TrustLine(ctx context.Context, address, currency, issuer string) (remit.TrustLineStatus, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.down {
		return remit.TrustLineUnknown, l.transportErr()
	}
	acct, ok := l.accounts[address]
	if !ok {
		return remit.TrustLineAbsent, nil
	}
	if _, ok := acct.lines[lineKey{currency: currency, issuer: issuer}]; ok {
		return remit.TrustLinePresent, nil
	}
	return remit.TrustLineAbsent, nil
}

// NativeBalance returns the account's XRP balance in drops.
func (l *Ledger) NativeBalance(ctx context.Context, address string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.down {
		return 0, l.transportErr()
	}
	acct, ok := l.accounts[address]
	if !ok {
		return 0, &remit.AccountNotFoundError{Address: address}
	}
	return acct.drops, nil
}

// TokenBalance returns the issued-token balance; no line means zero.
func (l *Ledger) TokenBalance(ctx context.Context, address, currency, issuer string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.down {
		return decimal.Zero, l.transportErr()
	}
	acct, ok := l.accounts[address]
	if !ok {
		return decimal.Zero, nil
	}
	line, ok := acct.lines[lineKey{currency: currency, issuer: issuer}]
	if !ok {
		return decimal.Zero, nil
	}
	return line.Balance, nil
}

// SubmitAndWait applies the instruction against the in-memory state,
// returning immediately — the mock has no consensus delay. Result codes match
// the ones the real ledger reports for the same conditions.
func (l *Ledger) SubmitAndWait(ctx context.Context, tx domain.Instruction, signer domain.Account) (*remit.SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.down {
		return nil, l.transportErr()
	}

	l.txCount++
	hash := fmt.Sprintf("MOCK%012X", l.txCount)

	code := l.apply(tx)
	if code != remit.ResultOK {
		slog.Info("🏦 [MockLedger] Transaction rejected", "type", tx.TxType(), "code", code)
		return nil, &remit.SubmissionError{Hash: hash, Code: code}
	}

	slog.Info("🏦 [MockLedger] Transaction applied", "type", tx.TxType(), "hash", hash)
	return &remit.SubmitResult{Hash: hash, Code: code}, nil
}

func (l *Ledger) apply(tx domain.Instruction) string {
	switch tx := tx.(type) {
	case *domain.TrustSet:
		acct, ok := l.accounts[tx.Account]
		if !ok {
			return "terNO_ACCOUNT"
		}
		limit, err := decimal.NewFromString(tx.LimitAmount.Value)
		if err != nil {
			return "temBAD_LIMIT"
		}
		key := lineKey{currency: tx.LimitAmount.Currency, issuer: tx.LimitAmount.Issuer}
		line, exists := acct.lines[key]
		if !exists {
			line = &domain.TrustLine{
				Account:  tx.Account,
				Currency: tx.LimitAmount.Currency,
				Issuer:   tx.LimitAmount.Issuer,
			}
			acct.lines[key] = line
		}
		line.Limit = limit
		l.charge(acct)
		return remit.ResultOK

	case *domain.EscrowCreate:
		acct, ok := l.accounts[tx.Account]
		if !ok {
			return "terNO_ACCOUNT"
		}
		if tx.Sequence != acct.sequence {
			return "tefPAST_SEQ"
		}
		amount, err := parseDrops(tx.Amount)
		if err != nil {
			return "temBAD_AMOUNT"
		}
		if acct.drops < amount+l.feeDrops {
			return "tecUNFUNDED"
		}
		acct.drops -= amount
		l.escrows[escrowKey{owner: tx.Account, sequence: tx.Sequence}] = &domain.Escrow{
			Owner:       tx.Account,
			Destination: tx.Destination,
			AmountDrops: amount,
			FinishAfter: domain.FromRippleTime(tx.FinishAfter),
			Sequence:    tx.Sequence,
			Status:      domain.EscrowStatusHeld,
			CreatedAt:   l.now(),
		}
		l.charge(acct)
		return remit.ResultOK

	case *domain.EscrowFinish:
		acct, ok := l.accounts[tx.Account]
		if !ok {
			return "terNO_ACCOUNT"
		}
		key := escrowKey{owner: tx.Owner, sequence: tx.OfferSequence}
		escrow, ok := l.escrows[key]
		if !ok || escrow.Status == domain.EscrowStatusReleased {
			return "tecNO_TARGET"
		}
		if l.now().Before(escrow.FinishAfter) {
			l.charge(acct)
			return "tecNO_PERMISSION"
		}
		dest, ok := l.accounts[escrow.Destination]
		if !ok {
			return "tecNO_DST"
		}
		dest.drops += escrow.AmountDrops
		escrow.Status = domain.EscrowStatusReleased
		l.charge(acct)
		return remit.ResultOK

	case *domain.Payment:
		acct, ok := l.accounts[tx.Account]
		if !ok {
			return "terNO_ACCOUNT"
		}
		dest, ok := l.accounts[tx.Destination]
		if !ok {
			return "tecNO_DST"
		}
		value, err := decimal.NewFromString(tx.Amount.Value)
		if err != nil {
			return "temBAD_AMOUNT"
		}
		key := lineKey{currency: tx.Amount.Currency, issuer: tx.Amount.Issuer}
		line, ok := dest.lines[key]
		if !ok {
			return "tecPATH_DRY"
		}
		if line.Balance.Add(value).GreaterThan(line.Limit) {
			return "tecPATH_DRY"
		}
		line.Balance = line.Balance.Add(value)
		l.charge(acct)
		return remit.ResultOK

	default:
		return "temUNKNOWN"
	}
}

// charge burns the network fee and bumps the signing account's sequence, as
// every applied transaction does on the real ledger.
func (l *Ledger) charge(acct *account) {
	if acct.drops >= l.feeDrops {
		acct.drops -= l.feeDrops
	} else {
		acct.drops = 0
	}
	acct.sequence++
}

func parseDrops(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
