package remit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ShyamalV18/Migrasend-mvp/domain"
)

// Policy fixes the demo's remittance parameters: the issued currency, the
// trust line limit, the collateral locked per remittance, and the escrow time
// gate. ReleaseDelay must be at least the wall-clock gap expected between
// locking and claiming, or every release fails its time gate.
type Policy struct {
	Currency        string
	TrustLimit      decimal.Decimal
	CollateralDrops uint64
	ReleaseDelay    time.Duration
}

// DefaultPolicy matches the MigraSend demo: USD issued by the sender, a 10000
// trust limit, 1 XRP of collateral, 10 seconds until the escrow is claimable.
func DefaultPolicy() Policy {
	return Policy{
		Currency:        "USD",
		TrustLimit:      decimal.NewFromInt(10000),
		CollateralDrops: 1_000_000,
		ReleaseDelay:    10 * time.Second,
	}
}

// Workflow drives one remittance: the sender locks XRP collateral in a
// time-gated escrow, the receiver releases it and is paid the issued token.
// Each step is invoked independently by the presentation layer; there are no
// automatic transitions and no retries beyond the trust line precheck. The
// sender account doubles as the token issuer.
type Workflow struct {
	ledger   LedgerClient
	sender   domain.Account
	receiver domain.Account
	policy   Policy
	clock    func() time.Time
	log      *slog.Logger
}

func New(ledger LedgerClient, sender, receiver domain.Account, policy Policy, log *slog.Logger) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{
		ledger:   ledger,
		sender:   sender,
		receiver: receiver,
		policy:   policy,
		clock:    time.Now,
		log:      log,
	}
}

// SetClock overrides the time source. Used by tests and demos to move the
// escrow time gate.
func (w *Workflow) SetClock(clock func() time.Time) {
	w.clock = clock
}

// EnableReceiverTrust makes the receiver able to hold the issued token. The
// trust-set is idempotent on the ledger, but a line that already exists is
// detected first and the submission skipped to avoid a redundant fee. When
// the precheck fails in transit the trust-set is submitted anyway — it is
// harmless if the line exists, and the fee is the cost of not knowing.
func (w *Workflow) EnableReceiverTrust(ctx context.Context) error {
	status, err := w.ledger.TrustLine(ctx, w.receiver.Address, w.policy.Currency, w.sender.Address)
	switch status {
	case TrustLinePresent:
		w.log.Info("trust line already present, skipping submission",
			"receiver", w.receiver.Address,
			"currency", w.policy.Currency,
		)
		return nil
	case TrustLineUnknown:
		w.log.Warn("trust line precheck failed, submitting trust-set anyway", "err", err)
	}

	trust := domain.NewTrustSet(w.receiver.Address, domain.IssuedAmount{
		Currency: w.policy.Currency,
		Issuer:   w.sender.Address,
		Value:    w.policy.TrustLimit.String(),
	})

	res, err := w.ledger.SubmitAndWait(ctx, trust, w.receiver)
	if err != nil {
		return fmt.Errorf("enable receiver trust: %w", err)
	}

	w.log.Info("receiver enabled for issued token",
		"currency", w.policy.Currency,
		"limit", w.policy.TrustLimit,
		"tx", res.Hash,
	)
	return nil
}

// LockCollateral creates the time-gated escrow of the policy's collateral
// amount from sender to receiver and returns the escrow, whose Sequence is
// the handle the caller must keep for the later release. On any failure no
// usable sequence number is returned and the caller must not proceed to
// claim.
func (w *Workflow) LockCollateral(ctx context.Context) (*domain.Escrow, error) {
	// The ledger assigns the created escrow's sequence equal to the sender's
	// account sequence at submission time, so the value has to be captured
	// before the transaction is built and trusted afterwards — it cannot be
	// re-derived once the transaction is in.
	seq, err := w.ledger.AccountSequence(ctx, w.sender.Address)
	if err != nil {
		return nil, fmt.Errorf("lock collateral: %w", err)
	}

	now := w.clock()
	finishAfter := now.Add(w.policy.ReleaseDelay)

	create := domain.NewEscrowCreate(w.sender.Address, w.receiver.Address, w.policy.CollateralDrops, finishAfter, seq)
	res, err := w.ledger.SubmitAndWait(ctx, create, w.sender)
	if err != nil {
		return nil, fmt.Errorf("lock collateral: %w", err)
	}

	w.log.Info("collateral escrowed",
		"drops", w.policy.CollateralDrops,
		"sequence", seq,
		"finish_after", finishAfter,
		"tx", res.Hash,
	)

	return &domain.Escrow{
		Owner:       w.sender.Address,
		Destination: w.receiver.Address,
		AmountDrops: w.policy.CollateralDrops,
		FinishAfter: finishAfter,
		Sequence:    seq,
		Status:      domain.EscrowStatusHeld,
		CreatedAt:   now,
	}, nil
}

// ReleaseCollateral finishes the escrow identified by (owner, sequence) as
// the receiver. It succeeds only if the ledger's time is at or past the
// escrow's release instant and the escrow has not been consumed. A ledger
// rejection is reported with "may not be claimable yet" as the most likely
// cause; the code on the wrapped *SubmissionError tells the two cases apart.
func (w *Workflow) ReleaseCollateral(ctx context.Context, owner string, sequence uint32) error {
	finish := domain.NewEscrowFinish(w.receiver.Address, owner, sequence)
	res, err := w.ledger.SubmitAndWait(ctx, finish, w.receiver)
	if err != nil {
		var sub *SubmissionError
		if errors.As(err, &sub) {
			return fmt.Errorf("escrow finish rejected (%s); the escrow may not be claimable yet: %w", sub.Code, err)
		}
		return fmt.Errorf("release collateral: %w", err)
	}

	w.log.Info("escrow released",
		"owner", owner,
		"sequence", sequence,
		"tx", res.Hash,
	)
	return nil
}

// TransferToken pays amount of the issued token from the sender (issuer) to
// the receiver. The trust line precheck fails fast with guidance when the
// line is absent, and refuses with ErrTrustLineUnknown when the precheck
// itself failed, so the caller can retry instead of being told the line is
// missing.
func (w *Workflow) TransferToken(ctx context.Context, amount decimal.Decimal) error {
	status, err := w.ledger.TrustLine(ctx, w.receiver.Address, w.policy.Currency, w.sender.Address)
	switch status {
	case TrustLineUnknown:
		return fmt.Errorf("transfer token: %w: %v", ErrTrustLineUnknown, err)
	case TrustLineAbsent:
		return &PreconditionError{
			Reason: fmt.Sprintf("receiver holds no %s trust line; enable the receiver wallet first", w.policy.Currency),
		}
	}

	pay := domain.NewPayment(w.sender.Address, w.receiver.Address, domain.IssuedAmount{
		Currency: w.policy.Currency,
		Issuer:   w.sender.Address,
		Value:    amount.String(),
	})

	res, err := w.ledger.SubmitAndWait(ctx, pay, w.sender)
	if err != nil {
		return fmt.Errorf("transfer token: %w", err)
	}

	w.log.Info("issued token transferred",
		"currency", w.policy.Currency,
		"value", amount,
		"tx", res.Hash,
	)
	return nil
}

// Claim runs the receiver's two-phase claim: release the escrow, then collect
// the token payment. The phases are two independent ledger transactions, not
// a transactional unit, so partial completion is expected: if the payment
// fails after the release succeeded, the session records the release and a
// re-entered Claim retries only the payment.
func (w *Workflow) Claim(ctx context.Context, sess *Session, owner string, sequence uint32, amount decimal.Decimal) error {
	if sess.Released(owner, sequence) {
		w.log.Info("escrow already released in this session, retrying payment only",
			"owner", owner,
			"sequence", sequence,
		)
	} else {
		if err := w.ReleaseCollateral(ctx, owner, sequence); err != nil {
			return err
		}
		sess.MarkReleased(owner, sequence)
	}

	if err := w.TransferToken(ctx, amount); err != nil {
		return fmt.Errorf("escrow released but payment incomplete, re-run claim to retry the payment: %w", err)
	}
	return nil
}

// BalanceSheet is the read-only view shown on the balances panel.
type BalanceSheet struct {
	SenderDrops   uint64
	ReceiverDrops uint64
	ReceiverToken decimal.Decimal
}

// Balances reads both accounts' XRP balances and the receiver's token
// balance. A receiver without a trust line reports a zero token balance, not
// an error.
func (w *Workflow) Balances(ctx context.Context) (*BalanceSheet, error) {
	senderDrops, err := w.ledger.NativeBalance(ctx, w.sender.Address)
	if err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}
	receiverDrops, err := w.ledger.NativeBalance(ctx, w.receiver.Address)
	if err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}
	token, err := w.ledger.TokenBalance(ctx, w.receiver.Address, w.policy.Currency, w.sender.Address)
	if err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}
	return &BalanceSheet{
		SenderDrops:   senderDrops,
		ReceiverDrops: receiverDrops,
		ReceiverToken: token,
	}, nil
}
