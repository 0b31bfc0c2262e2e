package remit_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShyamalV18/Migrasend-mvp/adapters/mock"
	"github.com/ShyamalV18/Migrasend-mvp/domain"
	"github.com/ShyamalV18/Migrasend-mvp/remit"
)

// TestRemittanceEndToEnd walks the whole demo flow on the in-memory ledger:
// trust line, escrow lock, premature claim, time gate elapsing, claim,
// token payment, and the resulting balances (fees included).
func TestRemittanceEndToEnd(t *testing.T) {
	ctx := context.Background()

	sender := domain.Account{Address: "rSenderE2E", Seed: "sSenderSeed", Role: domain.RoleSender}
	receiver := domain.Account{Address: "rReceiverE2E", Seed: "sReceiverSeed", Role: domain.RoleReceiver}

	ledger := mock.NewLedger()
	ledger.FundAccount(sender.Address, 10_000_000)
	ledger.FundAccount(receiver.Address, 5_000_000)

	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	ledger.SetClock(clock)

	policy := remit.DefaultPolicy()
	wf := remit.New(ledger, sender, receiver, policy, nil)
	wf.SetClock(clock)
	sess := remit.NewSession()

	require.NoError(t, wf.EnableReceiverTrust(ctx))

	escrow, err := wf.LockCollateral(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), escrow.Sequence, "fresh account locks at its first sequence")
	sess.RecordEscrow(escrow.Owner, escrow.Sequence)

	amount := decimal.RequireFromString("50.00")

	// Before the time gate: the ledger rejects the finish.
	err = wf.Claim(ctx, sess, escrow.Owner, escrow.Sequence, amount)
	require.Error(t, err)
	var sub *remit.SubmissionError
	require.ErrorAs(t, err, &sub)
	assert.Equal(t, "tecNO_PERMISSION", sub.Code)
	assert.False(t, sess.Released(escrow.Owner, escrow.Sequence))

	// Past the gate the claim goes through: escrow released, token paid.
	now = now.Add(policy.ReleaseDelay + time.Second)
	require.NoError(t, wf.Claim(ctx, sess, escrow.Owner, escrow.Sequence, amount))

	sheet, err := wf.Balances(ctx)
	require.NoError(t, err)

	// Sender: -1,000,000 escrow, -10 create fee, -10 payment fee.
	assert.Equal(t, uint64(8_999_980), sheet.SenderDrops)
	// Receiver: -10 trust fee, -10 rejected finish fee, +1,000,000 escrow,
	// -10 finish fee.
	assert.Equal(t, uint64(5_999_970), sheet.ReceiverDrops)
	assert.Equal(t, "50.00", sheet.ReceiverToken.StringFixed(2))

	// The escrow is gone; a second release must not succeed.
	err = wf.ReleaseCollateral(ctx, escrow.Owner, escrow.Sequence)
	require.Error(t, err)
	require.ErrorAs(t, err, &sub)
	assert.Equal(t, "tecNO_TARGET", sub.Code)
}

func TestTrustLinePrecheckIsIdempotent(t *testing.T) {
	ctx := context.Background()

	sender := domain.Account{Address: "rSenderIdem", Seed: "sSenderSeed", Role: domain.RoleSender}
	receiver := domain.Account{Address: "rReceiverIdem", Seed: "sReceiverSeed", Role: domain.RoleReceiver}

	ledger := mock.NewLedger()
	ledger.FundAccount(sender.Address, 10_000_000)
	ledger.FundAccount(receiver.Address, 5_000_000)

	wf := remit.New(ledger, sender, receiver, remit.DefaultPolicy(), nil)

	require.NoError(t, wf.EnableReceiverTrust(ctx))
	afterFirst, err := ledger.NativeBalance(ctx, receiver.Address)
	require.NoError(t, err)

	// Second enable sees the existing line and submits nothing: no fee.
	require.NoError(t, wf.EnableReceiverTrust(ctx))
	afterSecond, err := ledger.NativeBalance(ctx, receiver.Address)
	require.NoError(t, err)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestBalancesWithoutTrustLineReportZeroToken(t *testing.T) {
	ctx := context.Background()

	sender := domain.Account{Address: "rSenderZero", Seed: "sSenderSeed", Role: domain.RoleSender}
	receiver := domain.Account{Address: "rReceiverZero", Seed: "sReceiverSeed", Role: domain.RoleReceiver}

	ledger := mock.NewLedger()
	ledger.FundAccount(sender.Address, 2_000_000)
	ledger.FundAccount(receiver.Address, 2_000_000)

	wf := remit.New(ledger, sender, receiver, remit.DefaultPolicy(), nil)

	sheet, err := wf.Balances(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.00", sheet.ReceiverToken.StringFixed(2), "no trust line reads as a zero balance, not an error")
}

func TestLedgerOutageSurfacesAsUnknownNotAbsent(t *testing.T) {
	ctx := context.Background()

	sender := domain.Account{Address: "rSenderDown", Seed: "sSenderSeed", Role: domain.RoleSender}
	receiver := domain.Account{Address: "rReceiverDown", Seed: "sReceiverSeed", Role: domain.RoleReceiver}

	ledger := mock.NewLedger()
	ledger.FundAccount(sender.Address, 2_000_000)
	ledger.FundAccount(receiver.Address, 2_000_000)
	ledger.SetDown(true)

	wf := remit.New(ledger, sender, receiver, remit.DefaultPolicy(), nil)

	err := wf.TransferToken(ctx, decimal.RequireFromString("50"))
	require.ErrorIs(t, err, remit.ErrTrustLineUnknown)

	escrow, err := wf.LockCollateral(ctx)
	require.Error(t, err)
	assert.Nil(t, escrow)
	var transport *remit.TransportError
	require.ErrorAs(t, err, &transport)
}
