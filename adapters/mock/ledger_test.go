package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShyamalV18/Migrasend-mvp/domain"
	"github.com/ShyamalV18/Migrasend-mvp/remit"
)

func TestEscrowCreateRejectsStaleSequence(t *testing.T) {
	ledger := NewLedger()
	ledger.FundAccount("rOwner", 5_000_000)
	signer := domain.Account{Address: "rOwner", Seed: "sSeed", Role: domain.RoleSender}

	// Account sequence is 1; claiming to create at 9 must fail like the real
	// ledger's sequence check.
	create := domain.NewEscrowCreate("rOwner", "rDest", 1_000_000, time.Now(), 9)
	_, err := ledger.SubmitAndWait(context.Background(), create, signer)

	var sub *remit.SubmissionError
	require.ErrorAs(t, err, &sub)
	assert.Equal(t, "tefPAST_SEQ", sub.Code)
}

func TestEscrowCreateRejectsUnfundedAmount(t *testing.T) {
	ledger := NewLedger()
	ledger.FundAccount("rOwner", 500_000)
	signer := domain.Account{Address: "rOwner", Seed: "sSeed", Role: domain.RoleSender}

	create := domain.NewEscrowCreate("rOwner", "rDest", 1_000_000, time.Now(), 1)
	_, err := ledger.SubmitAndWait(context.Background(), create, signer)

	var sub *remit.SubmissionError
	require.ErrorAs(t, err, &sub)
	assert.Equal(t, "tecUNFUNDED", sub.Code)
}

func TestPaymentRejectedOverTrustLimit(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	ledger.FundAccount("rIssuer", 5_000_000)
	ledger.FundAccount("rHolder", 5_000_000)

	issuer := domain.Account{Address: "rIssuer", Seed: "sIssuer", Role: domain.RoleSender}
	holder := domain.Account{Address: "rHolder", Seed: "sHolder", Role: domain.RoleReceiver}

	trust := domain.NewTrustSet("rHolder", domain.IssuedAmount{Currency: "USD", Issuer: "rIssuer", Value: "100"})
	_, err := ledger.SubmitAndWait(ctx, trust, holder)
	require.NoError(t, err)

	pay := domain.NewPayment("rIssuer", "rHolder", domain.IssuedAmount{Currency: "USD", Issuer: "rIssuer", Value: "250"})
	_, err = ledger.SubmitAndWait(ctx, pay, issuer)

	var sub *remit.SubmissionError
	require.ErrorAs(t, err, &sub)
	assert.Equal(t, "tecPATH_DRY", sub.Code, "payments over the line limit have no path")
}

func TestSequenceAdvancesPerTransaction(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	ledger.FundAccount("rIssuer", 5_000_000)
	ledger.FundAccount("rHolder", 5_000_000)

	holder := domain.Account{Address: "rHolder", Seed: "sHolder", Role: domain.RoleReceiver}

	before, err := ledger.AccountSequence(ctx, "rHolder")
	require.NoError(t, err)

	trust := domain.NewTrustSet("rHolder", domain.IssuedAmount{Currency: "USD", Issuer: "rIssuer", Value: "100"})
	_, err = ledger.SubmitAndWait(ctx, trust, holder)
	require.NoError(t, err)

	after, err := ledger.AccountSequence(ctx, "rHolder")
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
