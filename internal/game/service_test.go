package game

import (
	"database/sql"
	"sync"
	"testing"

	"coinflip-platform/internal/audit"
	"coinflip-platform/internal/authority"
	dbpkg "coinflip-platform/internal/db"
	"coinflip-platform/internal/event"
	"coinflip-platform/internal/guard"
	"coinflip-platform/internal/ledger"
	"coinflip-platform/internal/vault"
	"coinflip-platform/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPlayer   = "alice"
	testOperator = "operator"
	testSuper    = "super"
	testFin      = "fin"
	testUpd      = "upd"

	testRtp    = int64(97)
	testMinBet = int64(10_000_000)
	testMaxWin = int64(2_000_000_000)

	testStake    = int64(200_000_000)
	testWinnings = int64(188_000_000) // 200e6 * 2*97/100 - 200e6

	walletFunds   = int64(1_000_000_000)
	bankrollFunds = int64(10_000_000_000)
)

type testEnv struct {
	db        *sql.DB
	svc       *Service
	authority *authority.Service
	vault     *vault.Service
	wallet    *wallet.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	dbpkg.Migrate(db)

	auditService := audit.New(db)
	ledgerService := ledger.New(db)
	walletService := wallet.New(db)
	authorityService := authority.New(db, auditService, testSuper, testRtp, testMinBet, testMaxWin)
	vaultService := vault.New(db, ledgerService, walletService, authorityService, auditService, event.NewBus())
	svc := New(db, authorityService, vaultService, event.NewBus(), 10)

	_, err = authorityService.Initialize(guard.NewSigners(testSuper), testOperator, testFin, testUpd)
	require.NoError(t, err)
	require.NoError(t, vaultService.DepositBankroll("house", bankrollFunds))
	require.NoError(t, walletService.Deposit(testPlayer, walletFunds))

	return &testEnv{
		db:        db,
		svc:       svc,
		authority: authorityService,
		vault:     vaultService,
		wallet:    walletService,
	}
}

func coSigners() guard.Signers {
	return guard.NewSigners(testPlayer, testOperator)
}

func operatorOnly() guard.Signers {
	return guard.NewSigners(testOperator)
}

func (e *testEnv) escrowBalance(t *testing.T, sessionID uint64) int64 {
	t.Helper()
	balance, err := e.vault.EscrowBalance(DeriveKey(testPlayer, TagVault, sessionID))
	require.NoError(t, err)
	return balance
}

func (e *testEnv) bankroll(t *testing.T) int64 {
	t.Helper()
	balance, err := e.vault.BankrollBalance()
	require.NoError(t, err)
	return balance
}

func (e *testEnv) walletBalance(t *testing.T, player string) int64 {
	t.Helper()
	balance, err := e.wallet.Balance(player)
	require.NoError(t, err)
	return balance
}

func TestPlaceStake(t *testing.T) {
	env := newTestEnv(t)

	sess, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	assert.Equal(t, Processing, sess.Status)
	assert.Equal(t, uint64(1), sess.Round)
	assert.Equal(t, testStake, sess.StakeAmount)
	assert.Equal(t, testStake, sess.InitialStake)
	assert.Equal(t, testOperator, sess.Operator)

	assert.Equal(t, testStake, env.escrowBalance(t, 1))
	assert.Equal(t, walletFunds-testStake, env.walletBalance(t, testPlayer))

	got, err := env.svc.Get(testPlayer, 1)
	require.NoError(t, err)
	assert.Equal(t, Processing, got.Status)
}

func TestPlaceStakeBelowMinimum(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, 1_000)
	assert.ErrorIs(t, err, ErrInvalidBetAmount)

	_, err = env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testMinBet-1)
	assert.ErrorIs(t, err, ErrInvalidBetAmount)

	_, err = env.svc.Get(testPlayer, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, walletFunds, env.walletBalance(t, testPlayer))
	assert.Equal(t, int64(0), env.escrowBalance(t, 1))
}

func TestPlaceStakeAtMinimum(t *testing.T) {
	env := newTestEnv(t)

	// a bet equal to the minimum is accepted
	sess, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testMinBet)
	require.NoError(t, err)
	assert.Equal(t, Processing, sess.Status)
	assert.Equal(t, testMinBet, env.escrowBalance(t, 1))
}

func TestPlaceStakeDuplicateSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	_, err = env.svc.PlaceStake(coSigners(), testPlayer, 1, Tails, testStake)
	assert.ErrorIs(t, err, ErrDuplicateSession)
	assert.Equal(t, walletFunds-testStake, env.walletBalance(t, testPlayer))
}

func TestPlaceStakeMissingCoSigner(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		signers guard.Signers
	}{
		{"player only", guard.NewSigners(testPlayer)},
		{"operator only", guard.NewSigners(testOperator)},
		{"stranger", guard.NewSigners("mallory")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.PlaceStake(tt.signers, testPlayer, 1, Heads, testStake)
			assert.ErrorIs(t, err, guard.ErrUnauthorized)
		})
	}

	_, err := env.svc.Get(testPlayer, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPlaceStakeInsufficientBankroll(t *testing.T) {
	env := newTestEnv(t)

	// drain the bankroll so the potential win cannot be covered
	require.NoError(t, env.vault.Withdraw(guard.NewSigners(testFin), "treasury", bankrollFunds))

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	assert.ErrorIs(t, err, vault.ErrInsufficientBankroll)
	assert.Equal(t, walletFunds, env.walletBalance(t, testPlayer))
}

func TestPlaceStakeInsufficientWallet(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, 1_500_000_000)
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	_, err = env.svc.Get(testPlayer, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, walletFunds, env.walletBalance(t, testPlayer))
}

func TestPlaceStakeMaxWinExceeded(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.wallet.Deposit(testPlayer, 10_000_000_000))

	// winnings of 0.94x would exceed the configured 2e9 ceiling
	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, 3_000_000_000)
	assert.ErrorIs(t, err, ErrMaxWinExceeded)
}

func TestResolveWin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	sess, err := env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Heads)
	require.NoError(t, err)

	assert.Equal(t, Win, sess.Status)
	assert.Equal(t, testStake+testWinnings, env.escrowBalance(t, 1))
	assert.Equal(t, bankrollFunds-testWinnings, env.bankroll(t))
}

func TestResolveLose(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	sess, err := env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Tails)
	require.NoError(t, err)
	assert.Equal(t, Lose, sess.Status)

	// loss settlement is final: session and escrow are gone, funds swept
	_, err = env.svc.Get(testPlayer, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, int64(0), env.escrowBalance(t, 1))
	assert.Equal(t, bankrollFunds+testStake, env.bankroll(t))
}

func TestResolveTwice(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)
	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Heads)
	require.NoError(t, err)

	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Heads)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestResolveRoundMismatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 1, 2, Heads)
	assert.ErrorIs(t, err, ErrRoundMismatch)

	sess, err := env.svc.Get(testPlayer, 1)
	require.NoError(t, err)
	assert.Equal(t, Processing, sess.Status)
}

func TestResolveUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Resolve(operatorOnly(), testPlayer, 99, 1, Heads)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveRequiresOperator(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	_, err = env.svc.Resolve(guard.NewSigners(testPlayer), testPlayer, 1, 1, Heads)
	assert.ErrorIs(t, err, guard.ErrUnauthorized)
}

func TestRestake(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)
	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Heads)
	require.NoError(t, err)

	walletBefore := env.walletBalance(t, testPlayer)
	escrowBefore := env.escrowBalance(t, 1)

	sess, err := env.svc.Restake(coSigners(), testPlayer, 1)
	require.NoError(t, err)

	assert.Equal(t, Processing, sess.Status)
	assert.Equal(t, uint64(2), sess.Round)
	assert.Equal(t, 2*testStake, sess.StakeAmount)
	assert.Equal(t, testStake, sess.InitialStake)

	// no external funds pulled, the win proceeds stay at risk
	assert.Equal(t, walletBefore, env.walletBalance(t, testPlayer))
	assert.Equal(t, escrowBefore, env.escrowBalance(t, 1))
}

func TestRestakeOnProcessing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	_, err = env.svc.Restake(coSigners(), testPlayer, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRestakeRoundCap(t *testing.T) {
	env := newTestEnv(t)
	capped := New(env.db, env.authority, env.vault, event.NewBus(), 1)

	_, err := capped.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)
	_, err = capped.Resolve(operatorOnly(), testPlayer, 1, 1, Heads)
	require.NoError(t, err)

	_, err = capped.Restake(coSigners(), testPlayer, 1)
	assert.ErrorIs(t, err, ErrMaxRounds)
}

func TestRestakeChainThenLose(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)
	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Heads)
	require.NoError(t, err)
	_, err = env.svc.Restake(coSigners(), testPlayer, 1)
	require.NoError(t, err)

	sess, err := env.svc.Resolve(operatorOnly(), testPlayer, 1, 2, Tails)
	require.NoError(t, err)
	assert.Equal(t, Lose, sess.Status)

	// the sweep returns the winnings plus the original stake
	assert.Equal(t, bankrollFunds+testStake, env.bankroll(t))
	assert.Equal(t, int64(0), env.escrowBalance(t, 1))
}

func TestClaimReward(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)
	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Heads)
	require.NoError(t, err)

	amount, err := env.svc.ClaimReward(operatorOnly(), testPlayer, 1)
	require.NoError(t, err)
	assert.Equal(t, testStake+testWinnings, amount)

	assert.Equal(t, walletFunds-testStake+testStake+testWinnings, env.walletBalance(t, testPlayer))
	assert.Equal(t, int64(0), env.escrowBalance(t, 1))

	_, err = env.svc.Get(testPlayer, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// claiming again has no target left
	_, err = env.svc.ClaimReward(operatorOnly(), testPlayer, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClaimOnProcessing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	_, err = env.svc.ClaimReward(operatorOnly(), testPlayer, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSessionIdReusableAfterSettlement(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)
	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Tails)
	require.NoError(t, err)

	// prior session is deleted, the id is free again
	sess, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Tails, testStake)
	require.NoError(t, err)
	assert.Equal(t, Processing, sess.Status)
	assert.Equal(t, uint64(1), sess.Round)
}

func TestSessionIsolation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)
	_, err = env.svc.PlaceStake(coSigners(), testPlayer, 2, Heads, testStake)
	require.NoError(t, err)

	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 1, 1, Heads)
	require.NoError(t, err)
	_, err = env.svc.Resolve(operatorOnly(), testPlayer, 2, 1, Tails)
	require.NoError(t, err)

	// session 1 won and is untouched by session 2's loss
	sess, err := env.svc.Get(testPlayer, 1)
	require.NoError(t, err)
	assert.Equal(t, Win, sess.Status)
	assert.Equal(t, testStake+testWinnings, env.escrowBalance(t, 1))

	_, err = env.svc.Get(testPlayer, 2)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, int64(0), env.escrowBalance(t, 2))
}

func TestConcurrentStakes(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.wallet.Deposit(testPlayer, 8*testStake))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.PlaceStake(coSigners(), testPlayer, uint64(100+i), Heads, testStake)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "stake %d", i)
		assert.Equal(t, testStake, env.escrowBalance(t, uint64(100+i)))
	}
}

func TestOperatorRotationAppliesImmediately(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.PlaceStake(coSigners(), testPlayer, 1, Heads, testStake)
	require.NoError(t, err)

	require.NoError(t, env.authority.SetOperationAuthority(guard.NewSigners(testSuper), "operator2"))

	_, err = env.svc.Resolve(guard.NewSigners(testOperator), testPlayer, 1, 1, Heads)
	assert.ErrorIs(t, err, guard.ErrUnauthorized)

	_, err = env.svc.Resolve(guard.NewSigners("operator2"), testPlayer, 1, 1, Heads)
	assert.NoError(t, err)
}
