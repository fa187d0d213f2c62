package wallet

import (
	"database/sql"
	"testing"

	dbpkg "coinflip-platform/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	dbpkg.Migrate(db)

	return New(db)
}

func TestDepositAndBalance(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, s.Deposit("alice", 500))
	require.NoError(t, s.Deposit("alice", 250))

	balance, err := s.Balance("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(750), balance)

	// unknown players read as zero
	balance, err = s.Balance("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestDebit(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.Deposit("alice", 500))

	tx, err := s.db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.Debit(tx, "alice", 200))
	require.NoError(t, tx.Commit())

	balance, err := s.Balance("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)
}

func TestDebitInsufficient(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.Deposit("alice", 100))

	tx, err := s.db.Begin()
	require.NoError(t, err)
	err = s.Debit(tx, "alice", 101)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	tx.Rollback()

	balance, err := s.Balance("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.Deposit("victim", 500))

	// a negative deposit is a disguised, unvalidated debit
	assert.ErrorIs(t, s.Deposit("victim", -450), ErrInvalidAmount)
	assert.ErrorIs(t, s.Deposit("victim", 0), ErrInvalidAmount)

	balance, err := s.Balance("victim")
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)
}

func TestCreditAndDebitRejectNonPositiveAmounts(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.Deposit("alice", 500))

	tx, err := s.db.Begin()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Credit(tx, "alice", -1), ErrInvalidAmount)
	assert.ErrorIs(t, s.Credit(tx, "alice", 0), ErrInvalidAmount)
	assert.ErrorIs(t, s.Debit(tx, "alice", -1), ErrInvalidAmount)
	assert.ErrorIs(t, s.Debit(tx, "alice", 0), ErrInvalidAmount)
	tx.Rollback()

	balance, err := s.Balance("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)
}

func TestDebitUnknownPlayer(t *testing.T) {
	s := newTestService(t)

	tx, err := s.db.Begin()
	require.NoError(t, err)
	err = s.Debit(tx, "ghost", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	tx.Rollback()
}
