package ledger

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Record writes one double-entry row inside the caller's transaction.
// Every fund movement in the system produces exactly one row.
func (s *Service) Record(tx *sql.Tx, debitAccount, creditAccount string, amount int64) error {
	ref := uuid.New().String()
	ts := time.Now().Unix()

	_, err := tx.Exec(`
	INSERT INTO ledger(ref, debit_account, credit_account, amount, ts)
	VALUES (?,?,?,?,?)
	`, ref, debitAccount, creditAccount, amount, ts)

	return err
}
