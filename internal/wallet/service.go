package wallet

import (
	"database/sql"
	"errors"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// Service tracks the external (non-escrowed) balances of players, in
// integral smallest units.
type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Credit(tx *sql.Tx, player string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	_, err := tx.Exec(`
	INSERT INTO wallets(player, balance) VALUES (?, ?)
	ON CONFLICT(player) DO UPDATE SET balance = balance + excluded.balance
	`, player, amount)
	return err
}

func (s *Service) Debit(tx *sql.Tx, player string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	res, err := tx.Exec(`
	UPDATE wallets SET balance = balance - ? WHERE player = ? AND balance >= ?
	`, amount, player, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (s *Service) Balance(player string) (int64, error) {
	var balance int64
	err := s.db.QueryRow(`SELECT balance FROM wallets WHERE player = ?`, player).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

func (s *Service) Deposit(player string, amount int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := s.Credit(tx, player, amount); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
