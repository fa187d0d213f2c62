package vault

import (
	"database/sql"
	"errors"
	"fmt"

	"coinflip-platform/internal/audit"
	"coinflip-platform/internal/authority"
	"coinflip-platform/internal/event"
	"coinflip-platform/internal/guard"
	"coinflip-platform/internal/ledger"
	"coinflip-platform/internal/wallet"
)

var (
	ErrInsufficientBankroll = errors.New("insufficient bankroll")
	ErrInvalidAmount        = errors.New("invalid amount")
)

// Service owns the bankroll vault and the per-session escrow accounts.
// The tx-scoped methods are the only fund-movement primitives in the
// system; each validates the source balance before debiting so a failed
// leg aborts the caller's whole transaction.
type Service struct {
	db        *sql.DB
	ledger    *ledger.Service
	wallet    *wallet.Service
	authority *authority.Service
	audit     *audit.Service
	bus       *event.Bus
}

func New(db *sql.DB, ledgerService *ledger.Service, walletService *wallet.Service, authorityService *authority.Service, auditService *audit.Service, bus *event.Bus) *Service {
	return &Service{
		db:        db,
		ledger:    ledgerService,
		wallet:    walletService,
		authority: authorityService,
		audit:     auditService,
		bus:       bus,
	}
}

// WithdrawEvent is published on the bus after a bankroll withdrawal
// commits.
type WithdrawEvent struct {
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
}

// Stake moves the bet from the player's wallet into a session escrow.
func (s *Service) Stake(tx *sql.Tx, player, escrowKey string, amount int64) error {
	if err := s.wallet.Debit(tx, player, amount); err != nil {
		return err
	}
	_, err := tx.Exec(`
	INSERT INTO escrow(key, balance) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET balance = balance + excluded.balance
	`, escrowKey, amount)
	if err != nil {
		return err
	}
	return s.ledger.Record(tx, "wallet:"+player, "escrow:"+escrowKey, amount)
}

// PayWin moves winnings from the bankroll into the session escrow.
func (s *Service) PayWin(tx *sql.Tx, escrowKey string, winnings int64) error {
	res, err := tx.Exec(`
	UPDATE bankroll SET balance = balance - ? WHERE id = 1 AND balance >= ?
	`, winnings, winnings)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientBankroll
	}
	if _, err := tx.Exec(`UPDATE escrow SET balance = balance + ? WHERE key = ?`, winnings, escrowKey); err != nil {
		return err
	}
	return s.ledger.Record(tx, "bankroll", "escrow:"+escrowKey, winnings)
}

// SweepLoss empties the session escrow into the bankroll and deletes
// the escrow account. Returns the swept amount.
func (s *Service) SweepLoss(tx *sql.Tx, escrowKey string) (int64, error) {
	balance, err := s.escrowBalance(tx, escrowKey)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`UPDATE bankroll SET balance = balance + ? WHERE id = 1`, balance); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM escrow WHERE key = ?`, escrowKey); err != nil {
		return 0, err
	}
	return balance, s.ledger.Record(tx, "escrow:"+escrowKey, "bankroll", balance)
}

// Payout pays the full escrow balance to the player's wallet and
// deletes the escrow account. Returns the paid amount.
func (s *Service) Payout(tx *sql.Tx, escrowKey, player string) (int64, error) {
	balance, err := s.escrowBalance(tx, escrowKey)
	if err != nil {
		return 0, err
	}
	if err := s.wallet.Credit(tx, player, balance); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM escrow WHERE key = ?`, escrowKey); err != nil {
		return 0, err
	}
	return balance, s.ledger.Record(tx, "escrow:"+escrowKey, "wallet:"+player, balance)
}

func (s *Service) escrowBalance(tx *sql.Tx, escrowKey string) (int64, error) {
	var balance int64
	err := tx.QueryRow(`SELECT balance FROM escrow WHERE key = ?`, escrowKey).Scan(&balance)
	return balance, err
}

// EscrowBalanceTx reads an escrow balance inside the caller's
// transaction so settlement math sees the same snapshot it mutates.
func (s *Service) EscrowBalanceTx(tx *sql.Tx, escrowKey string) (int64, error) {
	return s.escrowBalance(tx, escrowKey)
}

func (s *Service) EscrowBalance(escrowKey string) (int64, error) {
	var balance int64
	err := s.db.QueryRow(`SELECT balance FROM escrow WHERE key = ?`, escrowKey).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

func (s *Service) BankrollBalance() (int64, error) {
	var balance int64
	err := s.db.QueryRow(`SELECT balance FROM bankroll WHERE id = 1`).Scan(&balance)
	return balance, err
}

// Withdraw moves funds from the bankroll to a recipient's wallet.
// Financial-admin gated.
func (s *Service) Withdraw(signers guard.Signers, recipient string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	reg, err := s.authority.Get()
	if err != nil {
		return err
	}
	if err := guard.Admin(signers, reg.FinancialAdmin); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`
	UPDATE bankroll SET balance = balance - ? WHERE id = 1 AND balance >= ?
	`, amount, amount)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return ErrInsufficientBankroll
	}
	if err := s.wallet.Credit(tx, recipient, amount); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.ledger.Record(tx, "bankroll", "wallet:"+recipient, amount); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.bus.Publish(event.EventWithdraw, &WithdrawEvent{Recipient: recipient, Amount: amount})
	s.audit.Log(reg.FinancialAdmin, "withdraw", fmt.Sprintf("recipient=%s amount=%d", recipient, amount))
	return nil
}

// DepositBankroll credits house funds. Open to any depositor, the same
// way the on-vault deposit path takes plain transfers.
func (s *Service) DepositBankroll(from string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE bankroll SET balance = balance + ? WHERE id = 1`, amount); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.ledger.Record(tx, "external:"+from, "bankroll", amount); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
