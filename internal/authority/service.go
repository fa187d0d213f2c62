package authority

import (
	"database/sql"
	"fmt"

	"coinflip-platform/internal/audit"
	"coinflip-platform/internal/guard"
	"coinflip-platform/internal/logger"

	"go.uber.org/zap"
)

type Service struct {
	db    *sql.DB
	audit *audit.Service

	// deployer is the identity allowed to run initialize. It is fixed
	// at deployment and never stored in the registry it creates.
	deployer string

	defaultRtp    int64
	defaultMinBet int64
	defaultMaxWin int64
}

func New(db *sql.DB, auditService *audit.Service, deployer string, rtp, minBet, maxWin int64) *Service {
	return &Service{
		db:            db,
		audit:         auditService,
		deployer:      deployer,
		defaultRtp:    rtp,
		defaultMinBet: minBet,
		defaultMaxWin: maxWin,
	}
}

// Initialize creates the registry row. The deployer becomes super admin;
// the three other roles are caller-supplied.
func (s *Service) Initialize(signers guard.Signers, operationAdmin, financialAdmin, updateAdmin string) (*Registry, error) {
	if err := guard.Admin(signers, s.deployer); err != nil {
		return nil, err
	}

	reg := &Registry{
		SuperAdmin:     s.deployer,
		OperationAdmin: operationAdmin,
		FinancialAdmin: financialAdmin,
		UpdateAdmin:    updateAdmin,
		Rtp:            s.defaultRtp,
		MaxWinAmount:   s.defaultMaxWin,
		MinBetAmount:   s.defaultMinBet,
	}

	res, err := s.db.Exec(`
	INSERT OR IGNORE INTO registry(id, super_admin, operation_admin, financial_admin, update_admin, rtp, max_win_amount, min_bet_amount)
	VALUES (1,?,?,?,?,?,?,?)
	`, reg.SuperAdmin, reg.OperationAdmin, reg.FinancialAdmin, reg.UpdateAdmin, reg.Rtp, reg.MaxWinAmount, reg.MinBetAmount)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrAlreadyInitialized
	}

	s.audit.Log(reg.SuperAdmin, "initialize", fmt.Sprintf("operator=%s financial=%s update=%s", operationAdmin, financialAdmin, updateAdmin))
	logger.Log.Info("registry initialized", zap.String("operator", operationAdmin))

	return reg, nil
}

func (s *Service) Get() (*Registry, error) {
	reg := &Registry{}
	err := s.db.QueryRow(`
	SELECT super_admin, operation_admin, financial_admin, update_admin, rtp, max_win_amount, min_bet_amount
	FROM registry WHERE id = 1
	`).Scan(&reg.SuperAdmin, &reg.OperationAdmin, &reg.FinancialAdmin, &reg.UpdateAdmin, &reg.Rtp, &reg.MaxWinAmount, &reg.MinBetAmount)
	if err == sql.ErrNoRows {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// SetRtp replaces the return-to-player percent. Update-admin gated; the
// ratio is an integer percent strictly inside (0, 100).
func (s *Service) SetRtp(signers guard.Signers, rtp int64) error {
	reg, err := s.Get()
	if err != nil {
		return err
	}
	if err := guard.Admin(signers, reg.UpdateAdmin); err != nil {
		return err
	}
	if rtp <= 0 || rtp >= 100 {
		return ErrInvalidRtp
	}

	if _, err := s.db.Exec(`UPDATE registry SET rtp = ? WHERE id = 1`, rtp); err != nil {
		return err
	}
	s.audit.Log(reg.UpdateAdmin, "set_rtp", fmt.Sprintf("rtp=%d", rtp))
	return nil
}

func (s *Service) SetMinBetAmount(signers guard.Signers, amount int64) error {
	reg, err := s.Get()
	if err != nil {
		return err
	}
	if err := guard.Admin(signers, reg.UpdateAdmin); err != nil {
		return err
	}
	if _, err := s.db.Exec(`UPDATE registry SET min_bet_amount = ? WHERE id = 1`, amount); err != nil {
		return err
	}
	s.audit.Log(reg.UpdateAdmin, "set_min_bet_amount", fmt.Sprintf("amount=%d", amount))
	return nil
}

func (s *Service) SetMaxWinAmount(signers guard.Signers, amount int64) error {
	reg, err := s.Get()
	if err != nil {
		return err
	}
	if err := guard.Admin(signers, reg.UpdateAdmin); err != nil {
		return err
	}
	if _, err := s.db.Exec(`UPDATE registry SET max_win_amount = ? WHERE id = 1`, amount); err != nil {
		return err
	}
	s.audit.Log(reg.UpdateAdmin, "set_max_win_amount", fmt.Sprintf("amount=%d", amount))
	return nil
}

// SetOperationAuthority rotates the operator. Takes effect immediately:
// every later stake/resolve/re-stake/claim checks the new identity.
func (s *Service) SetOperationAuthority(signers guard.Signers, id string) error {
	return s.rotate(signers, "operation_admin", "set_operation_authority", id)
}

func (s *Service) SetFinanceAuthority(signers guard.Signers, id string) error {
	return s.rotate(signers, "financial_admin", "set_finance_authority", id)
}

func (s *Service) SetUpdateAuthority(signers guard.Signers, id string) error {
	return s.rotate(signers, "update_admin", "set_update_authority", id)
}

func (s *Service) rotate(signers guard.Signers, column, action, id string) error {
	reg, err := s.Get()
	if err != nil {
		return err
	}
	if err := guard.Admin(signers, reg.SuperAdmin); err != nil {
		return err
	}

	if _, err := s.db.Exec(`UPDATE registry SET `+column+` = ? WHERE id = 1`, id); err != nil {
		return err
	}
	s.audit.Log(reg.SuperAdmin, action, fmt.Sprintf("new=%s", id))
	logger.Log.Info("authority rotated", zap.String("role", column), zap.String("new", id))
	return nil
}
