package game

import (
	"database/sql"

	"coinflip-platform/internal/authority"
	"coinflip-platform/internal/event"
	"coinflip-platform/internal/guard"
	"coinflip-platform/internal/logger"
	"coinflip-platform/internal/monitoring"
	"coinflip-platform/internal/vault"

	"go.uber.org/zap"
)

// Service is the session state machine. Every operation is one sqlite
// transaction: it either fully applies its status and fund transitions
// or rolls back with the state untouched.
type Service struct {
	db        *sql.DB
	authority *authority.Service
	vault     *vault.Service
	bus       *event.Bus
	recent    *Recent
	maxRounds uint64
}

func New(db *sql.DB, authorityService *authority.Service, vaultService *vault.Service, bus *event.Bus, maxRounds uint64) *Service {
	return &Service{
		db:        db,
		authority: authorityService,
		vault:     vaultService,
		bus:       bus,
		recent:    NewRecent(),
		maxRounds: maxRounds,
	}
}

func (s *Service) Recent() []Play {
	return s.recent.List()
}

// PlaceStake creates a fresh session and escrows the bet. Requires the
// player and the current operation admin as co-signers.
func (s *Service) PlaceStake(signers guard.Signers, player string, sessionID uint64, side Side, amount int64) (*Session, error) {
	reg, err := s.authority.Get()
	if err != nil {
		return nil, err
	}
	if err := guard.CoSign(signers, player, reg.OperationAdmin); err != nil {
		return nil, err
	}
	if amount < reg.MinBetAmount {
		return nil, ErrInvalidBetAmount
	}

	winnings, err := winAmount(amount, reg.Rtp)
	if err != nil {
		return nil, err
	}
	if winnings >= reg.MaxWinAmount {
		return nil, ErrMaxWinExceeded
	}
	bankroll, err := s.vault.BankrollBalance()
	if err != nil {
		return nil, err
	}
	if bankroll < winnings {
		return nil, vault.ErrInsufficientBankroll
	}

	key := DeriveKey(player, TagSession, sessionID)
	escrowKey := DeriveKey(player, TagVault, sessionID)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM sessions WHERE key = ?`, key).Scan(&exists); err != nil {
		tx.Rollback()
		return nil, err
	}
	if exists > 0 {
		tx.Rollback()
		return nil, ErrDuplicateSession
	}

	if err := s.vault.Stake(tx, player, escrowKey, amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	sess := &Session{
		Player:       player,
		Operator:     reg.OperationAdmin,
		SessionID:    sessionID,
		Side:         side,
		Round:        1,
		StakeAmount:  amount,
		InitialStake: amount,
		Status:       Processing,
	}
	_, err = tx.Exec(`
	INSERT INTO sessions(key, player, operator, session_id, side, round, stake_amount, initial_stake, status)
	VALUES (?,?,?,?,?,?,?,?,?)
	`, key, sess.Player, sess.Operator, sess.SessionID, sess.Side, sess.Round, sess.StakeAmount, sess.InitialStake, sess.Status)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	monitoring.StakesPlaced.Inc()
	s.bus.Publish(event.EventStakePlaced, sess)
	logger.Log.Info("stake placed",
		zap.String("player", player),
		zap.Uint64("session", sessionID),
		zap.String("side", side.String()),
		zap.Int64("amount", amount))

	return sess, nil
}

// Resolve settles a processing round under operator attestation. A
// matching outcome credits winnings from the bankroll into escrow and
// marks the session Win; a miss sweeps the escrow into the bankroll and
// closes the session out entirely.
func (s *Service) Resolve(signers guard.Signers, player string, sessionID uint64, round uint64, outcome Side) (*Session, error) {
	reg, err := s.authority.Get()
	if err != nil {
		return nil, err
	}
	if err := guard.Operator(signers, reg.OperationAdmin); err != nil {
		return nil, err
	}

	key := DeriveKey(player, TagSession, sessionID)
	escrowKey := DeriveKey(player, TagVault, sessionID)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	sess, err := getSession(tx, key)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if sess.Status != Processing {
		tx.Rollback()
		return nil, ErrInvalidState
	}
	if round != sess.Round {
		tx.Rollback()
		return nil, ErrRoundMismatch
	}

	settlement := &Settlement{Player: player, SessionID: sessionID, Round: sess.Round}

	if outcome == sess.Side {
		escrow, err := s.vault.EscrowBalanceTx(tx, escrowKey)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		winnings, err := winAmount(escrow, reg.Rtp)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if winnings > 0 {
			if err := s.vault.PayWin(tx, escrowKey, winnings); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		sess.Status = Win
		sess.Operator = reg.OperationAdmin
		_, err = tx.Exec(`UPDATE sessions SET status = ?, operator = ? WHERE key = ?`, sess.Status, sess.Operator, key)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		settlement.Won = true
		settlement.Amount = winnings
	} else {
		swept, err := s.vault.SweepLoss(tx, escrowKey)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if _, err := tx.Exec(`DELETE FROM sessions WHERE key = ?`, key); err != nil {
			tx.Rollback()
			return nil, err
		}
		sess.Status = Lose
		settlement.Amount = swept
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	monitoring.Resolutions.WithLabelValues(sess.Status.String()).Inc()
	s.recent.Record(Play{Player: player, SessionID: sessionID, Round: settlement.Round, Won: settlement.Won, Amount: settlement.Amount})
	s.bus.Publish(event.EventSessionResolved, settlement)
	logger.Log.Info("session resolved",
		zap.String("player", player),
		zap.Uint64("session", sessionID),
		zap.Uint64("round", settlement.Round),
		zap.Bool("won", settlement.Won),
		zap.Int64("amount", settlement.Amount))

	return sess, nil
}

// Restake doubles down on a won session: the stake doubles, the prior
// winnings stay at risk in escrow, no new funds leave the player's
// wallet, and the session goes back to Processing for another round.
func (s *Service) Restake(signers guard.Signers, player string, sessionID uint64) (*Session, error) {
	reg, err := s.authority.Get()
	if err != nil {
		return nil, err
	}
	if err := guard.CoSign(signers, player, reg.OperationAdmin); err != nil {
		return nil, err
	}

	key := DeriveKey(player, TagSession, sessionID)
	escrowKey := DeriveKey(player, TagVault, sessionID)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	sess, err := getSession(tx, key)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if sess.Status != Win {
		tx.Rollback()
		return nil, ErrInvalidState
	}
	if sess.Round >= s.maxRounds {
		tx.Rollback()
		return nil, ErrMaxRounds
	}

	newStake, err := checkedDouble(sess.StakeAmount)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	escrow, err := s.vault.EscrowBalanceTx(tx, escrowKey)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	gross, err := grossReturn(escrow, reg.Rtp)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if gross-sess.InitialStake >= reg.MaxWinAmount {
		tx.Rollback()
		return nil, ErrMaxWinExceeded
	}

	sess.StakeAmount = newStake
	sess.Round++
	sess.Status = Processing
	sess.Operator = reg.OperationAdmin
	_, err = tx.Exec(`
	UPDATE sessions SET stake_amount = ?, round = ?, status = ?, operator = ? WHERE key = ?
	`, sess.StakeAmount, sess.Round, sess.Status, sess.Operator, key)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.bus.Publish(event.EventRestaked, sess)
	logger.Log.Info("session restaked",
		zap.String("player", player),
		zap.Uint64("session", sessionID),
		zap.Uint64("round", sess.Round),
		zap.Int64("stake", sess.StakeAmount))

	return sess, nil
}

// ClaimReward pays the full escrow balance out to the player's wallet
// and deletes the session. A repeat claim finds nothing to act on.
func (s *Service) ClaimReward(signers guard.Signers, player string, sessionID uint64) (int64, error) {
	reg, err := s.authority.Get()
	if err != nil {
		return 0, err
	}
	if err := guard.Operator(signers, reg.OperationAdmin); err != nil {
		return 0, err
	}

	key := DeriveKey(player, TagSession, sessionID)
	escrowKey := DeriveKey(player, TagVault, sessionID)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	sess, err := getSession(tx, key)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if sess.Status != Win {
		tx.Rollback()
		return 0, ErrInvalidState
	}

	amount, err := s.vault.Payout(tx, escrowKey, sess.Player)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE key = ?`, key); err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	monitoring.RewardsClaimed.Inc()
	s.bus.Publish(event.EventRewardClaimed, &Settlement{
		Player:    player,
		SessionID: sessionID,
		Round:     sess.Round,
		Won:       true,
		Amount:    amount,
	})
	logger.Log.Info("reward claimed",
		zap.String("player", player),
		zap.Uint64("session", sessionID),
		zap.Int64("amount", amount))

	return amount, nil
}

// Get reads a session without mutating it.
func (s *Service) Get(player string, sessionID uint64) (*Session, error) {
	return getSession(s.db, DeriveKey(player, TagSession, sessionID))
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getSession(q queryer, key string) (*Session, error) {
	sess := &Session{}
	err := q.QueryRow(`
	SELECT player, operator, session_id, side, round, stake_amount, initial_stake, status
	FROM sessions WHERE key = ?
	`, key).Scan(&sess.Player, &sess.Operator, &sess.SessionID, &sess.Side, &sess.Round, &sess.StakeAmount, &sess.InitialStake, &sess.Status)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}
