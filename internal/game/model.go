package game

import (
	"encoding/json"
	"errors"
)

var (
	ErrInvalidBetAmount   = errors.New("invalid bet amount")
	ErrDuplicateSession   = errors.New("duplicate session")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidState       = errors.New("invalid session state")
	ErrRoundMismatch      = errors.New("round mismatch")
	ErrMaxWinExceeded     = errors.New("max win amount exceeded")
	ErrMaxRounds          = errors.New("max rounds reached")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)

type Side int

const (
	Tails Side = iota
	Heads
)

func (s Side) String() string {
	if s == Heads {
		return "heads"
	}
	return "tails"
}

func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func ParseSide(v string) (Side, error) {
	switch v {
	case "heads":
		return Heads, nil
	case "tails":
		return Tails, nil
	}
	return 0, errors.New("invalid side")
}

type Status int

const (
	Processing Status = iota
	Win
	Lose
)

func (s Status) String() string {
	switch s {
	case Win:
		return "win"
	case Lose:
		return "lose"
	}
	return "processing"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Session is one player's wager, keyed by (player, session id). A live
// session always has a matching escrow account holding the at-risk
// funds.
type Session struct {
	Player       string `json:"player"`
	Operator     string `json:"operator"`
	SessionID    uint64 `json:"session_id"`
	Side         Side   `json:"side"`
	Round        uint64 `json:"round"`
	StakeAmount  int64  `json:"stake_amount"`
	InitialStake int64  `json:"initial_stake"`
	Status       Status `json:"status"`
}

// Settlement is published on the bus whenever a session resolves or a
// reward is claimed.
type Settlement struct {
	Player    string `json:"player"`
	SessionID uint64 `json:"session_id"`
	Round     uint64 `json:"round"`
	Won       bool   `json:"won"`
	Amount    int64  `json:"amount"`
}
