package authority

import "errors"

var (
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("registry not initialized")
	ErrInvalidRtp         = errors.New("invalid rtp")
)

// Registry is the singleton holding the privileged identities and the
// payout economics. Exactly one row exists from initialize onwards.
type Registry struct {
	SuperAdmin     string `json:"super_admin"`
	OperationAdmin string `json:"operation_admin"`
	FinancialAdmin string `json:"financial_admin"`
	UpdateAdmin    string `json:"update_admin"`

	Rtp          int64 `json:"rtp"`
	MaxWinAmount int64 `json:"max_win_amount"`
	MinBetAmount int64 `json:"min_bet_amount"`
}
