package guard

import "errors"

var ErrUnauthorized = errors.New("unauthorized")

// Signers is the set of identities that signed the current request.
type Signers map[string]bool

func NewSigners(ids ...string) Signers {
	s := make(Signers, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = true
		}
	}
	return s
}

func (s Signers) Has(id string) bool {
	return id != "" && s[id]
}

// CoSign requires both the session's player and the current operation
// admin to have signed. Used by place_stake and re_stake.
func CoSign(s Signers, player, operator string) error {
	if !s.Has(player) || !s.Has(operator) {
		return ErrUnauthorized
	}
	return nil
}

// Operator requires the current operation admin's signature. Used by
// resolve and claim_reward, which act on the player recorded in the
// session rather than on a co-signing player.
func Operator(s Signers, operator string) error {
	if !s.Has(operator) {
		return ErrUnauthorized
	}
	return nil
}

// Admin requires the signature of a single privileged identity: the
// super admin for authority rotation, the update admin for parameter
// changes, the financial admin for bankroll withdrawals.
func Admin(s Signers, admin string) error {
	if !s.Has(admin) {
		return ErrUnauthorized
	}
	return nil
}
