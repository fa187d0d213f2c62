package game

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

const (
	TagSession = "session"
	TagVault   = "vault"
)

// DeriveKey computes the deterministic storage key for a session record
// (TagSession) or its escrow account (TagVault). Distinct sessions can
// never alias the same key, which is what lets them settle without
// coordinating.
func DeriveKey(player, tag string, sessionID uint64) string {
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], sessionID)

	h := sha256.New()
	h.Write([]byte(player))
	h.Write([]byte(tag))
	h.Write(id[:])

	return hex.EncodeToString(h.Sum(nil))
}
