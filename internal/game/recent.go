package game

import (
	"sync"
	"time"
)

const recentSize = 10

type Play struct {
	Player    string `json:"player"`
	SessionID uint64 `json:"session_id"`
	Round     uint64 `json:"round"`
	Won       bool   `json:"won"`
	Amount    int64  `json:"amount"`
	PlayedAt  int64  `json:"played_at"`
}

// Recent keeps the last few settlements, newest first.
type Recent struct {
	plays []Play
	mu    sync.Mutex
}

func NewRecent() *Recent {
	return &Recent{}
}

func (r *Recent) Record(p Play) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.PlayedAt = time.Now().Unix()

	if len(r.plays) == recentSize {
		r.plays = r.plays[:recentSize-1]
	}
	r.plays = append([]Play{p}, r.plays...)
}

func (r *Recent) List() []Play {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Play, len(r.plays))
	copy(out, r.plays)
	return out
}
