package jobs

import (
	"context"
	"time"

	"coinflip-platform/internal/monitoring"
	"coinflip-platform/internal/vault"
)

// BankrollGauge refreshes the bankroll balance metric on a fixed
// interval.
type BankrollGauge struct {
	vault    *vault.Service
	interval time.Duration
}

func NewBankrollGauge(vaultService *vault.Service, interval time.Duration) *BankrollGauge {
	return &BankrollGauge{vault: vaultService, interval: interval}
}

func (j *BankrollGauge) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if balance, err := j.vault.BankrollBalance(); err == nil {
				monitoring.BankrollBalance.Set(float64(balance))
			}
		}
	}
}
