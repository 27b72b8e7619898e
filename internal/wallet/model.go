package wallet

import "time"

// Wallet holds the single authoritative balance for one owner. Balance is in
// the smallest currency unit and never goes negative. Version backs the
// optimistic concurrency check in Repository.ApplyMutation.
type Wallet struct {
	ID        string
	OwnerID   string
	Balance   int64
	Enabled   bool
	EnabledAt time.Time
	Version   int64
}

const (
	statusEnabled  = "enabled"
	statusDisabled = "disabled"
)

// Status renders the lifecycle flag the way the API presents it.
func (w Wallet) Status() string {
	if w.Enabled {
		return statusEnabled
	}
	return statusDisabled
}
