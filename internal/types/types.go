// internal/types/types.go
package types

import (
	"github.com/holiman/uint256"
)

// RewardTracker is the capability the reward pool hands to its upstream
// notifiers: the sale pool calls OnAllocation once per settled investment,
// the allowlist ledger calls OnBalanceChange once per committed transfer.
// Holding the interface without a live pool behind it is valid; callers
// treat a nil tracker as "reward tracking not wired".
type RewardTracker interface {
	OnAllocation(holder string, amount *uint256.Int) error
	OnBalanceChange(from, to string, amount *uint256.Int) error
}

// Roles are the three independent administrative identities compared by
// equality at guarded entry points.
type Roles struct {
	Owner         string
	Admin         string
	BusinessAdmin string
}

// IsOwner reports whether caller holds the owner role.
func (r Roles) IsOwner(caller string) bool { return caller != "" && caller == r.Owner }

// IsAdmin reports whether caller holds the admin role.
func (r Roles) IsAdmin(caller string) bool { return caller != "" && caller == r.Admin }

// IsBusinessAdmin reports whether caller holds the business-admin role.
func (r Roles) IsBusinessAdmin(caller string) bool {
	return caller != "" && caller == r.BusinessAdmin
}
