package reward

import (
	"time"

	"github.com/google/uuid"
)

// Reward is a catalog item users can redeem points for (matches rewards table)
type Reward struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Cost        int64     `db:"cost" json:"cost"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Redemption is an issued voucher (matches redemptions table).
// Cost is captured at redeem time so later price changes don't rewrite history.
type Redemption struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	RewardID    uuid.UUID `db:"reward_id" json:"reward_id"`
	Cost        int64     `db:"cost" json:"cost"`
	VoucherCode string    `db:"voucher_code" json:"voucher_code"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
