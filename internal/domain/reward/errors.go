package reward

import "errors"

var (
	ErrRewardNotFound     = errors.New("reward not found")
	ErrRewardInactive     = errors.New("reward is not available")
	ErrRedemptionNotFound = errors.New("redemption not found")
)
