package disposal

import "errors"

var (
	ErrDisposalNotFound  = errors.New("disposal not found")
	ErrNotPending        = errors.New("disposal is not pending review")
	ErrCooldownActive    = errors.New("disposal cooldown active for this bin")
	ErrEvidenceNotFound  = errors.New("evidence upload not found")
	ErrEvidenceNotOwned  = errors.New("evidence upload belongs to another user")
	ErrWasteNotAccepted  = errors.New("bin does not accept this waste type")
	ErrInvalidVolume     = errors.New("volume must be positive")
	ErrInvalidAwardValue = errors.New("awarded points must be positive")
)
