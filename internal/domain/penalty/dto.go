package penalty

// ApplyRequest records a penalty against a user
type ApplyRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	Reason   string `json:"reason" validate:"required,min=3,max=500"`
	Severity string `json:"severity" validate:"required,severity"`
}
