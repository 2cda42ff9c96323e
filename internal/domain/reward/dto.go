package reward

// CreateRequest creates a catalog reward
type CreateRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Cost        int64  `json:"cost" validate:"required,gt=0"`
}

// UpdateRequest edits a catalog reward; nil fields are left unchanged
type UpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Cost        *int64  `json:"cost" validate:"omitempty,gt=0"`
	Active      *bool   `json:"active"`
}
