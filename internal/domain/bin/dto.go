package bin

// CreateRequest for POST /admin/bins
type CreateRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	Description string   `json:"description" validate:"max=500"`
	Latitude    float64  `json:"latitude" validate:"latitude"`
	Longitude   float64  `json:"longitude" validate:"longitude"`
	WasteTypes  []string `json:"waste_types" validate:"required,min=1,dive,waste_type"`
	AutoCredit  bool     `json:"auto_credit"`
}

// UpdateRequest for PUT /admin/bins/{id}
type UpdateRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	Description string   `json:"description" validate:"max=500"`
	Latitude    float64  `json:"latitude" validate:"latitude"`
	Longitude   float64  `json:"longitude" validate:"longitude"`
	WasteTypes  []string `json:"waste_types" validate:"required,min=1,dive,waste_type"`
	AutoCredit  bool     `json:"auto_credit"`
	Active      bool     `json:"active"`
}
