package disposal

// CreateRequest submits a disposal against a resolved bin
type CreateRequest struct {
	BinID        string `json:"bin_id" validate:"required,uuid"`
	WasteType    string `json:"waste_type" validate:"required,waste_type"`
	VolumeLiters int    `json:"volume_liters" validate:"required,gt=0,lte=1000"`
	EvidenceID   string `json:"evidence_id" validate:"required,uuid"`
}

// ApproveRequest carries the administrator's authoritative point value
type ApproveRequest struct {
	Points int64  `json:"points" validate:"required,gt=0"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

// RejectRequest requires an explanation for the user
type RejectRequest struct {
	Note string `json:"note" validate:"required,max=500"`
}
