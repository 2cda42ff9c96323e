package disposal

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents disposal review state (matches disposal_status enum).
// pending may move to approved or rejected; both are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Disposal is one user-submitted waste disposal event (matches disposals table)
type Disposal struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	UserID          uuid.UUID      `db:"user_id" json:"user_id"`
	BinID           uuid.UUID      `db:"bin_id" json:"bin_id"`
	WasteType       string         `db:"waste_type" json:"waste_type"`
	VolumeLiters    int            `db:"volume_liters" json:"volume_liters"`
	EvidenceKey     string         `db:"evidence_key" json:"evidence_key"`
	EstimatedPoints int64          `db:"estimated_points" json:"estimated_points"`
	AwardedPoints   sql.NullInt64  `db:"awarded_points" json:"awarded_points,omitempty"`
	Status          Status         `db:"status" json:"status"`
	ReviewedBy      uuid.NullUUID  `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNote      sql.NullString `db:"review_note" json:"review_note,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	ReviewedAt      sql.NullTime   `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// wasteTypeWeights scales the per-liter score by material value
var wasteTypeWeights = map[string]int64{
	"plastico":   2,
	"papel":      1,
	"vidro":      2,
	"metal":      3,
	"organico":   1,
	"eletronico": 5,
}

// wasteTypeLabels are the display names used in ledger entry descriptions
var wasteTypeLabels = map[string]string{
	"plastico":   "plástico",
	"papel":      "papel",
	"vidro":      "vidro",
	"metal":      "metal",
	"organico":   "orgânico",
	"eletronico": "eletrônico",
}

// EstimatePoints computes the volume-multiplier score shown at submission.
// For auto-credit bins this value is also the credited amount; for reviewed
// disposals it is a display hint and the administrator's value is final.
func EstimatePoints(wasteType string, volumeLiters int, basePointValue int64) int64 {
	weight, ok := wasteTypeWeights[wasteType]
	if !ok {
		weight = 1
	}
	return int64(volumeLiters) * weight * basePointValue
}

// Description returns the ledger entry label for a disposal of this type
func Description(wasteType string) string {
	label, ok := wasteTypeLabels[wasteType]
	if !ok {
		label = wasteType
	}
	return "Descarte de " + label
}
