package bin

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Bin represents a waste collection point with a printed QR code (matches bins table)
type Bin struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	Latitude    float64        `db:"latitude" json:"latitude"`
	Longitude   float64        `db:"longitude" json:"longitude"`
	WasteTypes  pq.StringArray `db:"waste_types" json:"waste_types"`
	QRCode      string         `db:"qr_code" json:"qr_code"`
	AutoCredit  bool           `db:"auto_credit" json:"auto_credit"`
	Active      bool           `db:"active" json:"active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AcceptsWasteType reports whether the bin collects the given waste type
func (b *Bin) AcceptsWasteType(wasteType string) bool {
	for _, t := range b.WasteTypes {
		if t == wasteType {
			return true
		}
	}
	return false
}
