package evidence

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ProcessStatus tracks the background thumbnailing pipeline
type ProcessStatus string

const (
	StatusUploaded  ProcessStatus = "uploaded"
	StatusProcessed ProcessStatus = "processed"
	StatusFailed    ProcessStatus = "failed"
)

// Upload is a stored disposal photo (matches evidence_uploads table)
type Upload struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	UserID       uuid.UUID      `db:"user_id" json:"user_id"`
	Key          string         `db:"key" json:"key"`
	ThumbKey     sql.NullString `db:"thumb_key" json:"-"`
	MimeType     string         `db:"mime_type" json:"mime_type"`
	SizeBytes    int64          `db:"size_bytes" json:"size_bytes"`
	Status       ProcessStatus  `db:"status" json:"status"`
	Attempts     int            `db:"attempts" json:"-"`
	ProcessError sql.NullString `db:"process_error" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
