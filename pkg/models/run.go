package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run records one pass of the annotation pipeline over an uploaded image.
// Entries lists the archive entry names in write order once the run completes.
type Run struct {
	ID                  uuid.UUID  `db:"id"                   json:"id"`
	Status              string     `db:"status"               json:"status"`
	Provider            string     `db:"provider"             json:"provider"`
	ImageWidth          int        `db:"image_width"          json:"image_width"`
	ImageHeight         int        `db:"image_height"         json:"image_height"`
	RecommendationCount int        `db:"recommendation_count" json:"recommendation_count"`
	Entries             []string   `db:"entries"              json:"entries"`
	ErrorMessage        *string    `db:"error_message"        json:"error_message,omitempty"`
	CreatedAt           time.Time  `db:"created_at"           json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"           json:"updated_at"`
	CompletedAt         *time.Time `db:"completed_at"         json:"completed_at,omitempty"`
}
