package entity

import (
	"time"

	"github.com/google/uuid"
)

// UTMParameter names a UTM key that asset-minimum rules can refer to by id.
type UTMParameter struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UTMParameter string    `db:"utm_parameter" json:"utm_parameter"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
