package entity

import coreEntity "booking-router/core/entity"

// StyleConfiguration is the booking widget look for one user.
type StyleConfiguration struct {
	coreEntity.BaseEntity
	Email    string `db:"email" json:"email"`
	BgColor  string `db:"bg_color" json:"bg_color"`
	FontSize int    `db:"font_size" json:"font_size"`
}
