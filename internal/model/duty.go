package model

import "time"

// Duty is one occupant of one hour slot on one date in one branch.
// Insertion order (CreatedAt, then ID) is the display order of a slot's
// occupants. The uniqueness constraint keeps a user from occupying the
// same slot twice.
type Duty struct {
	ID         int64     `gorm:"autoIncrement;primaryKey"`
	BranchCode string    `gorm:"size:32;not null;uniqueIndex:idx_duty_slot_user;index:idx_duty_day"`
	Date       time.Time `gorm:"not null;uniqueIndex:idx_duty_slot_user;index:idx_duty_day"` // date-only, UTC midnight
	Hour       int       `gorm:"not null;uniqueIndex:idx_duty_slot_user"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_duty_slot_user;index"`
	CreatedAt  time.Time `gorm:"not null"`

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Branch Branch `gorm:"foreignKey:BranchCode;constraint:OnDelete:CASCADE"`
}
