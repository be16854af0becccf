package model

import "time"

// User is a roster member. The ID is the messaging platform's user id.
type User struct {
	ID        int64     `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:64;not null"`
	Nick      string    `gorm:"size:128"`
	Color     int       `gorm:"not null"` // display color/category, also a stats filter key
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Membership links a user to a branch, optionally with admin rights there.
type Membership struct {
	UserID     int64  `gorm:"primaryKey;autoIncrement:false"`
	BranchCode string `gorm:"primaryKey;size:32"`
	Admin      bool   `gorm:"not null"`
	CreatedAt  time.Time

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Branch Branch `gorm:"foreignKey:BranchCode;constraint:OnDelete:CASCADE"`
}
