package model

import "time"

// Branch represents one organizational department with its own roster.
type Branch struct {
	Code          string    `gorm:"primaryKey;size:32"`
	Name          string    `gorm:"size:128;not null"`
	MaxDuties     int       `gorm:"not null"` // slot capacity, branch-wide
	SecondaryCode string    `gorm:"size:32"`  // paired branch shown read-only for today
	DayStartHour  int       `gorm:"not null"`
	DayEndHour    int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}
