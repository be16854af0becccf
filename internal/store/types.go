package store

import (
	"errors"
	"time"
)

// Sentinel errors the API layer maps onto HTTP statuses.
var (
	ErrBranchNotFound  = errors.New("branch not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrSlotFull        = errors.New("slot is at capacity")
	ErrAlreadyAssigned = errors.New("user already assigned to slot")
	ErrNotAssigned     = errors.New("user not assigned to slot")
)

// DayDuties lists the duty hours of one user on one date.
type DayDuties struct {
	Date  time.Time `json:"date"`
	Hours []int     `json:"hours"`
}

// BulkParams describes an admin bulk edit: every configured hour of every
// day in [Start, End] whose weekday is listed gets the same add or remove
// applied for one user. DaysOfWeek uses Monday=0 .. Sunday=6.
type BulkParams struct {
	Branch             string
	Start              time.Time
	End                time.Time
	DaysOfWeek         []int
	Hours              []int
	UserID             int64
	AllowOccupiedSlots bool // add only: skip slots that already have occupants
}
