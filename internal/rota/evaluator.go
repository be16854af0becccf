package rota

import "time"

// UserRef is a lightweight reference to a person on the roster.
type UserRef struct {
	ID       int64  `json:"id"`
	Nick     string `json:"nick"`
	Username string `json:"username"`
	Color    int    `json:"color"`
}

// DisplayName returns the nick, falling back to the platform handle.
func (u UserRef) DisplayName() string {
	if u.Nick != "" {
		return u.Nick
	}
	return u.Username
}

// DutySlot is one bookable hour-slot on one date for one branch.
// Occupants keep insertion order; that order is display order, not priority.
type DutySlot struct {
	Label        string
	Date         time.Time
	Branch       string
	Occupants    []UserRef
	MaxOccupants int
}

// ViewerContext carries the logged-in user's id and the branches for which
// they hold admin rights. Immutable for the duration of a request.
type ViewerContext struct {
	UserID        int64
	AdminBranches map[string]bool
}

// NewViewerContext builds a ViewerContext from an admin branch list.
func NewViewerContext(userID int64, adminBranches []string) ViewerContext {
	set := make(map[string]bool, len(adminBranches))
	for _, b := range adminBranches {
		set[b] = true
	}
	return ViewerContext{UserID: userID, AdminBranches: set}
}

// IsAdmin reports whether the viewer manages the given branch.
func (v ViewerContext) IsAdmin(branch string) bool {
	return v.AdminBranches[branch]
}

// SlotView is the computed display/action state of a slot for one viewer.
type SlotView struct {
	IsEmpty        bool `json:"isEmpty"`
	IsSelfAssigned bool `json:"isSelfAssigned"`
	CanClaim       bool `json:"canClaim"`
	CanManage      bool `json:"canManage"`
}

// EvaluateSlot computes the slot's state for the viewer on the given day.
// A nil slot means a gap in server data and is treated as an empty slot.
// Claiming is gated on today-or-later, spare capacity and the viewer not
// already occupying the slot. Admin management bypasses the date and
// identity checks but never the capacity check; removal carries no
// past-date restriction.
func EvaluateSlot(slot *DutySlot, viewer ViewerContext, today time.Time) SlotView {
	if slot == nil {
		return SlotView{IsEmpty: true}
	}

	view := SlotView{
		IsEmpty:   len(slot.Occupants) == 0,
		CanManage: viewer.IsAdmin(slot.Branch),
	}
	for _, u := range slot.Occupants {
		if u.ID == viewer.UserID {
			view.IsSelfAssigned = true
			break
		}
	}

	view.CanClaim = !DateBefore(slot.Date, today) &&
		!view.IsSelfAssigned &&
		len(slot.Occupants) < slot.MaxOccupants

	return view
}

// HasCapacity reports whether one more occupant fits. It is the only gate
// applied to admin assignment; the date and identity checks are not.
func (s *DutySlot) HasCapacity() bool {
	if s == nil {
		return true
	}
	return len(s.Occupants) < s.MaxOccupants
}

// Occupied reports whether the given user is already in the slot.
func (s *DutySlot) Occupied(userID int64) bool {
	if s == nil {
		return false
	}
	for _, u := range s.Occupants {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// PairedPreview reports whether a read-only preview of the paired branch's
// occupants should be shown. The preview applies only when a paired branch
// is configured and the viewed date is today; it never participates in
// capacity or claim logic.
func PairedPreview(paired string, date, today time.Time) bool {
	return paired != "" && SameDate(date, today)
}

// SameDate compares two instants by calendar date only.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateBefore reports whether a falls on an earlier calendar date than b,
// ignoring time of day.
func DateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
