package rota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEvaluateSlot(t *testing.T) {
	today := date(2025, time.June, 10)
	viewer := NewViewerContext(7, nil)
	admin := NewViewerContext(7, []string{"lns"})

	testCases := []struct {
		name     string
		slot     *DutySlot
		viewer   ViewerContext
		expected SlotView
	}{
		{
			name: "empty slot today is claimable",
			slot: &DutySlot{
				Date: date(2025, time.June, 10), Branch: "lns",
				Occupants: nil, MaxOccupants: 2,
			},
			viewer:   viewer,
			expected: SlotView{IsEmpty: true, CanClaim: true},
		},
		{
			name: "self already assigned blocks claim",
			slot: &DutySlot{
				Date: date(2025, time.June, 10), Branch: "lns",
				Occupants: []UserRef{{ID: 7}}, MaxOccupants: 2,
			},
			viewer:   viewer,
			expected: SlotView{IsSelfAssigned: true},
		},
		{
			name: "past date blocks claim",
			slot: &DutySlot{
				Date: date(2025, time.June, 9), Branch: "lns",
				Occupants: nil, MaxOccupants: 2,
			},
			viewer:   viewer,
			expected: SlotView{IsEmpty: true},
		},
		{
			name: "future date is claimable",
			slot: &DutySlot{
				Date: date(2025, time.June, 11), Branch: "lns",
				Occupants: []UserRef{{ID: 3}}, MaxOccupants: 2,
			},
			viewer:   viewer,
			expected: SlotView{CanClaim: true},
		},
		{
			name: "full slot blocks claim even for admins",
			slot: &DutySlot{
				Date: date(2025, time.June, 11), Branch: "lns",
				Occupants: []UserRef{{ID: 3}, {ID: 4}}, MaxOccupants: 2,
			},
			viewer:   admin,
			expected: SlotView{CanManage: true},
		},
		{
			name: "admin rights are branch scoped",
			slot: &DutySlot{
				Date: date(2025, time.June, 11), Branch: "gp",
				Occupants: nil, MaxOccupants: 2,
			},
			viewer:   admin,
			expected: SlotView{IsEmpty: true, CanClaim: true},
		},
		{
			name: "self at capacity shows only the admin remove path",
			slot: &DutySlot{
				Date: date(2025, time.June, 11), Branch: "lns",
				Occupants: []UserRef{{ID: 7}, {ID: 4}}, MaxOccupants: 2,
			},
			viewer:   admin,
			expected: SlotView{IsSelfAssigned: true, CanManage: true},
		},
		{
			name:     "missing slot data is an empty slot, not an error",
			slot:     nil,
			viewer:   viewer,
			expected: SlotView{IsEmpty: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EvaluateSlot(tc.slot, tc.viewer, today))
		})
	}
}

func TestEvaluateSlotIgnoresTimeOfDay(t *testing.T) {
	// A slot dated today must stay claimable late in the evening.
	now := time.Date(2025, time.June, 10, 23, 30, 0, 0, time.UTC)
	slot := &DutySlot{Date: date(2025, time.June, 10), Branch: "lns", MaxOccupants: 1}

	view := EvaluateSlot(slot, NewViewerContext(7, nil), now)
	assert.True(t, view.CanClaim)
}

func TestSlotCapacityHelpers(t *testing.T) {
	slot := &DutySlot{
		Occupants:    []UserRef{{ID: 1}, {ID: 2}},
		MaxOccupants: 2,
	}
	assert.False(t, slot.HasCapacity())
	assert.True(t, slot.Occupied(1))
	assert.False(t, slot.Occupied(3))

	var missing *DutySlot
	assert.True(t, missing.HasCapacity())
	assert.False(t, missing.Occupied(1))
}

func TestPairedPreview(t *testing.T) {
	today := date(2025, time.June, 10)

	assert.True(t, PairedPreview("gp", today, today))
	assert.False(t, PairedPreview("gp", date(2025, time.June, 11), today), "preview is today only")
	assert.False(t, PairedPreview("", today, today), "no paired branch configured")
}

func TestUserRefDisplayName(t *testing.T) {
	assert.Equal(t, "Сова", UserRef{Nick: "Сова", Username: "owl"}.DisplayName())
	assert.Equal(t, "owl", UserRef{Username: "owl"}.DisplayName())
}
