package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rota-backend/internal/calendar"
	"rota-backend/internal/rota"
	"rota-backend/internal/store"
)

const dateLayout = "2006-01-02"

// GetRota handles the GET /api/rota request: the full day roster of one
// branch keyed by hour label. Hours without occupants are absent keys;
// the client treats them as empty slots.
func (h *Handler) GetRota(c *gin.Context) {
	branch := c.Query("branch")
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid date. Use YYYY-MM-DD."})
		return
	}

	if _, err := h.store.GetBranch(c.Request.Context(), branch); err != nil {
		if errors.Is(err, store.ErrBranchNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve branch"})
		}
		return
	}

	day, err := h.store.RotaDay(c.Request.Context(), branch, date)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rota"})
		return
	}
	c.JSON(http.StatusOK, day)
}

// GetRotaPreview handles GET /api/rotaPreview: the read-only roster of the
// branch's configured paired branch, served only for today's date. The
// preview never participates in capacity or claim logic.
func (h *Handler) GetRotaPreview(c *gin.Context) {
	branch := c.Query("branch")
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid date. Use YYYY-MM-DD."})
		return
	}

	b, err := h.store.GetBranch(c.Request.Context(), branch)
	if err != nil {
		if errors.Is(err, store.ErrBranchNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve branch"})
		}
		return
	}

	if !rota.PairedPreview(b.SecondaryCode, date, time.Now()) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	day, err := h.store.RotaDay(c.Request.Context(), b.SecondaryCode, date)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rota"})
		return
	}
	c.JSON(http.StatusOK, day)
}

type updateRotaRequest struct {
	Type      string `json:"type" binding:"required,oneof=add remove"`
	Branch    string `json:"branch" binding:"required"`
	Date      string `json:"date" binding:"required"`
	TimeRange string `json:"timeRange" binding:"required"`
	UserID    int64  `json:"userId" binding:"required"`
	ViewerID  int64  `json:"viewerId" binding:"required"`
}

// UpdateRota handles POST /api/updateRota: the authoritative single-slot
// write. The request is authorized through the slot evaluator — the same
// rules the client uses to decide which buttons to render — so a stale or
// hand-crafted request cannot overbook a slot or claim a past date.
func (h *Handler) UpdateRota(c *gin.Context) {
	var req updateRotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date. Use YYYY-MM-DD."})
		return
	}
	hour, err := rota.ParseHourLabel(req.TimeRange)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timeRange"})
		return
	}

	ctx := c.Request.Context()
	branch, err := h.store.GetBranch(ctx, req.Branch)
	if err != nil {
		if errors.Is(err, store.ErrBranchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve branch"})
		}
		return
	}

	_, adminCodes, err := h.store.Viewer(ctx, req.ViewerID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Viewer is not a rota member"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve viewer"})
		}
		return
	}
	viewer := rota.NewViewerContext(req.ViewerID, adminCodes)

	day, err := h.store.RotaDay(ctx, req.Branch, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rota"})
		return
	}
	slot := &rota.DutySlot{
		Label:        rota.HourLabel(hour),
		Date:         date,
		Branch:       req.Branch,
		Occupants:    day[rota.HourLabel(hour)],
		MaxOccupants: branch.MaxDuties,
	}
	view := rota.EvaluateSlot(slot, viewer, time.Now())

	switch req.Type {
	case "add":
		selfClaim := req.UserID == req.ViewerID
		if selfClaim && !view.CanClaim {
			c.JSON(http.StatusConflict, gin.H{"error": "Slot cannot be claimed"})
			return
		}
		// Admin assignment bypasses the date and identity gates but never
		// the capacity check.
		if !selfClaim && (!view.CanManage || !slot.HasCapacity()) {
			status := http.StatusForbidden
			if view.CanManage {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": "Assignment not permitted"})
			return
		}
		err = h.store.AddDuty(ctx, req.Branch, date, hour, req.UserID)
	case "remove":
		// Removal carries no past-date gate: admins may clean up history,
		// users may always release their own slots.
		if !view.CanManage && req.UserID != req.ViewerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Removal not permitted"})
			return
		}
		err = h.store.RemoveDuty(ctx, req.Branch, date, hour, req.UserID)
	}

	switch {
	case err == nil:
	case errors.Is(err, store.ErrSlotFull), errors.Is(err, store.ErrAlreadyAssigned), errors.Is(err, store.ErrNotAssigned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rota"})
		return
	}

	h.cache.InvalidateSubstring("branch=" + req.Branch)
	if req.UserID != req.ViewerID {
		h.notifier.NotifyRotaChange(req.UserID, req.Branch, date, hour, req.Type == "add")
	}

	updated, err := h.store.RotaDay(ctx, req.Branch, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rota"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

type rotaMultiRequest struct {
	Branch             string   `json:"branch" binding:"required"`
	StartDate          string   `json:"startDate" binding:"required"`
	EndDate            string   `json:"endDate" binding:"required"`
	TimeRanges         []string `json:"timeRanges" binding:"required,min=1"`
	DaysOfWeek         []int    `json:"daysOfWeek"`
	UserID             int64    `json:"userId" binding:"required"`
	ViewerID           int64    `json:"viewerId" binding:"required"`
	AllowOccupiedSlots *bool    `json:"allowOccupiedSlots"`
}

func (h *Handler) bulkParams(c *gin.Context) (store.BulkParams, bool) {
	var req rotaMultiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return store.BulkParams{}, false
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate. Use YYYY-MM-DD."})
		return store.BulkParams{}, false
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil || end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate. Use YYYY-MM-DD."})
		return store.BulkParams{}, false
	}

	hours := make([]int, 0, len(req.TimeRanges))
	for _, tr := range req.TimeRanges {
		hour, err := rota.ParseHourLabel(tr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timeRange " + tr})
			return store.BulkParams{}, false
		}
		hours = append(hours, hour)
	}

	_, adminCodes, err := h.store.Viewer(c.Request.Context(), req.ViewerID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Viewer is not a rota member"})
		return store.BulkParams{}, false
	}
	if !rota.NewViewerContext(req.ViewerID, adminCodes).IsAdmin(req.Branch) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bulk edits require admin rights"})
		return store.BulkParams{}, false
	}

	allowOccupied := true
	if req.AllowOccupiedSlots != nil {
		allowOccupied = *req.AllowOccupiedSlots
	}

	return store.BulkParams{
		Branch:             req.Branch,
		Start:              calendar.DateOnly(start),
		End:                calendar.DateOnly(end),
		DaysOfWeek:         req.DaysOfWeek,
		Hours:              hours,
		UserID:             req.UserID,
		AllowOccupiedSlots: allowOccupied,
	}, true
}

// AddRotaMulti handles POST /api/addRotaMulti: an admin bulk assignment
// across a date range with weekday and hour filters. Capacity is honored
// per slot; skipped slots do not fail the batch.
func (h *Handler) AddRotaMulti(c *gin.Context) {
	params, ok := h.bulkParams(c)
	if !ok {
		return
	}

	modified, err := h.store.BulkAdd(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, store.ErrBranchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Bulk add failed"})
		}
		return
	}

	h.cache.InvalidateSubstring("branch=" + params.Branch)
	c.JSON(http.StatusOK, gin.H{"modifiedCount": modified})
}

// RemoveRotaMulti handles POST /api/removeRotaMulti, the bulk counterpart
// of a single-slot remove.
func (h *Handler) RemoveRotaMulti(c *gin.Context) {
	params, ok := h.bulkParams(c)
	if !ok {
		return
	}

	modified, err := h.store.BulkRemove(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Bulk remove failed"})
		return
	}

	h.cache.InvalidateSubstring("branch=" + params.Branch)
	c.JSON(http.StatusOK, gin.H{"modifiedCount": modified})
}
