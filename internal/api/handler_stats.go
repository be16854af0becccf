package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rota-backend/internal/calendar"
)

type statsRequest struct {
	Branch     string              `json:"branch" binding:"required"`
	UserIDs    []int64             `json:"user_ids" binding:"required,min=1"`
	DateRanges []calendar.Interval `json:"dateRanges" binding:"required,min=1"`
}

// GetStats handles POST /api/stats: batch per-interval duty counts for a
// set of users. The dateRanges argument is exactly the shape produced by
// flattening a column tree, so the same endpoint serves the initial grid
// load, incremental column-group expansions and the personal stat cards.
func (h *Handler) GetStats(c *gin.Context) {
	var req statsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.store.CountDuties(c.Request.Context(), req.Branch, req.UserIDs, req.DateRanges)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetStatsGrid handles GET /api/stats/grid: the one-request bootstrap of
// the yearly branch grid — the column tree for the year plus a row per
// branch member covering every leaf interval of that tree.
func (h *Handler) GetStatsGrid(c *gin.Context) {
	branch := c.Query("branch")
	if branch == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "branch is required"})
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2200 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}

	users, err := h.store.UsersByBranch(c.Request.Context(), branch)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	userIDs := make([]int64, len(users))
	for i, u := range users {
		userIDs[i] = u.ID
	}

	tree := calendar.YearColumnTree(year)
	rows := []calendar.Row{}
	if len(userIDs) > 0 {
		stats, err := h.store.CountDuties(c.Request.Context(), branch, userIDs, calendar.FlattenIntervals(tree))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
			return
		}
		rows = calendar.BuildRows(stats)
	}

	// The grid widget binds an array of column defs: the month groups
	// plus the year total.
	c.JSON(http.StatusOK, gin.H{
		"columns": tree.Children,
		"rows":    rows,
	})
}

// GetUserDuties handles GET /api/userDuties: the user's upcoming duty
// hours per date, shown on the "my duties" card.
func (h *Handler) GetUserDuties(c *gin.Context) {
	branch := c.Query("branch")
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	start, err := time.Parse(dateLayout, c.Query("startDate"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate. Use YYYY-MM-DD."})
		return
	}
	end, err := time.Parse(dateLayout, c.Query("endDate"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate. Use YYYY-MM-DD."})
		return
	}

	duties, err := h.store.UserDuties(c.Request.Context(), branch, userID, start, end)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve duties"})
		return
	}
	c.JSON(http.StatusOK, duties)
}
