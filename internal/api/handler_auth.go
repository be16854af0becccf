package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rota-backend/internal/store"
)

type authBranch struct {
	Name      string `json:"name"`
	MaxDuties int    `json:"maxDuties"`
}

// GetAuth handles the GET /api/auth request: it resolves the viewer's
// branches and admin rights once at session start. Users without any
// membership get a 404, which the front-end renders as a forbidden screen.
func (h *Handler) GetAuth(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	branches, adminCodes, err := h.store.Viewer(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User is not a rota member"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
		}
		return
	}

	branchMap := make(map[string]authBranch, len(branches))
	for _, b := range branches {
		branchMap[b.Code] = authBranch{Name: b.Name, MaxDuties: b.MaxDuties}
	}
	if adminCodes == nil {
		adminCodes = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"rotaAdmin": adminCodes,
		"branches":  branchMap,
	})
}
