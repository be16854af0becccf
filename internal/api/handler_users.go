package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rota-backend/internal/model"
	"rota-backend/internal/rota"
	"rota-backend/internal/store"
)

type userResponse struct {
	ID       int64  `json:"id"`
	Nick     string `json:"nick"`
	Username string `json:"username"`
	Color    int    `json:"color"`
}

// GetUsers handles the GET /api/users request: the branch's member
// directory, used by the assignment search popup and as the user id set
// driving statistics queries.
func (h *Handler) GetUsers(c *gin.Context) {
	branch := c.Query("branch")
	if branch == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "branch is required"})
		return
	}

	users, err := h.store.UsersByBranch(c.Request.Context(), branch)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID, Nick: u.Nick, Username: u.Username, Color: u.Color})
	}
	c.JSON(http.StatusOK, out)
}

type updateUserRequest struct {
	Branch   string      `json:"branch" binding:"required"`
	User     userPayload `json:"userObj" binding:"required"`
	ViewerID int64       `json:"viewerId" binding:"required"`
}

// userPayload mirrors the admin form: a null id means a new user.
type userPayload struct {
	ID       *int64 `json:"id"`
	Nick     string `json:"nick" binding:"required"`
	Username string `json:"username" binding:"required"`
	Color    int    `json:"color"`
}

func (h *Handler) requireAdmin(c *gin.Context, viewerID int64, branch string) bool {
	_, adminCodes, err := h.store.Viewer(c.Request.Context(), viewerID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Viewer is not a rota member"})
		return false
	}
	if !rota.NewViewerContext(viewerID, adminCodes).IsAdmin(branch) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
		return false
	}
	return true
}

// UpdateUser handles POST /api/updateUser: create or edit a branch member.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireAdmin(c, req.ViewerID, req.Branch) {
		return
	}

	user := model.User{
		Nick:     req.User.Nick,
		Username: req.User.Username,
		Color:    req.User.Color,
	}
	if req.User.ID != nil {
		user.ID = *req.User.ID
	}

	saved, err := h.store.SaveUser(c.Request.Context(), req.Branch, user)
	if err != nil {
		if errors.Is(err, store.ErrBranchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		}
		return
	}

	h.cache.InvalidateSubstring("branch=" + req.Branch)
	c.JSON(http.StatusOK, userResponse{ID: saved.ID, Nick: saved.Nick, Username: saved.Username, Color: saved.Color})
}

type removeUserRequest struct {
	Branch       string `json:"branch" binding:"required"`
	ModifyUserID int64  `json:"modifyUserId" binding:"required"`
	ViewerID     int64  `json:"viewerId" binding:"required"`
}

// RemoveUser handles POST /api/removeUser: drop a member from the branch
// together with their duties there.
func (h *Handler) RemoveUser(c *gin.Context) {
	var req removeUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireAdmin(c, req.ViewerID, req.Branch) {
		return
	}

	if err := h.store.RemoveUser(c.Request.Context(), req.Branch, req.ModifyUserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found in branch"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove user"})
		}
		return
	}

	h.cache.InvalidateSubstring("branch=" + req.Branch)
	c.Status(http.StatusOK)
}
