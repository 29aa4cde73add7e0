package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timekeep/internal/repository"
	"timekeep/internal/service"
)

// AdminHandler is the workspace owner's panel: pending registrations, team
// management and entity rollups. The router guards every route with the
// owner middleware.
type AdminHandler struct {
	auth   *service.AuthService
	team   *service.TeamService
	stats  *repository.StatsRepository
	logger *zap.Logger
}

func NewAdminHandler(auth *service.AuthService, team *service.TeamService, stats *repository.StatsRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, team: team, stats: stats, logger: logger}
}

// Summary is the owner panel's single overview payload.
func (h *AdminHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID := currentUserID(c)

	timers, err := h.stats.TimerStats(ctx, ownerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	customers, err := h.stats.CustomerStats(ctx, ownerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	projects, err := h.stats.ProjectStats(ctx, ownerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	members, err := h.team.ListMembers(ctx, ownerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	pending, err := h.auth.ListPending(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timers":    timers,
		"customers": customers,
		"projects":  projects,
		"members":   members,
		"pending":   pending,
	})
}

func (h *AdminHandler) ListPending(c *gin.Context) {
	pending, err := h.auth.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (h *AdminHandler) Approve(c *gin.Context) {
	token := c.Param("token")
	user, err := h.auth.Approve(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AdminHandler) Deny(c *gin.Context) {
	token := c.Param("token")
	if err := h.auth.Deny(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "denied"})
}

type addMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *AdminHandler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	member, err := h.team.AddMember(c.Request.Context(), currentUserID(c), req.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

func (h *AdminHandler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.team.RemoveMember(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *AdminHandler) ListMembers(c *gin.Context) {
	members, err := h.team.ListMembers(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}
