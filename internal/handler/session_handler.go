package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timekeep/internal/model"
	"timekeep/internal/service"
)

type SessionHandler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

func NewSessionHandler(sessions *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

type startSessionRequest struct {
	AssignmentID int `json:"assignment_id" binding:"required"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), currentUserID(c), req.AssignmentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *SessionHandler) Pause(c *gin.Context)  { h.transition(c, h.sessions.Pause) }
func (h *SessionHandler) Resume(c *gin.Context) { h.transition(c, h.sessions.Resume) }
func (h *SessionHandler) Stop(c *gin.Context)   { h.transition(c, h.sessions.Stop) }

func (h *SessionHandler) transition(c *gin.Context, apply func(ctx context.Context, userID, sessionID int) (*model.TimerSession, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := apply(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

type editSessionRequest struct {
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	Note             *string    `json:"note"`
	DeliverableID    *int       `json:"deliverable_id"`
	ClearDeliverable bool       `json:"clear_deliverable"`
}

// Edit applies a manual override to a session's times, note and deliverable.
func (h *SessionHandler) Edit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req editSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.sessions.Edit(c.Request.Context(), currentUserID(c), id, service.SessionEdit{
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Note:             req.Note,
		DeliverableID:    req.DeliverableID,
		ClearDeliverable: req.ClearDeliverable,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Running lists every open session in the caller's workspace.
func (h *SessionHandler) Running(c *gin.Context) {
	sessions, err := h.sessions.Running(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// History lists an assignment's sessions.
func (h *SessionHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessions, err := h.sessions.History(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
