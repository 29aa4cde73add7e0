package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timekeep/internal/service"
)

type TimerHandler struct {
	timers *service.TimerService
	logger *zap.Logger
}

func NewTimerHandler(timers *service.TimerService, logger *zap.Logger) *TimerHandler {
	return &TimerHandler{timers: timers, logger: logger}
}

type timerRequest struct {
	TaskName     string  `json:"task_name" binding:"required"`
	PricePerHour float64 `json:"price_per_hour"`
	HeaderColor  string  `json:"header_color"`
}

func (h *TimerHandler) Create(c *gin.Context) {
	var req timerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	timer, err := h.timers.CreateTimer(c.Request.Context(), currentUserID(c), req.TaskName, req.PricePerHour, req.HeaderColor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"timer": timer})
}

func (h *TimerHandler) List(c *gin.Context) {
	timers, err := h.timers.ListTimers(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timers": timers})
}

func (h *TimerHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req timerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	timer, err := h.timers.UpdateTimer(c.Request.Context(), currentUserID(c), id, req.TaskName, req.PricePerHour, req.HeaderColor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timer": timer})
}

func (h *TimerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.timers.DeleteTimer(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Unassign removes a timer/project binding and its session history.
func (h *TimerHandler) Unassign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.timers.Unassign(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

type updateDeliverableRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *TimerHandler) UpdateDeliverable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	d, err := h.timers.UpdateDeliverable(c.Request.Context(), currentUserID(c), id, req.Name, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliverable": d})
}

func (h *TimerHandler) DeleteDeliverable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.timers.DeleteDeliverable(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type colorRequest struct {
	Color string `json:"color" binding:"required"`
}

func (h *TimerHandler) SaveColor(c *gin.Context) {
	var req colorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	color, err := h.timers.SaveColor(c.Request.Context(), currentUserID(c), req.Color)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"color": color})
}

func (h *TimerHandler) ListColors(c *gin.Context) {
	colors, err := h.timers.ListColors(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"colors": colors})
}
