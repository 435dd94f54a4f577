package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradie-match-server/calendar"
	"tradie-match-server/middleware"
)

type toggleSlotRequest struct {
	Date string        `json:"date" binding:"required"`
	Slot calendar.Slot `json:"slot" binding:"required"`
}

// rangeRequest names a day, week or month starting at Date.
type rangeRequest struct {
	Date  string `json:"date" binding:"required"`
	Range string `json:"range" binding:"required"`
}

func (h *Handler) registerCalendarRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.getCalendar)
	rg.GET("/status", h.calendarStatus)
	rg.POST("/toggle", h.toggleSlot)
	rg.POST("/block", h.blockRange)
	rg.POST("/clear", h.clearRange)
}

func (h *Handler) getCalendar(c *gin.Context) {
	cal, err := h.deps.Calendar.Get(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendar": cal})
}

func (h *Handler) calendarStatus(c *gin.Context) {
	status, err := h.deps.Calendar.Status(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) toggleSlot(c *gin.Context) {
	var req toggleSlotRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cal, err := h.deps.Calendar.Toggle(c.Request.Context(), middleware.AccountID(c), req.Date, req.Slot)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendar": cal})
}

func (h *Handler) blockRange(c *gin.Context) {
	var req rangeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cal, err := h.deps.Calendar.Block(c.Request.Context(), middleware.AccountID(c), req.Date, req.Range)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendar": cal})
}

func (h *Handler) clearRange(c *gin.Context) {
	var req rangeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.deps.Calendar.Clear(c.Request.Context(), middleware.AccountID(c), req.Date, req.Range)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
