package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradie-match-server/middleware"
)

type openThreadRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handler) registerChatRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.listThreads)
	rg.POST("", h.openThread)
	rg.GET("/:id/messages", h.listMessages)
	rg.POST("/:id/messages", h.sendMessage)
}

func (h *Handler) listThreads(c *gin.Context) {
	threads, err := h.deps.Chat.Threads(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

func (h *Handler) openThread(c *gin.Context) {
	var req openThreadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	thread, err := h.deps.Chat.Open(c.Request.Context(), middleware.AccountID(c), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *Handler) listMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	msgs, err := h.deps.Chat.Messages(c.Request.Context(), middleware.AccountID(c), c.Param("id"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	msg, err := h.deps.Chat.Send(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
