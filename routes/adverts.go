package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradie-match-server/middleware"
	"tradie-match-server/models"
	"tradie-match-server/services"
)

// registerAdvertRoutes registers the job board. Clients post adverts,
// tradespeople browse and take them.
func (h *Handler) registerAdvertRoutes(rg *gin.RouterGroup) {
	tradieOnly := middleware.RequireRole(string(models.RoleTradie))

	rg.POST("", h.createAdvert)
	rg.GET("/mine", h.myAdverts)
	rg.DELETE("/:id", h.deleteAdvert)

	rg.GET("/board", tradieOnly, h.advertBoard)
	rg.POST("/:id/hide", tradieOnly, h.hideAdvert)
	rg.POST("/:id/accept", tradieOnly, h.acceptAdvert)
}

func (h *Handler) createAdvert(c *gin.Context) {
	var req services.CreateAdvertRequest
	if !h.bindJSON(c, &req) {
		return
	}
	advert, err := h.deps.Adverts.Create(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, advert)
}

func (h *Handler) myAdverts(c *gin.Context) {
	adverts, err := h.deps.Adverts.ListMine(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adverts": adverts})
}

func (h *Handler) deleteAdvert(c *gin.Context) {
	if err := h.deps.Adverts.Delete(c.Request.Context(), middleware.AccountID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Advert deleted"})
}

func (h *Handler) advertBoard(c *gin.Context) {
	adverts, err := h.deps.Adverts.Board(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adverts": adverts})
}

func (h *Handler) hideAdvert(c *gin.Context) {
	if err := h.deps.Adverts.Hide(c.Request.Context(), middleware.AccountID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Advert hidden"})
}

func (h *Handler) acceptAdvert(c *gin.Context) {
	job, err := h.deps.Adverts.Accept(c.Request.Context(), middleware.AccountID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}
