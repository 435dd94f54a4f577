package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradie-match-server/apperror"
	"tradie-match-server/discovery"
	"tradie-match-server/middleware"
)

func (h *Handler) registerDiscoveryRoutes(rg *gin.RouterGroup) {
	rg.GET("/:mode", h.feed)
}

// feed returns the ranked tiles for dating or hiring. Query parameters
// override the default filters.
func (h *Handler) feed(c *gin.Context) {
	filters := discovery.DefaultFilters()
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.respondError(c, apperror.NewInvalidInput("Invalid filters", err))
		return
	}
	tiles, err := h.deps.Discovery.Feed(c.Request.Context(), middleware.AccountID(c), discovery.Mode(c.Param("mode")), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": tiles, "count": len(tiles)})
}
