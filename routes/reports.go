package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradie-match-server/middleware"
	"tradie-match-server/services"
)

func (h *Handler) registerReportRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.submitReport)
	rg.GET("/mine", h.myReports)
}

// submitReport files a report against a user, or a dispute when the body
// names an archived job.
func (h *Handler) submitReport(c *gin.Context) {
	var req services.ReportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	report, err := h.deps.Reports.Submit(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) myReports(c *gin.Context) {
	reports, err := h.deps.Reports.Mine(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
