package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradie-match-server/middleware"
	"tradie-match-server/models"
	"tradie-match-server/services"
)

type declineRequest struct {
	Reason string `json:"reason"`
}

// jobAction is a lifecycle event that needs no body.
type jobAction func(jobs JobAPI, ctx context.Context, accountID, jobID string) (*models.Job, error)

// registerJobRoutes maps one endpoint onto each lifecycle event.
func (h *Handler) registerJobRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.listJobs)
	rg.GET("/pending-count", h.pendingCount)
	rg.POST("", h.requestJob)
	rg.GET("/:id", h.getJob)

	rg.POST("/:id/approve", h.act(JobAPI.Approve))
	rg.POST("/:id/decline", h.declineJob)
	rg.POST("/:id/accept", h.act(JobAPI.Accept))
	rg.POST("/:id/request-info", h.act(JobAPI.RequestInfo))
	rg.POST("/:id/provide-info", h.provideInfo)
	rg.POST("/:id/quote", h.submitQuote)
	rg.POST("/:id/accept-quote", h.act(JobAPI.AcceptQuote))
	rg.POST("/:id/decline-quote", h.act(JobAPI.DeclineQuote))
	rg.POST("/:id/request-booking", h.requestBooking)
	rg.POST("/:id/confirm-booking", h.act(JobAPI.ConfirmBooking))
	rg.POST("/:id/pay", h.act(JobAPI.Pay))
	rg.POST("/:id/start", h.act(JobAPI.Start))
	rg.POST("/:id/complete", h.act(JobAPI.Complete))
	rg.POST("/:id/review", h.reviewJob)
}

func (h *Handler) act(action jobAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := action(h.deps.Jobs, c.Request.Context(), middleware.AccountID(c), c.Param("id"))
		h.respondJob(c, job, err)
	}
}

func (h *Handler) respondJob(c *gin.Context, job *models.Job, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) listJobs(c *gin.Context) {
	list, err := h.deps.Jobs.List(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) pendingCount(c *gin.Context) {
	n, err := h.deps.Jobs.PendingCount(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_count": n})
}

func (h *Handler) getJob(c *gin.Context) {
	view, err := h.deps.Jobs.Get(c.Request.Context(), middleware.AccountID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) requestJob(c *gin.Context) {
	var req services.CreateJobRequest
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.deps.Jobs.Request(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) declineJob(c *gin.Context) {
	var req declineRequest
	_ = c.ShouldBindJSON(&req)
	job, err := h.deps.Jobs.Decline(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req.Reason)
	h.respondJob(c, job, err)
}

// provideInfo takes a multipart form with a description field and one to
// five photos.
func (h *Handler) provideInfo(c *gin.Context) {
	files, err := readUploads(c, "photos", models.MaxInfoPhotos)
	if err != nil {
		h.respondError(c, err)
		return
	}
	job, err := h.deps.Jobs.ProvideInfo(c.Request.Context(), middleware.AccountID(c), c.Param("id"), c.PostForm("description"), files)
	h.respondJob(c, job, err)
}

func (h *Handler) submitQuote(c *gin.Context) {
	var req services.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.deps.Jobs.Quote(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req)
	h.respondJob(c, job, err)
}

func (h *Handler) requestBooking(c *gin.Context) {
	var req services.BookingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.deps.Jobs.RequestBooking(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req)
	h.respondJob(c, job, err)
}

func (h *Handler) reviewJob(c *gin.Context) {
	var req services.ReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.deps.Jobs.Review(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req)
	h.respondJob(c, job, err)
}
