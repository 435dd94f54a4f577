package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradie-match-server/middleware"
	"tradie-match-server/services"
)

type geolocationFailure struct {
	Code int `json:"code" binding:"required"`
}

type blockRequest struct {
	Source string `json:"source"`
}

func (h *Handler) registerProfileRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.getMyProfile)
	rg.PUT("/me", h.updateProfile)
	rg.PUT("/me/location", h.updateLocation)
	rg.POST("/me/location/error", h.geolocationFailed)
	rg.POST("/me/photos", h.addPhoto)
	rg.POST("/me/verification", h.submitVerification)
	rg.GET("/me/blocked", h.listBlocked)

	rg.GET("/:id", h.getProfile)
	rg.GET("/:id/availability", h.availability)
	rg.POST("/:id/block", h.blockUser)
	rg.DELETE("/:id/block", h.unblockUser)
}

func (h *Handler) getMyProfile(c *gin.Context) {
	p, err := h.deps.Profiles.Get(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.deps.Profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if p.ID != middleware.AccountID(c) {
		p = p.Public()
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.deps.Profiles.Update(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updateLocation(c *gin.Context) {
	var req services.LocationUpdate
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.deps.Profiles.UpdateLocation(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// geolocationFailed maps a browser geolocation error to the message the
// client shows. It never fails the caller's flow.
func (h *Handler) geolocationFailed(c *gin.Context) {
	var req geolocationFailure
	_ = c.ShouldBindJSON(&req)
	msg := h.deps.Profiles.GeolocationFailed(middleware.AccountID(c), req.Code)
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *Handler) addPhoto(c *gin.Context) {
	file, err := singleUpload(c, "photo")
	if err != nil {
		h.respondError(c, err)
		return
	}
	p, err := h.deps.Profiles.AddPhoto(c.Request.Context(), middleware.AccountID(c), file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) submitVerification(c *gin.Context) {
	file, err := singleUpload(c, "id_photo")
	if err != nil {
		h.respondError(c, err)
		return
	}
	p, err := h.deps.Profiles.SubmitVerification(c.Request.Context(), middleware.AccountID(c), file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) availability(c *gin.Context) {
	status, err := h.deps.Calendar.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) blockUser(c *gin.Context) {
	var req blockRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.deps.Profiles.Block(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req.Source); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User blocked"})
}

func (h *Handler) unblockUser(c *gin.Context) {
	if err := h.deps.Profiles.Unblock(c.Request.Context(), middleware.AccountID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unblocked"})
}

func (h *Handler) listBlocked(c *gin.Context) {
	blocked, err := h.deps.Profiles.ListBlocked(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": blocked})
}
