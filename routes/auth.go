package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradie-match-server/apperror"
	"tradie-match-server/middleware"
	"tradie-match-server/services"
)

// SignInRequest represents the sign in request
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token for refresh and sign-out.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type passwordResetConfirm struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// registerAuthRoutes registers authentication routes. The public entry
// points share the stricter per-IP limiter.
func (h *Handler) registerAuthRoutes(rg *gin.RouterGroup, authRequired, strict gin.HandlerFunc) {
	rg.POST("/signup", strict, h.signUp)
	rg.POST("/signin", strict, h.signIn)
	rg.POST("/refresh", h.refreshToken)
	rg.POST("/password-reset", strict, h.requestPasswordReset)
	rg.POST("/password-reset/confirm", strict, h.resetPassword)
	rg.POST("/verify-email", h.verifyEmail)

	rg.GET("/me", authRequired, h.me)
	rg.POST("/logout", authRequired, h.logout)
	rg.POST("/verify-email/send", authRequired, h.sendVerification)
	rg.DELETE("/account", authRequired, h.deleteAccount)
}

func (h *Handler) signUp(c *gin.Context) {
	var req services.SignUpRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.deps.Auth.SignUp(c.Request.Context(), req, session(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) signIn(c *gin.Context) {
	var req SignInRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.deps.Auth.SignIn(c.Request.Context(), req.Email, req.Password, session(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		h.respondError(c, apperror.NewValidation("Refresh token is required"))
		return
	}
	pair, err := h.deps.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// logout revokes the given refresh token, or every session when the body
// carries none.
func (h *Handler) logout(c *gin.Context) {
	var req RefreshRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.deps.Auth.SignOut(c.Request.Context(), middleware.AccountID(c), req.RefreshToken); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) requestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.deps.Auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req passwordResetConfirm
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.deps.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *Handler) sendVerification(c *gin.Context) {
	if err := h.deps.Auth.SendVerification(c.Request.Context(), middleware.AccountID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

func (h *Handler) verifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.deps.Auth.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// me always reads the account fresh so a just-verified email shows up.
func (h *Handler) me(c *gin.Context) {
	account, profile, err := h.deps.Auth.Me(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "profile": profile})
}

func (h *Handler) deleteAccount(c *gin.Context) {
	var req services.DeleteAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.deps.Auth.DeleteAccount(c.Request.Context(), middleware.Claims(c), req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
