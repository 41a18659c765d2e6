package handlers

import (
	"net/http"

	"civicreport-be/internal/models"
	"civicreport-be/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuthHandler exposes the account endpoints.
type AuthHandler struct {
	accounts   *service.AuthService
	production bool
	log        *zap.Logger
}

// NewAuthHandler wires the account handler. Production toggles the Secure
// flag on the auth cookie.
func NewAuthHandler(accounts *service.AuthService, production bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, production: production, log: log}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, "Registration successful", user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login. The token is returned in the body
// and mirrored into an HttpOnly cookie for browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	user, token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// invalid credentials look the same whether the email exists or not
		respond(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	h.setAuthCookie(c, token, 72*3600)

	respond(c, http.StatusOK, "Login successful", gin.H{
		"user":  user,
		"token": token,
	})
}

// Logout handles POST /api/auth/logout by expiring the auth cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	actorID, _, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	user, err := h.accounts.Me(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "User retrieved successfully", user)
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole handles PATCH /api/users/:id/role. Admin only.
func (h *AuthHandler) SetRole(c *gin.Context) {
	_, role, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.log, models.NewValidationError("id", "invalid user id"))
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.accounts.SetRole(c.Request.Context(), role, userID, models.Role(req.Role)); err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Role updated successfully", nil)
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string, maxAge int) {
	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   h.production,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(c.Writer, cookie)
}
