package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicavet/vet-scheduler/internal/auth"
	"github.com/clinicavet/vet-scheduler/internal/config"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/httpresp"
	"github.com/clinicavet/vet-scheduler/internal/middleware"
	"github.com/clinicavet/vet-scheduler/internal/session"
)

type AuthHandler struct {
	svc      *auth.Service
	sessions session.Store
	cfg      *config.Config
}

func NewAuthHandler(svc *auth.Service, sessions session.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions, cfg: cfg}
}

// --------- Requests ---------

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("email and password are required"))
		return
	}

	user, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	token, err := h.sessions.Create(c.Request.Context(), *user)
	if err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}

	// Bearer token for clients that cannot hold the cookie.
	jwtToken, err := h.svc.GenerateToken(*user)
	if err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}

	c.SetCookie(session.CookieName, token, int(h.cfg.SessionTTL.Seconds()), "/", "", false, true)

	httpresp.OK(c, gin.H{
		"user":    user,
		"token":   jwtToken,
		"message": "login successful",
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("name, email and password are required"))
		return
	}

	userID, err := h.svc.Register(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.Created(c, gin.H{
		"user_id": userID,
		"message": "user registered successfully",
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if tokenVal, exists := c.Get(middleware.ContextSessionToken); exists {
		if token, ok := tokenVal.(string); ok {
			if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
				httperr.WriteError(c, httperr.Internal(err))
				return
			}
		}
	}

	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
	httpresp.Message(c, "session closed")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("current and new password are required"))
		return
	}

	user, _ := middleware.UserFromContext(c)
	if err := h.svc.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.Message(c, "password updated successfully")
}

// VerifySession reports whether the caller holds a live session. Unlike the
// guarded routes it answers 200 either way.
func (h *AuthHandler) VerifySession(c *gin.Context) {
	token, err := c.Cookie(session.CookieName)
	if err == nil && token != "" {
		user, err := h.sessions.Get(c.Request.Context(), token)
		if err != nil {
			httperr.WriteError(c, httperr.Internal(err))
			return
		}
		if user != nil {
			httpresp.OK(c, gin.H{"authenticated": true, "user": user})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       false,
		"authenticated": false,
		"message":       "no active session",
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	profile, err := h.svc.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"user": profile})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("name and phone are required"))
		return
	}

	user, _ := middleware.UserFromContext(c)
	profile, err := h.svc.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Phone)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	// Keep the cookie session's snapshot in sync with the new profile.
	if tokenVal, exists := c.Get(middleware.ContextSessionToken); exists {
		if token, ok := tokenVal.(string); ok {
			if err := h.sessions.Update(c.Request.Context(), token, *profile); err != nil {
				httperr.WriteError(c, httperr.Internal(err))
				return
			}
		}
	}

	httpresp.OK(c, gin.H{
		"user":    profile,
		"message": "profile updated successfully",
	})
}
