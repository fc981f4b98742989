package handlers

import (
	"net/http"

	"signn-go/internal/repository"
	"signn-go/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	log *zap.Logger
}

func NewAuthHandler(log *zap.Logger) *AuthHandler {
	return &AuthHandler{log: log}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Language string `json:"language"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Language string `json:"language"`
}

type riderResponse struct {
	ID                uint    `json:"id"`
	Username          string  `json:"username"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Language          string  `json:"language"`
	BaselineLatencyMs float64 `json:"baseline_latency_ms"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login payload"})
		return
	}

	rider, err := repository.GetRiderByUsername(c.Request.Context(), req.Username)
	if err != nil || !rider.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	if req.Language != "" && req.Language != rider.Language {
		if err := repository.UpdateRiderLanguage(c.Request.Context(), rider.ID, req.Language); err != nil {
			h.log.Warn("Failed to update rider language", zap.Uint("riderID", rider.ID), zap.Error(err))
		} else {
			rider.Language = req.Language
		}
	}

	session := sessions.Default(c)
	session.Set("riderID", rider.ID)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	c.JSON(http.StatusOK, riderResponse{
		ID:                rider.ID,
		Username:          rider.Username,
		Name:              rider.Name,
		Email:             rider.Email,
		Language:          rider.Language,
		BaselineLatencyMs: rider.BaselineLatencyMs,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration payload"})
		return
	}
	if !utils.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}
	if !utils.IsComplexPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password does not meet complexity requirements"})
		return
	}

	rider, err := repository.CreateRider(req.Username, req.Password, req.Name, req.Email, req.Language)
	if err != nil {
		h.log.Error("Failed to create rider", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "failed to create rider"})
		return
	}

	c.JSON(http.StatusCreated, riderResponse{
		ID:                rider.ID,
		Username:          rider.Username,
		Name:              rider.Name,
		Email:             rider.Email,
		Language:          rider.Language,
		BaselineLatencyMs: rider.BaselineLatencyMs,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to logout"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the logged-in rider's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	riderID, ok := currentRiderID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rider, err := repository.GetRiderByID(c.Request.Context(), riderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rider not found"})
		return
	}

	c.JSON(http.StatusOK, riderResponse{
		ID:                rider.ID,
		Username:          rider.Username,
		Name:              rider.Name,
		Email:             rider.Email,
		Language:          rider.Language,
		BaselineLatencyMs: rider.BaselineLatencyMs,
	})
}

// currentRiderID extracts the authenticated rider from the cookie session.
func currentRiderID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	riderID, ok := session.Get("riderID").(uint)
	return riderID, ok
}
