package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"tpv/service"
	"tpv/utils"

	"github.com/gin-gonic/gin"
)

// Login exchanges staff credentials for an access/refresh token pair.
func Login(users *service.UserService, log *slog.Logger) gin.HandlerFunc {
	type Request struct {
		Login    string `json:"login" form:"login" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}

	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Login y contraseña son obligatorios"})
			return
		}

		user, err := users.Authenticate(c.Request.Context(), req.Login, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
				return
			}
			log.Error("login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error interno del servidor"})
			return
		}

		access, refresh, err := utils.GenerateTokens(string(user.Role), user.ID)
		if err != nil {
			log.Error("generate tokens", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No se pudieron generar los tokens"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token":  access,
			"refresh_token": refresh,
			"user":          user,
		})
	}
}

// Refresh trades a refresh token for a new pair.
func Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" form:"refresh_token"`
	}
	_ = c.ShouldBind(&req)
	if req.RefreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Refresh token is required"})
		return
	}

	access, refresh, err := utils.RefreshTokens(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}
