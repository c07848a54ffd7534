package controller

import (
	"net/http"

	"tpv/service"

	"github.com/gin-gonic/gin"
)

func CreateUser(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Datos del usuario no válidos")
			return
		}
		user, err := users.Create(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Usuario creado", "data": user})
	}
}
