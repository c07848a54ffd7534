package controller

import (
	"errors"
	"net/http"

	"tpv/service"

	"github.com/gin-gonic/gin"
)

func CreateCart(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Datos del carrito no válidos")
			return
		}
		cart, err := carts.Create(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, service.ErrProductNotFound) {
				failWith(c, http.StatusBadRequest, err)
				return
			}
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Carrito creado", "data": cart})
	}
}

func GetCart(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		cart, err := carts.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Carrito obtenido", cart)
	}
}

func DeleteCart(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		if err := carts.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		ok(c, "Carrito eliminado", nil)
	}
}
