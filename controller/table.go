package controller

import (
	"net/http"

	"tpv/model"
	"tpv/service"

	"github.com/gin-gonic/gin"
)

func ListTables(tables *service.TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := tables.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Mesas obtenidas", list)
	}
}

func GetTable(tables *service.TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		table, err := tables.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Mesa obtenida", table)
	}
}

func CreateTable(tables *service.TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Number int `json:"numero" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "El número de mesa es obligatorio")
			return
		}
		table, err := tables.Create(c.Request.Context(), req.Number)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Mesa creada", "data": table})
	}
}

func DeleteTable(tables *service.TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		if err := tables.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		ok(c, "Mesa eliminada", nil)
	}
}

// CloseTable takes the payment of a table and frees it.
func CloseTable(tables *service.TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		var req struct {
			PaymentMethod model.PaymentBreakdown `json:"metodoPago"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Método de pago no válido")
			return
		}
		closed, err := tables.Close(c.Request.Context(), id, req.PaymentMethod)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Mesa cerrada con éxito", closed)
	}
}
