package controller

import (
	"errors"
	"net/http"

	"tpv/model"
	"tpv/service"

	"github.com/gin-gonic/gin"
)

func CreateOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Datos del pedido no válidos")
			return
		}

		order, err := orders.Create(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, service.ErrProductNotFound) {
				failWith(c, http.StatusBadRequest, err)
				return
			}
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Pedido creado con éxito",
			"pedidoId": order.ID,
			"pedido":   order,
		})
	}
}

func ListOrders(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Pedidos obtenidos", list)
	}
}

func GetOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		order, err := orders.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Pedido obtenido", order)
	}
}

func UpdateOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		var req service.UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Datos del pedido no válidos")
			return
		}
		order, err := orders.Update(c.Request.Context(), id, req)
		if err != nil {
			if errors.Is(err, service.ErrProductNotFound) {
				failWith(c, http.StatusBadRequest, err)
				return
			}
			fail(c, err)
			return
		}
		ok(c, "Pedido actualizado", order)
	}
}

func DeleteOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		if err := orders.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		ok(c, "Pedido eliminado", nil)
	}
}

// PendingOrders feeds the kitchen and bar screens. ?tipo=plato|bebida narrows the items.
func PendingOrders(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.Pending(c.Request.Context(), service.KindsFor(c.Query("tipo")))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Pedidos pendientes", list)
	}
}

func SetItemState(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, valid := idParam(c, "id")
		if !valid {
			return
		}
		itemID, valid := idParam(c, "itemId")
		if !valid {
			return
		}
		var req struct {
			State model.PrepState `json:"estadoPreparacion" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Estado de preparación obligatorio")
			return
		}
		item, err := orders.SetItemState(c.Request.Context(), orderID, itemID, req.State)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Estado actualizado", item)
	}
}

// RemoveOrderItem needs StaffMiddleware in front of it for the audit user.
func RemoveOrderItem(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, valid := idParam(c, "id")
		if !valid {
			return
		}
		itemID, valid := idParam(c, "itemId")
		if !valid {
			return
		}
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User ID not found in context"})
			return
		}
		order, err := orders.RemoveItem(c.Request.Context(), orderID, itemID, userID)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Producto eliminado del pedido", order)
	}
}

func ListRemovals(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.Removals(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Eliminaciones obtenidas", list)
	}
}
