package route

import (
	"log/slog"

	"tpv/auth"
	"tpv/controller"
	"tpv/model"
	"tpv/realtime"
	"tpv/service"
	"tpv/utils"

	"github.com/gin-gonic/gin"
)

// Services bundles what the routes need.
type Services struct {
	Orders   *service.OrderService
	Tables   *service.TableService
	Carts    *service.CartService
	Products *service.ProductService
	Cash     *service.CashService
	Users    *service.UserService
	Hub      *realtime.Hub
	Log      *slog.Logger
}

func TPVRoutes(router *gin.Engine, s Services) {
	staff := utils.StaffMiddleware()
	admin := utils.StaffMiddleware(string(model.RoleAdmin))

	router.GET("/ws", s.Hub.ServeWS)

	pedidos := router.Group("/pedidos")
	{
		pedidos.POST("", controller.CreateOrder(s.Orders))
		pedidos.GET("", controller.ListOrders(s.Orders))
		pedidos.GET("/pendientes", controller.PendingOrders(s.Orders))
		pedidos.GET("/:id", controller.GetOrder(s.Orders))
		pedidos.PUT("/:id", controller.UpdateOrder(s.Orders))
		pedidos.DELETE("/:id", controller.DeleteOrder(s.Orders))
		pedidos.PUT("/:id/producto/:itemId", controller.SetItemState(s.Orders))
		pedidos.DELETE("/:id/producto/:itemId", staff, controller.RemoveOrderItem(s.Orders))
	}
	router.GET("/eliminaciones", staff, controller.ListRemovals(s.Orders))

	mesas := router.Group("/mesas")
	{
		mesas.GET("", controller.ListTables(s.Tables))
		mesas.POST("", controller.CreateTable(s.Tables))
		mesas.GET("/:id", controller.GetTable(s.Tables))
		mesas.DELETE("/:id", controller.DeleteTable(s.Tables))
		mesas.POST("/:id/cerrar", controller.CloseTable(s.Tables))
	}

	caja := router.Group("/caja")
	{
		caja.GET("", controller.CashTotal(s.Cash))
		caja.POST("/cerrar", controller.CloseCash(s.Cash))
		caja.PUT("/password", admin, controller.SetClosePassword(s.Cash))
		caja.GET("/diaria", controller.DailyCash(s.Cash))
		caja.GET("/diaria/export", controller.ExportDailyCash(s.Cash))
		caja.GET("/diaria/:id/informe", controller.DailyReport(s.Cash))
	}

	productos := router.Group("/productos")
	{
		productos.GET("", controller.ListProducts(s.Products))
		productos.POST("", controller.CreateProduct(s.Products))
		productos.POST("/excel", controller.ImportProducts(s.Products))
		productos.GET("/:id", controller.GetProduct(s.Products))
		productos.PUT("/:id", controller.UpdateProduct(s.Products))
		productos.DELETE("/:id", controller.DeleteProduct(s.Products))
		productos.GET("/:id/ventas", controller.ProductSales(s.Products))
	}

	carts := router.Group("/carts")
	{
		carts.POST("", controller.CreateCart(s.Carts))
		carts.GET("/:id", controller.GetCart(s.Carts))
		carts.DELETE("/:id", controller.DeleteCart(s.Carts))
	}

	router.POST("/auth/login", auth.Login(s.Users, s.Log))
	router.POST("/auth/refresh", auth.Refresh)
	router.POST("/usuarios", admin, controller.CreateUser(s.Users))
}
