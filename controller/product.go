package controller

import (
	"net/http"

	"tpv/report"
	"tpv/service"

	"github.com/gin-gonic/gin"
)

func ListProducts(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.List(c.Request.Context(), c.Query("tipo"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Productos obtenidos", list)
	}
}

func GetProduct(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		product, err := products.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Producto obtenido", product)
	}
}

func CreateProduct(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in service.ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Datos del producto no válidos")
			return
		}
		product, err := products.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Producto creado", "data": product})
	}
}

func UpdateProduct(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		var patch service.ProductPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, "Datos del producto no válidos")
			return
		}
		product, err := products.Update(c.Request.Context(), id, patch)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Producto actualizado", product)
	}
}

func DeleteProduct(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		if err := products.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		ok(c, "Producto eliminado", nil)
	}
}

// ImportProducts loads products from the first sheet of an uploaded workbook
// (nombre, tipo, precio, stock). Unreadable rows are skipped and reported back.
func ImportProducts(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			badRequest(c, "El archivo Excel es obligatorio")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			fail(c, err)
			return
		}
		defer file.Close()

		rows, skipped, err := report.ReadProductRows(file)
		if err != nil {
			badRequest(c, "No se pudo leer el archivo Excel")
			return
		}
		if len(rows) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No hay filas válidas", "omitidas": skipped})
			return
		}

		inputs := make([]service.ProductInput, 0, len(rows))
		for _, r := range rows {
			inputs = append(inputs, service.ProductInput{Name: r.Name, Kind: r.Kind, Price: r.Price, Stock: r.Stock})
		}
		n, err := products.Import(c.Request.Context(), inputs)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Productos importados",
			"count":    n,
			"omitidas": skipped,
		})
	}
}

func ProductSales(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		sales, err := products.Sales(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Ventas obtenidas", sales)
	}
}
