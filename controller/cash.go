package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tpv/report"
	"tpv/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// now is swapped in tests.
var now = time.Now

func CashTotal(cash *service.CashService) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := cash.Total(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "total": total})
	}
}

// CloseCash ends the business day. Nothing changes unless the whole close succeeds.
func CloseCash(cash *service.CashService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Password string `json:"password"`
		}
		// An empty body falls through to the password check.
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "Datos no válidos")
			return
		}

		daily, err := cash.Close(c.Request.Context(), req.Password)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Caja cerrada con éxito", daily)
	}
}

func SetClosePassword(cash *service.CashService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "La contraseña es obligatoria")
			return
		}
		if err := cash.SetPassword(c.Request.Context(), req.Password); err != nil {
			fail(c, err)
			return
		}
		ok(c, "Contraseña actualizada", nil)
	}
}

// dateRange reads ?inicio and ?fin, defaulting to the first of the current month and today.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	today := now()
	loc := today.Location()
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	if s := c.Query("inicio"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			badRequest(c, "Fecha de inicio no válida")
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if s := c.Query("fin"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			badRequest(c, "Fecha de fin no válida")
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	return from, to, true
}

func DailyCash(cash *service.CashService) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, valid := dateRange(c)
		if !valid {
			return
		}
		records, err := cash.DailyRange(c.Request.Context(), from, to)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, "Cajas diarias obtenidas", records)
	}
}

func ExportDailyCash(cash *service.CashService) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, valid := dateRange(c)
		if !valid {
			return
		}
		records, err := cash.DailyRange(c.Request.Context(), from, to)
		if err != nil {
			fail(c, err)
			return
		}
		buf, err := report.DailyCashSheet(records)
		if err != nil {
			fail(c, err)
			return
		}
		name := fmt.Sprintf("caja-diaria-%s-%s.xlsx", from.Format(dateLayout), to.Format(dateLayout))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

func DailyReport(cash *service.CashService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := idParam(c, "id")
		if !valid {
			return
		}
		daily, err := cash.Report(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(daily.Date)))
		c.Data(http.StatusOK, "application/pdf", daily.Report)
	}
}
