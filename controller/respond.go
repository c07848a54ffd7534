package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"tpv/service"

	"github.com/gin-gonic/gin"
)

const internalError = "Error interno del servidor"

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrPasswordNotSet), errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	failWith(c, statusFor(err), err)
}

func failWith(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"request_id", c.GetString("request_id"),
			"path", c.FullPath(),
			"error", err)
		c.JSON(status, gin.H{"success": false, "error": internalError})
		return
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func ok(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": data})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "Identificador no válido")
		return 0, false
	}
	return uint(id), true
}
