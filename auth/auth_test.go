package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tpv/service"
	"tpv/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/login", Login(service.NewUserService(nil), slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.POST("/auth/refresh", Refresh)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginRequiresCredentials(t *testing.T) {
	w := post(router(), "/auth/login", `{"login":"ana"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefresh(t *testing.T) {
	r := router()

	w := post(r, "/auth/refresh", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(r, "/auth/refresh", `{"refresh_token":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, refresh, err := utils.GenerateTokens("cocina", 3)
	require.NoError(t, err)
	w = post(r, "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	claims, err := utils.ValidateToken(body["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "cocina", claims["user_role"])
}
