package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/stretchr/testify/require"
)

func scopedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ventures/:id", AuthMiddleware(), VentureScope(), func(c *gin.Context) {
		companyId, _ := utils.GetCompanyIdFromContext(c.Request.Context())
		isAdmin, _ := utils.GetIsAdminFromContext(c.Request.Context())
		_, hasToken := utils.GetTokenFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"company_id": companyId, "is_admin": isAdmin, "token": hasToken})
	})
	return r
}

func get(t *testing.T, r http.Handler, path string, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	r := scopedRouter()
	require.Equal(t, http.StatusUnauthorized, get(t, r, "/ventures/v1", "").Code)
	require.Equal(t, http.StatusUnauthorized, get(t, r, "/ventures/v1", "not-a-jwt").Code)
}

func TestVentureScope(t *testing.T) {
	r := scopedRouter()

	owner, err := utils.JwtGenerate(1, "owner", "v1", false)
	require.NoError(t, err)
	w := get(t, r, "/ventures/v1", owner)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"company_id":"v1","is_admin":false,"token":true}`, w.Body.String())

	require.Equal(t, http.StatusForbidden, get(t, r, "/ventures/v2", owner).Code)

	admin, err := utils.JwtGenerate(2, "admin", "", true)
	require.NoError(t, err)
	w = get(t, r, "/ventures/v2", admin)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"company_id":"v2","is_admin":false,"token":true}`, w.Body.String())
}
