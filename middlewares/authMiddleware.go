package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ventures_backend/utils"
)

type authString string

// AuthMiddleware requires a bearer token and copies its claims into the
// request context (user id, user name, company id, admin flag).
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		const bearer = "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		validate, err := utils.JwtValidate(auth[len(bearer):])
		if err != nil || !validate.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), authString("auth"), claim)
		ctx = utils.SetTokenInContext(ctx, auth[len(bearer):])
		ctx = utils.SetUserIdInContext(ctx, claim.ID)
		ctx = utils.SetUserNameInContext(ctx, claim.Name)
		ctx = utils.SetIsAdminInContext(ctx, claim.IsAdmin)
		if claim.CompanyId != "" {
			ctx = utils.SetCompanyIdInContext(ctx, claim.CompanyId)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// VentureScope pins the request to the venture in the :id path parameter.
// Non-admin tokens may only address their own venture.
func VentureScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ventureId := c.Param("id")
		claim := CtxValue(c.Request.Context())
		if claim == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !claim.IsAdmin && claim.CompanyId != ventureId {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		ctx := utils.SetCompanyIdInContext(c.Request.Context(), ventureId)
		// admins act inside the addressed venture like its owner would
		ctx = utils.SetIsAdminInContext(ctx, false)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func CtxValue(ctx context.Context) *utils.JwtCustomClaim {
	raw, _ := ctx.Value(authString("auth")).(*utils.JwtCustomClaim)
	return raw
}
