package middlewares

import (
	"net/http"

	"github.com/Kariqs/amexan-storefront/services"
	"github.com/gin-gonic/gin"
)

// Authorize checks the caller's role against the route policy. Anonymous
// callers get 401, signed-in callers without the role get 403.
func Authorize(authz *services.Authorizer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, signedIn := GetIdentity(ctx)

		allowed, err := authz.Allowed(identity, ctx.Request.URL.Path, ctx.Request.Method)
		if err != nil {
			ctx.Error(err)
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Authorization check failed"})
			return
		}
		if allowed {
			ctx.Next()
			return
		}

		if !signedIn {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	}
}
