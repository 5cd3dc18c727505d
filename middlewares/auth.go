package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Kariqs/amexan-storefront/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCartCookie = "sessionCartId"
	sessionCartMaxAge = 30 * 24 * 60 * 60

	userKey        = "user"
	sessionCartKey = "sessionCartId"
)

// TokenParser turns a bearer token into an identity.
type TokenParser interface {
	ParseToken(token string) (*services.Identity, error)
}

// SessionCart makes sure every request carries an anonymous cart id,
// issuing a new cookie when the browser has none.
func SessionCart(secure bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := ctx.Cookie(SessionCartCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			ctx.SetSameSite(http.SameSiteLaxMode)
			ctx.SetCookie(SessionCartCookie, id, sessionCartMaxAge, "/", "", secure, true)
		}
		ctx.Set(sessionCartKey, id)
		ctx.Next()
	}
}

// Authenticate reads an optional bearer token. Requests without one go on
// anonymously; a bad token is rejected.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.Next()
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format"})
			return
		}

		identity, err := parser.ParseToken(parts[1])
		if err != nil {
			if !errors.Is(err, services.ErrInvalidToken) {
				ctx.Error(err)
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		ctx.Set(userKey, identity)
		ctx.Next()
	}
}

func GetIdentity(ctx *gin.Context) (*services.Identity, bool) {
	v, exists := ctx.Get(userKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*services.Identity)
	return identity, ok && identity != nil
}

func GetSessionCartID(ctx *gin.Context) string {
	return ctx.GetString(sessionCartKey)
}

// CartOwner addresses the signed-in user's cart, or the session cart.
func CartOwner(ctx *gin.Context) services.Owner {
	owner := services.Owner{SessionCartID: GetSessionCartID(ctx)}
	if identity, ok := GetIdentity(ctx); ok {
		owner.UserID = identity.UserID
	}
	return owner
}
