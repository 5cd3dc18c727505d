package routes

import (
	"github.com/Kariqs/amexan-storefront/controllers"
	"github.com/Kariqs/amexan-storefront/middlewares"
	"github.com/Kariqs/amexan-storefront/services"
	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth    *controllers.AuthController
	User    *controllers.UserController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
}

// Register mounts every route group on server. Session cart and bearer
// token handling run for every request.
func Register(server *gin.Engine, c Controllers, tokens middlewares.TokenParser, authz *services.Authorizer, secureCookies bool) {
	server.Use(middlewares.SessionCart(secureCookies), middlewares.Authenticate(tokens))
	authorize := middlewares.Authorize(authz)

	DefaultRoutes(server)
	AuthRoutes(server, c.Auth)
	ProductRoutes(server, c.Product, authorize)
	CartRoutes(server, c.Cart)
	UserRoutes(server, c.User, authorize)
	OrderRoutes(server, c.Order, authorize)
}
