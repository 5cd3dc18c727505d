package routes

import (
	"github.com/Kariqs/amexan-storefront/controllers"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, c *controllers.AuthController) {
	auth := server.Group("/auth")
	{
		auth.POST("/signup", c.Signup)
		auth.POST("/login", c.Login)
	}
}
