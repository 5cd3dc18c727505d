package routes

import (
	"github.com/Kariqs/amexan-storefront/controllers"
	"github.com/gin-gonic/gin"
)

func UserRoutes(server *gin.Engine, c *controllers.UserController, authorize gin.HandlerFunc) {
	profile := server.Group("/user/profile", authorize)
	{
		profile.GET("/address", c.GetAddress)
		profile.PUT("/address", c.UpdateAddress)
		profile.PUT("/payment-method", c.UpdatePaymentMethod)
	}
}
