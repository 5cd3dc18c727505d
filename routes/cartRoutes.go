package routes

import (
	"github.com/Kariqs/amexan-storefront/controllers"
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine, c *controllers.CartController) {
	cart := server.Group("/cart")
	{
		cart.GET("", c.GetCart)
		cart.POST("/items", c.AddItem)
		cart.PATCH("/items/:productId", c.UpdateItem)
		cart.DELETE("/items/:productId", c.RemoveItem)
	}
}
