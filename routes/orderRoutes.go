package routes

import (
	"github.com/Kariqs/amexan-storefront/controllers"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, c *controllers.OrderController, authorize gin.HandlerFunc) {
	order := server.Group("/order", authorize)
	{
		order.POST("", c.CreateOrder)
		order.GET("/mine", c.GetMyOrders)
		order.GET("/:id", c.GetOrder)
		order.POST("/:id/paypal", c.CreatePayPalOrder)
		order.POST("/:id/paypal/approve", c.ApprovePayPalOrder)
	}

	admin := server.Group("/admin", authorize)
	{
		admin.GET("/orders", c.ListOrders)
		admin.GET("/summary", c.Summary)
		admin.PUT("/orders/:id/paid", c.MarkPaid)
		admin.PUT("/orders/:id/delivered", c.MarkDelivered)
		admin.DELETE("/orders/:id", c.DeleteOrder)
	}
}
