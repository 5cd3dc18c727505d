package routes

import (
	"github.com/Kariqs/amexan-storefront/controllers"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(server *gin.Engine, c *controllers.ProductController, authorize gin.HandlerFunc) {
	product := server.Group("/product")
	{
		product.GET("", c.GetProducts)
		product.GET("/latest", c.GetLatest)
		product.GET("/categories", c.GetCategories)
		product.GET("/slug/:slug", c.GetProductBySlug)
		product.GET("/:id", c.GetProduct)

		product.POST("", authorize, c.CreateProduct)
		product.PUT("/:id", authorize, c.UpdateProduct)
		product.DELETE("/:id", authorize, c.DeleteProduct)
		product.POST("/:id/images", authorize, c.UploadProductImages)
	}
}
