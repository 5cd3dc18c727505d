package routes

import (
	"github.com/Kariqs/amexan-storefront/controllers"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func DefaultRoutes(server *gin.Engine) {
	server.GET("/", controllers.GetHome)
	server.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
