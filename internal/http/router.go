package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/cafe-cart/internal/service"
	"go.uber.org/zap"
)

const serviceName = "cart-service"

func NewRouter(svc service.Service, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.L()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger.Named("http.access")))

	r.GET("/health", healthHandler)

	h := NewCartHandler(svc, logger)

	cart := r.Group("/api/cart", UserID())
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.Clear)
		cart.POST("/clear", h.ClearCompat)

		cart.GET("/items", h.ListItems)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:itemId", h.UpdateQuantity)
		cart.DELETE("/items/:itemId", h.RemoveItem)
	}

	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}
