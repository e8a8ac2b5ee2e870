package http

import (
	"fulfillment-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Router(svc service.FulfillmentService, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	h := NewFulfillmentHandler(svc, log)

	r.GET("/orders/:orderId", h.GetOrder)
	r.GET("/orders/:orderId/status", h.GetCurrentStoreStatus)
	r.POST("/orders/:orderId/status", h.AdvanceStoreStatus)
	r.GET("/store-status/values", h.GetStoreStatusValues)

	r.POST("/orders/:orderId/partner", h.AssignPartner)
	r.POST("/orders/:orderId/delivery-status", h.UpdateDeliveryStatus)

	r.POST("/orders/:orderId/return/request", h.RequestReturn)
	r.POST("/orders/:orderId/return/complete", h.CompleteReturn)
	r.POST("/orders/:orderId/items/:itemId/cancel", h.CancelItem)

	r.POST("/orders/:orderId/payment/success", h.ConfirmPayment)

	r.GET("/stores/:storeId/orders", h.ListStoreOrders)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}
