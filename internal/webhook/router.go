package webhook

import (
	"github.com/gin-gonic/gin"
)

// SetupWebhookRoutes exposes event ingress. The garage simulator posts
// without credentials; the route is protected by its own rate limit class.
func SetupWebhookRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/webhook", controller.ReceiveEvent) // POST /api/v1/webhook
}
