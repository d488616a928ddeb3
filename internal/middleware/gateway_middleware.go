package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/alimrdn/solarportal/internal/gateway"
)

func GatewayMiddleware(client *gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("gateway_client", client)
		c.Next()
	}
}

func GetGatewayClient(c *gin.Context) *gateway.Client {
	client, exists := c.Get("gateway_client")
	if !exists {
		return nil
	}
	return client.(*gateway.Client)
}
