package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alimrdn/solarportal/internal/helpers"
)

// Tariffs in rial per kWh by customer class.
var customerRates = map[string]int64{
	"residential": 1500,
	"commercial":  2000,
	"industrial":  1800,
}

type CalculateRequest struct {
	ConsumptionKwh int64  `json:"consumption_kwh" binding:"required,gt=0"`
	CustomerType   string `json:"customer_type" binding:"required"`
}

// CalculatePrice quotes an electricity bill from consumption and customer
// class using the tiered tariff table.
func CalculatePrice(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Consumption and customer type are required.")
		return
	}

	rate, ok := customerRates[req.CustomerType]
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, "Unknown customer type.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_type":   req.CustomerType,
		"consumption_kwh": req.ConsumptionKwh,
		"rate":            rate,
		"total_price":     req.ConsumptionKwh * rate,
	})
}
