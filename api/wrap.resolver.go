package api

import (
	"github.com/gin-gonic/gin"
)

type wrapRequest struct {
	HolderID string `json:"holderID"`
	Amount   string `json:"amount"`
}

type wrapResponse struct {
	Units       string `json:"units"`
	HolderUnits string `json:"holderUnits"`
}

func (h ApiHandler) wrap(c *gin.Context) {
	var requestBody wrapRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	holder, err := parseID(requestBody.HolderID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	amount, err := parseAmount(requestBody.Amount)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	units, err := h.Wrapper.Wrap(holder, amount)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, wrapResponse{
		Units:       units.String(),
		HolderUnits: h.Wrapper.UnitsOf(holder).String(),
	})
}

type unwrapRequest struct {
	HolderID string `json:"holderID"`
	Units    string `json:"units"`
}

type unwrapResponse struct {
	Amount  string `json:"amount"`
	Balance string `json:"balance"`
}

func (h ApiHandler) unwrap(c *gin.Context) {
	var requestBody unwrapRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	holder, err := parseID(requestBody.HolderID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	units, err := parseAmount(requestBody.Units)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	amount, err := h.Wrapper.Unwrap(holder, units)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, unwrapResponse{
		Amount:  amount.String(),
		Balance: h.Orchestrator.BalanceOf(holder).String(),
	})
}

func (h ApiHandler) exchangeRate(c *gin.Context) {
	c.JSON(200, gin.H{
		"rate":       h.Wrapper.ExchangeRate().String(),
		"totalUnits": h.Wrapper.TotalUnits().String(),
	})
}
