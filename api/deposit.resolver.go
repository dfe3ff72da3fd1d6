package api

import (
	"github.com/gin-gonic/gin"
)

type depositRequest struct {
	HolderID string `json:"holderID"`
	TokenID  string `json:"tokenID"`
	Amount   string `json:"amount"`
}

type depositResponse struct {
	Balance string `json:"balance"`
}

func (h ApiHandler) deposit(c *gin.Context) {
	var requestBody depositRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	holder, err := parseID(requestBody.HolderID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	tokenID, err := parseID(requestBody.TokenID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	amount, err := parseAmount(requestBody.Amount)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	if err := h.Orchestrator.Deposit(holder, tokenID, amount); err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, depositResponse{
		Balance: h.Orchestrator.BalanceOf(holder).String(),
	})
}
