package api

import (
	"github.com/gin-gonic/gin"
)

type withdrawRequest struct {
	HolderID string `json:"holderID"`
	Amount   string `json:"amount"`
}

type withdrawResponse struct {
	RequestID uint64 `json:"requestID"`
	Balance   string `json:"balance"`
}

func (h ApiHandler) withdraw(c *gin.Context) {
	var requestBody withdrawRequest
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

	id, err := h.Orchestrator.Withdraw(holder, amount)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, withdrawResponse{
		RequestID: id,
		Balance:   h.Orchestrator.BalanceOf(holder).String(),
	})
}
