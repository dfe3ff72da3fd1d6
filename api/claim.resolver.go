package api

import (
	"github.com/gin-gonic/gin"
)

type claimRequest struct {
	HolderID  string `json:"holderID"`
	RequestID uint64 `json:"requestID"`
}

type claimResponse struct {
	Paid string `json:"paid"`
}

func (h ApiHandler) claim(c *gin.Context) {
	var requestBody claimRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	holder, err := parseID(requestBody.HolderID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	paid, err := h.Orchestrator.Claim(holder, requestBody.RequestID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, claimResponse{Paid: paid.String()})
}
