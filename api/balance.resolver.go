package api

import (
	"github.com/gin-gonic/gin"
)

type balanceResponse struct {
	Balance      string `json:"balance"`
	WrappedUnits string `json:"wrappedUnits"`
	Underlying   string `json:"underlying"`
	AssetBalance string `json:"assetBalance"`
}

func (h ApiHandler) balance(c *gin.Context) {
	holder, err := parseID(c.Param("holder"))
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, balanceResponse{
		Balance:      h.Orchestrator.BalanceOf(holder).String(),
		WrappedUnits: h.Wrapper.UnitsOf(holder).String(),
		Underlying:   h.Wrapper.UnderlyingOf(holder).String(),
		AssetBalance: h.BaseToken.BalanceOf(holder).String(),
	})
}
