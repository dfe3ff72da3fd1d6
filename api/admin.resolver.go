package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"yieldpilot/internal/domain"
	"yieldpilot/internal/pilot"
	"yieldpilot/internal/repository"
)

func (h ApiHandler) rebase(c *gin.Context) {
	aum, err := h.Orchestrator.Rebase()
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"totalAUM": aum.String()})
}

func (h ApiHandler) harvest(c *gin.Context) {
	harvested, err := h.Orchestrator.Harvest()
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"harvested": harvested.String()})
}

type fundRequestRequest struct {
	RequestID uint64 `json:"requestID"`
}

func (h ApiHandler) fundRequest(c *gin.Context) {
	var requestBody fundRequestRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	if err := h.Orchestrator.FundRequest(requestBody.RequestID); err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"message": "ok"})
}

func (h ApiHandler) fundAvailable(c *gin.Context) {
	funded, err := h.Orchestrator.FundAvailable()
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"funded": funded})
}

type setStrategyRequest struct {
	ControllerID string                 `json:"controllerID"`
	Entries      []domain.StrategyEntry `json:"entries"`
}

func (h ApiHandler) setStrategy(c *gin.Context) {
	var requestBody setStrategyRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	controller, err := h.controllerByID(requestBody.ControllerID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	if err := controller.SetStrategy(requestBody.Entries); err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"message": "ok"})
}

type allocationInput struct {
	SourceID string `json:"sourceID"`
	Amount   string `json:"amount"`
}

type rebalanceRequest struct {
	ControllerID string            `json:"controllerID"`
	Allocations  []allocationInput `json:"allocations"`
}

// invest and divest move funds between a controller's idle balance and its
// sources by explicit amounts, independent of the stored strategy.
func (h ApiHandler) invest(c *gin.Context) {
	h.rebalance(c, true)
}

func (h ApiHandler) divest(c *gin.Context) {
	h.rebalance(c, false)
}

func (h ApiHandler) rebalance(c *gin.Context, invest bool) {
	var requestBody rebalanceRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	controller, err := h.controllerByID(requestBody.ControllerID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	allocs := make([]pilot.Allocation, 0, len(requestBody.Allocations))
	for _, a := range requestBody.Allocations {
		sourceID, err := parseID(a.SourceID)
		if err != nil {
			returnErrorJson(err, c)
			return
		}
		amount, err := parseAmount(a.Amount)
		if err != nil {
			returnErrorJson(err, c)
			return
		}
		allocs = append(allocs, pilot.Allocation{SourceID: sourceID, Amount: amount})
	}
	if invest {
		err = controller.Invest(allocs)
	} else {
		err = controller.Divest(allocs)
	}
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"message": "ok"})
}

type controllerActionRequest struct {
	ControllerID string `json:"controllerID"`
}

// registerController binds a known controller to its asset's deposit flow.
// Controllers are constructed at wiring time; this toggles routing.
func (h ApiHandler) registerController(c *gin.Context) {
	var requestBody controllerActionRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	controller, err := h.controllerByID(requestBody.ControllerID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	if err := h.Orchestrator.RegisterController(controller); err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"message": "ok"})
}

func (h ApiHandler) deregisterController(c *gin.Context) {
	var requestBody controllerActionRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	controllerID, err := parseID(requestBody.ControllerID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	if err := h.Orchestrator.DeregisterController(controllerID); err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"message": "ok"})
}

type sourceActionRequest struct {
	ControllerID string `json:"controllerID"`
	SourceID     string `json:"sourceID"`
}

func (h ApiHandler) pauseSource(c *gin.Context) {
	h.toggleSource(c, true)
}

func (h ApiHandler) unpauseSource(c *gin.Context) {
	h.toggleSource(c, false)
}

func (h ApiHandler) toggleSource(c *gin.Context, pause bool) {
	var requestBody sourceActionRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	controller, err := h.controllerByID(requestBody.ControllerID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	sourceID, err := parseID(requestBody.SourceID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	if pause {
		err = controller.PauseSource(sourceID)
	} else {
		err = controller.UnpauseSource(sourceID)
	}
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"message": "ok"})
}

type emergencyWithdrawRequest struct {
	OperatorID string `json:"operatorID"`
}

func (h ApiHandler) emergencyWithdraw(c *gin.Context) {
	var requestBody emergencyWithdrawRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	operator, err := parseID(requestBody.OperatorID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	recovered, err := h.Orchestrator.EmergencyWithdraw(operator)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"recovered": recovered.String()})
}

func (h ApiHandler) aum(c *gin.Context) {
	c.JSON(200, gin.H{
		"totalAUM":      h.Orchestrator.CalculateTotalAUM().String(),
		"pendingQueue":  h.Queue.PendingAmount().String(),
		"reservedQueue": h.Queue.Reserved().String(),
	})
}

func (h ApiHandler) yieldStats(c *gin.Context) {
	summary, err := h.Stats.Summary()
	if err != nil {
		returnErrorJsonCode(err, c, 404)
		return
	}
	c.JSON(200, summary)
}

func (h ApiHandler) events(c *gin.Context) {
	filter := repository.LedgerEventListFilter{}
	if v := c.Query("type"); v != "" {
		filter.EventTypes = []domain.LedgerEventType{domain.LedgerEventType(v)}
	}
	if v := c.Query("actor"); v != "" {
		actor, err := parseID(v)
		if err != nil {
			returnErrorJson(err, c)
			return
		}
		filter.Actor = &actor
	}

	events, err := h.EventRepository.List(filter)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, gin.H{"events": events})
}

func (h ApiHandler) controllerByID(id string) (*pilot.Controller, error) {
	controllerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse controller id %q: %w", id, domain.ErrInvalidAmount)
	}
	c, ok := h.Controllers[controllerID]
	if !ok {
		return nil, fmt.Errorf("unknown controller %s: %w", controllerID, domain.ErrUnregisteredController)
	}
	return c, nil
}
