package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
	"yieldpilot/internal/pilot"
	"yieldpilot/internal/queue"
	"yieldpilot/internal/repository"
	"yieldpilot/internal/service"
	"yieldpilot/internal/wrapper"
)

type ApiHandler struct {
	Orchestrator    service.OrchestratorService
	Wrapper         *wrapper.Wrapper
	Queue           *queue.Queue
	BaseToken       *bank.Token
	Controllers     map[uuid.UUID]*pilot.Controller
	EventRepository repository.LedgerEventRepository
	Stats           service.YieldStatsService
	AdminJWTSecret  string
	Log             *zap.SugaredLogger
}

func (h ApiHandler) StartApi(port int) error {
	return h.Router().Run(fmt.Sprintf(":%d", port))
}

func (h ApiHandler) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(h.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to yieldpilot"})
	})
	router.POST("/deposit", h.deposit)
	router.POST("/withdraw", h.withdraw)
	router.POST("/claim", h.claim)
	router.POST("/wrap", h.wrap)
	router.POST("/unwrap", h.unwrap)
	router.GET("/exchangeRate", h.exchangeRate)
	router.GET("/balance/:holder", h.balance)
	router.GET("/requests/:holder", h.requests)

	admin := router.Group("/admin", h.adminAuthMiddleware())
	admin.POST("/rebase", h.rebase)
	admin.POST("/harvest", h.harvest)
	admin.POST("/fundRequest", h.fundRequest)
	admin.POST("/fundAvailable", h.fundAvailable)
	admin.POST("/setStrategy", h.setStrategy)
	admin.POST("/invest", h.invest)
	admin.POST("/divest", h.divest)
	admin.POST("/registerController", h.registerController)
	admin.POST("/deregisterController", h.deregisterController)
	admin.POST("/pauseSource", h.pauseSource)
	admin.POST("/unpauseSource", h.unpauseSource)
	admin.POST("/emergencyWithdraw", h.emergencyWithdraw)
	admin.GET("/aum", h.aum)
	admin.GET("/yieldStats", h.yieldStats)
	admin.GET("/events", h.events)

	return router
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, statusForError(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	zap.S().Errorw("request failed", "route", c.Request.URL.Path, "err", err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// statusForError maps the domain sentinels onto HTTP statuses so callers can
// tell bad input from bad state without parsing messages.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAllocation),
		errors.Is(err, domain.ErrUnsupportedToken),
		errors.Is(err, domain.ErrUnregisteredController):
		return 400
	case errors.Is(err, domain.ErrUnauthorized):
		return 403
	case errors.Is(err, domain.ErrRequestNotFound):
		return 404
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientShares),
		errors.Is(err, domain.ErrInsufficientLiquidity),
		errors.Is(err, domain.ErrNotFunded),
		errors.Is(err, domain.ErrAlreadyClaimed),
		errors.Is(err, domain.ErrInactiveSource),
		errors.Is(err, domain.ErrReentrantCall):
		return 409
	default:
		return 500
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", s, domain.ErrInvalidAmount)
	}
	return amount, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse id %q: %w", s, domain.ErrInvalidAmount)
	}
	return id, nil
}

func (h ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	start := time.Now().UTC()
	ctx.Next()
	if h.Log == nil {
		return
	}
	h.Log.Infow("api request",
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"ip", ctx.ClientIP(),
	)
}
