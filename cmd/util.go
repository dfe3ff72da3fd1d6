package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"yieldpilot/api"
	"yieldpilot/internal/bank"
	"yieldpilot/internal/config"
	"yieldpilot/internal/domain"
	"yieldpilot/internal/ledger"
	"yieldpilot/internal/logger"
	"yieldpilot/internal/pilot"
	"yieldpilot/internal/queue"
	"yieldpilot/internal/repository"
	"yieldpilot/internal/scheduler"
	"yieldpilot/internal/service"
	"yieldpilot/internal/wrapper"
	"yieldpilot/internal/yieldsource"
)

type Dependencies struct {
	Handler   *api.ApiHandler
	Scheduler *scheduler.Scheduler
	Config    *config.Config
	Db        *sql.DB
}

func CloseDependencies(deps *Dependencies) error {
	deps.Scheduler.Stop()
	if deps.Db != nil {
		if err := deps.Db.Close(); err != nil {
			return fmt.Errorf("failed to close db: %w", err)
		}
	}
	return nil
}

// InitializeDependencies wires the whole system: base asset, share ledger,
// controller with the three simulated yield sources, withdrawal queue,
// wrapper, persistence, API handler, and scheduler.
func InitializeDependencies() (*Dependencies, error) {
	log := logger.New()

	configPath := os.Getenv("PILOT_CONFIG")
	if configPath == "" {
		configPath = "config.yml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	var (
		db                *sql.DB
		eventRepository   repository.LedgerEventRepository
		requestRepository repository.WithdrawalRequestRepository
	)
	if cfg.Database.ConnectionString != "" {
		db, err = sql.Open("postgres", cfg.Database.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		eventRepository, err = repository.NewLedgerEventRepository(db)
		if err != nil {
			return nil, err
		}
		requestRepository, err = repository.NewWithdrawalRequestRepository(db)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("no database configured, events and requests held in memory")
		eventRepository = repository.NewInMemoryLedgerEventRepository()
		requestRepository = repository.NewInMemoryWithdrawalRequestRepository()
	}

	baseToken := bank.NewToken(cfg.Ledger.BaseAssetSymbol)
	shareLedger := ledger.NewLedger(log)
	stats := service.NewYieldStatsService()

	orchestrator := service.NewOrchestratorService(shareLedger, eventRepository, requestRepository, stats, log)
	orchestrator.AddSupportedToken(baseToken)

	controller := pilot.NewController("core", baseToken, log)
	fixed := yieldsource.NewFixedSource("fixed-rate", baseToken, controller.Account())
	pooled := yieldsource.NewPooledSource("pooled-vault", baseToken, controller.Account())
	margin := yieldsource.NewMarginSource("margin-desk", baseToken, controller.Account())
	controller.AddSource(fixed)
	controller.AddSource(pooled)
	controller.AddSource(margin)
	err = controller.SetStrategy([]domain.StrategyEntry{
		{SourceID: fixed.ID(), WeightBps: 5000},
		{SourceID: pooled.ID(), WeightBps: 3000},
		{SourceID: margin.ID(), WeightBps: 2000},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set default strategy: %w", err)
	}
	if err := orchestrator.RegisterController(controller); err != nil {
		return nil, err
	}

	withdrawalQueue := queue.NewQueue(baseToken, log)
	if err := orchestrator.SetWithdrawalQueue(withdrawalQueue); err != nil {
		return nil, err
	}

	handler := &api.ApiHandler{
		Orchestrator:    orchestrator,
		Wrapper:         wrapper.NewWrapper(shareLedger),
		Queue:           withdrawalQueue,
		BaseToken:       baseToken,
		Controllers:     map[uuid.UUID]*pilot.Controller{controller.ID(): controller},
		EventRepository: eventRepository,
		Stats:           stats,
		AdminJWTSecret:  cfg.Server.AdminJWTSecret,
		Log:             log,
	}

	return &Dependencies{
		Handler:   handler,
		Scheduler: scheduler.New(orchestrator, log),
		Config:    cfg,
		Db:        db,
	}, nil
}
