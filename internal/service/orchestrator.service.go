package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
	"yieldpilot/internal/ledger"
	"yieldpilot/internal/queue"
	"yieldpilot/internal/repository"
	"yieldpilot/internal/util"
)

// StrategyController is what the orchestrator needs from a controller. It is
// satisfied by *pilot.Controller; tests substitute their own.
type StrategyController interface {
	ID() uuid.UUID
	Name() string
	Account() uuid.UUID
	Token() *bank.Token
	BindOrchestrator(account uuid.UUID)
	ReceiveAndInvest(caller uuid.UUID, amount decimal.Decimal) error
	WithdrawToManager(manager uuid.UUID, amount decimal.Decimal) error
	Harvest(sourceIDs []uuid.UUID) (decimal.Decimal, error)
	TotalValue() decimal.Decimal
	EmergencyWithdraw(operator uuid.UUID) (decimal.Decimal, error)
}

// OrchestratorService is the single entry point holders and operators talk
// to. It owns the share ledger, routes deposits to the controller registered
// for the deposited asset, and drives the two-phase withdrawal queue.
type OrchestratorService interface {
	Account() uuid.UUID

	Deposit(holder uuid.UUID, tokenID uuid.UUID, amount decimal.Decimal) error
	Withdraw(holder uuid.UUID, amount decimal.Decimal) (uint64, error)
	Claim(holder uuid.UUID, requestID uint64) (decimal.Decimal, error)
	FundRequest(requestID uint64) error
	FundAvailable() ([]uint64, error)

	Rebase() (decimal.Decimal, error)
	Harvest() (decimal.Decimal, error)
	CalculateTotalAUM() decimal.Decimal
	BalanceOf(holder uuid.UUID) decimal.Decimal

	AddSupportedToken(token *bank.Token)
	RegisterController(controller StrategyController) error
	DeregisterController(controllerID uuid.UUID) error
	SetWithdrawalQueue(q *queue.Queue) error
	EmergencyWithdraw(operator uuid.UUID) (decimal.Decimal, error)
}

type orchestratorServiceHandler struct {
	account uuid.UUID
	guard   domain.CallGuard

	Ledger *ledger.Ledger

	// mu protects the registry below. The guard only serializes guarded
	// entry points against each other; admin registration and AUM reads run
	// outside it.
	mu    sync.Mutex
	queue *queue.Queue

	tokens      map[uuid.UUID]*bank.Token
	tokenOrder  []uuid.UUID
	controllers map[uuid.UUID]StrategyController
	// byToken maps an asset to the controller that invests it. One
	// controller per asset.
	byToken map[uuid.UUID]uuid.UUID

	EventRepository   repository.LedgerEventRepository
	RequestRepository repository.WithdrawalRequestRepository
	Stats             YieldStatsService

	log *zap.SugaredLogger
}

func NewOrchestratorService(
	shareLedger *ledger.Ledger,
	eventRepository repository.LedgerEventRepository,
	requestRepository repository.WithdrawalRequestRepository,
	stats YieldStatsService,
	log *zap.SugaredLogger,
) OrchestratorService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &orchestratorServiceHandler{
		account:           uuid.New(),
		Ledger:            shareLedger,
		tokens:            map[uuid.UUID]*bank.Token{},
		controllers:       map[uuid.UUID]StrategyController{},
		byToken:           map[uuid.UUID]uuid.UUID{},
		EventRepository:   eventRepository,
		RequestRepository: requestRepository,
		Stats:             stats,
		log:               log,
	}
}

func (h *orchestratorServiceHandler) Account() uuid.UUID { return h.account }

func (h *orchestratorServiceHandler) AddSupportedToken(token *bank.Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tokens[token.ID] = token
	for _, id := range h.tokenOrder {
		if id == token.ID {
			return
		}
	}
	h.tokenOrder = append(h.tokenOrder, token.ID)
}

// RegisterController binds a controller to its asset. The asset must already
// be supported; re-registering the same controller is a no-op.
func (h *orchestratorServiceHandler) RegisterController(controller StrategyController) error {
	h.mu.Lock()
	tokenID := controller.Token().ID
	if _, ok := h.tokens[tokenID]; !ok {
		h.mu.Unlock()
		return fmt.Errorf("failed to register controller %s: %w", controller.Name(), domain.ErrUnsupportedToken)
	}
	if _, ok := h.controllers[controller.ID()]; ok {
		h.mu.Unlock()
		return nil
	}
	if existing, ok := h.byToken[tokenID]; ok {
		h.mu.Unlock()
		return fmt.Errorf("failed to register controller %s: asset already handled by %s: %w", controller.Name(), existing, domain.ErrInvalidAllocation)
	}
	controller.BindOrchestrator(h.account)
	h.controllers[controller.ID()] = controller
	h.byToken[tokenID] = controller.ID()
	h.mu.Unlock()

	h.emitEvent(domain.EventStrategyUpdated, h.account, util.Pointer(controller.ID()), decimal.Zero, util.Pointer("controller registered: "+controller.Name()))
	return nil
}

// DeregisterController drops the routing entry. Funds already inside the
// controller stay there and keep counting toward AUM until emergency
// withdrawal, so deregistering never silently strands value.
func (h *orchestratorServiceHandler) DeregisterController(controllerID uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	controller, ok := h.controllers[controllerID]
	if !ok {
		return fmt.Errorf("failed to deregister controller %s: %w", controllerID, domain.ErrUnregisteredController)
	}
	if controller.TotalValue().IsPositive() {
		h.log.Warnw("deregistering controller that still holds value",
			"controller", controller.Name(),
			"value", controller.TotalValue().String(),
		)
	}
	delete(h.byToken, controller.Token().ID)
	delete(h.controllers, controllerID)
	return nil
}

func (h *orchestratorServiceHandler) SetWithdrawalQueue(q *queue.Queue) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.queue != nil {
		return fmt.Errorf("failed to set withdrawal queue: already set")
	}
	q.BindOrchestrator(h.account)
	h.queue = q
	return nil
}

func (h *orchestratorServiceHandler) withdrawalQueue() *queue.Queue {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queue
}

func (h *orchestratorServiceHandler) controllerFor(tokenID uuid.UUID) (StrategyController, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.byToken[tokenID]
	if !ok {
		return nil, false
	}
	return h.controllers[id], true
}

func (h *orchestratorServiceHandler) registeredControllers() []StrategyController {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]StrategyController, 0, len(h.controllers))
	for _, controller := range h.controllers {
		out = append(out, controller)
	}
	return out
}

// Deposit pulls amount of the given asset from the holder, credits shares
// worth that amount, and pushes the asset to the registered controller for
// investment in the same call.
func (h *orchestratorServiceHandler) Deposit(holder uuid.UUID, tokenID uuid.UUID, amount decimal.Decimal) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to deposit: %w", domain.ErrInvalidAmount)
	}
	h.mu.Lock()
	token, ok := h.tokens[tokenID]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("failed to deposit token %s: %w", tokenID, domain.ErrUnsupportedToken)
	}
	controller, ok := h.controllerFor(tokenID)
	if !ok {
		return fmt.Errorf("failed to deposit %s: %w", token.Symbol, domain.ErrUnregisteredController)
	}

	if err := token.Transfer(holder, h.account, amount); err != nil {
		return fmt.Errorf("failed to pull deposit from %s: %w", holder, err)
	}
	// Shares are minted only after the controller accepts the funds; an
	// invest failure returns the pulled amount, so a failed deposit leaves
	// the holder exactly as it found them.
	if err := controller.ReceiveAndInvest(h.account, amount); err != nil {
		if refundErr := token.Transfer(h.account, holder, amount); refundErr != nil {
			h.log.Errorw("failed to refund rejected deposit",
				"holder", holder.String(),
				"amount", amount.String(),
				"err", refundErr,
			)
		}
		return fmt.Errorf("failed to invest deposit: %w", err)
	}
	if _, err := h.Ledger.Mint(holder, amount); err != nil {
		return fmt.Errorf("failed to credit deposit: %w", err)
	}

	h.log.Infow("deposit accepted",
		"holder", holder.String(),
		"token", token.Symbol,
		"amount", amount.String(),
	)
	h.emitEvent(domain.EventDeposit, holder, util.Pointer(controller.ID()), amount, nil)
	return nil
}

// Withdraw burns amount from the holder's balance and opens a withdrawal
// request. The asset moves from the controller into the queue's account
// before any share is burned, so a controller-side failure leaves the holder
// untouched. The request still needs an explicit funding step before it can
// be claimed.
func (h *orchestratorServiceHandler) Withdraw(holder uuid.UUID, amount decimal.Decimal) (uint64, error) {
	if err := h.guard.Enter(); err != nil {
		return 0, err
	}
	defer h.guard.Exit()

	if !domain.IsPositiveAmount(amount) {
		return 0, fmt.Errorf("failed to withdraw: %w", domain.ErrInvalidAmount)
	}
	q := h.withdrawalQueue()
	if q == nil {
		return 0, fmt.Errorf("failed to withdraw: no withdrawal queue configured")
	}
	if h.Ledger.BalanceOf(holder).LessThan(amount) {
		return 0, fmt.Errorf("failed to withdraw %s for %s: %w", amount, holder, domain.ErrInsufficientBalance)
	}

	if err := h.raiseFunds(q, amount); err != nil {
		return 0, err
	}
	if _, err := h.Ledger.Burn(holder, amount); err != nil {
		return 0, fmt.Errorf("failed to burn withdrawn balance: %w", err)
	}
	id, err := q.RequestWithdraw(h.account, holder, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue withdrawal: %w", err)
	}

	h.log.Infow("withdrawal requested",
		"holder", holder.String(),
		"amount", amount.String(),
		"request", id,
	)
	h.persistRequest(id)
	h.emitEvent(domain.EventWithdrawRequested, holder, nil, amount, nil)
	return id, nil
}

// raiseFunds moves amount of the queue's asset into the queue account,
// spending the orchestrator's idle balance plus a controller drawdown for
// the shortfall. The drawdown runs first: it is the only step that can fail
// on liquidity, and when it does nothing has moved yet.
func (h *orchestratorServiceHandler) raiseFunds(q *queue.Queue, amount decimal.Decimal) error {
	token := q.Token()
	to := q.Account()
	fromIdle := decimal.Min(token.BalanceOf(h.account), amount)
	if shortfall := amount.Sub(fromIdle); shortfall.IsPositive() {
		controller, ok := h.controllerFor(token.ID)
		if !ok {
			return fmt.Errorf("failed to raise %s: %w", shortfall, domain.ErrInsufficientLiquidity)
		}
		if err := controller.WithdrawToManager(to, shortfall); err != nil {
			return fmt.Errorf("failed to raise %s from controller: %w", shortfall, err)
		}
	}
	if fromIdle.IsPositive() {
		if err := token.Transfer(h.account, to, fromIdle); err != nil {
			return fmt.Errorf("failed to move idle funds: %w", err)
		}
	}
	return nil
}

// FundRequest promotes one request to claimable.
func (h *orchestratorServiceHandler) FundRequest(requestID uint64) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	q := h.withdrawalQueue()
	if q == nil {
		return fmt.Errorf("failed to fund request: no withdrawal queue configured")
	}
	if err := q.Fund(requestID); err != nil {
		return err
	}
	h.persistRequest(requestID)
	h.emitEvent(domain.EventRequestFunded, h.account, nil, decimal.Zero, util.Pointer(fmt.Sprintf("request %d", requestID)))
	return nil
}

// FundAvailable funds pending requests in order until liquidity runs out.
func (h *orchestratorServiceHandler) FundAvailable() ([]uint64, error) {
	if err := h.guard.Enter(); err != nil {
		return nil, err
	}
	defer h.guard.Exit()

	q := h.withdrawalQueue()
	if q == nil {
		return nil, fmt.Errorf("failed to fund requests: no withdrawal queue configured")
	}
	funded := q.FundAvailable()
	for _, id := range funded {
		h.persistRequest(id)
		h.emitEvent(domain.EventRequestFunded, h.account, nil, decimal.Zero, util.Pointer(fmt.Sprintf("request %d", id)))
	}
	return funded, nil
}

// Claim pays out a funded request to its owner.
func (h *orchestratorServiceHandler) Claim(holder uuid.UUID, requestID uint64) (decimal.Decimal, error) {
	if err := h.guard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer h.guard.Exit()

	q := h.withdrawalQueue()
	if q == nil {
		return decimal.Zero, fmt.Errorf("failed to claim: no withdrawal queue configured")
	}
	paid, err := q.Claim(holder, requestID)
	if err != nil {
		return decimal.Zero, err
	}
	h.persistRequest(requestID)
	h.emitEvent(domain.EventRequestClaimed, holder, nil, paid, nil)
	return paid, nil
}

// Rebase repoints the share ledger at the current AUM and returns it. AUM is
// the orchestrator's idle balances plus every registered controller's total
// value; the queue's balance backs already-burned requests and is excluded.
func (h *orchestratorServiceHandler) Rebase() (decimal.Decimal, error) {
	if err := h.guard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer h.guard.Exit()

	aum := h.totalAUM()
	if err := h.Ledger.Rebase(aum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to rebase to %s: %w", aum, err)
	}
	if h.Stats != nil {
		h.Stats.Record(time.Now().UTC(), aum, h.Ledger.ScalingFactor())
	}
	h.log.Infow("rebase applied",
		"totalAUM", aum.String(),
		"scalingFactor", h.Ledger.ScalingFactor().String(),
	)
	h.emitEvent(domain.EventRebase, h.account, nil, aum, nil)
	return aum, nil
}

// Harvest collects pending rewards across every controller.
func (h *orchestratorServiceHandler) Harvest() (decimal.Decimal, error) {
	if err := h.guard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer h.guard.Exit()

	total := decimal.Zero
	for _, controller := range h.registeredControllers() {
		harvested, err := controller.Harvest(nil)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to harvest controller %s: %w", controller.Name(), err)
		}
		total = total.Add(harvested)
	}
	if total.IsPositive() {
		h.emitEvent(domain.EventHarvest, h.account, nil, total, nil)
	}
	return total, nil
}

func (h *orchestratorServiceHandler) CalculateTotalAUM() decimal.Decimal {
	return h.totalAUM()
}

func (h *orchestratorServiceHandler) totalAUM() decimal.Decimal {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := decimal.Zero
	for _, tokenID := range h.tokenOrder {
		total = total.Add(h.tokens[tokenID].BalanceOf(h.account))
	}
	for _, controller := range h.controllers {
		total = total.Add(controller.TotalValue())
	}
	return total
}

func (h *orchestratorServiceHandler) BalanceOf(holder uuid.UUID) decimal.Decimal {
	return h.Ledger.BalanceOf(holder)
}

// EmergencyWithdraw unwinds every controller and the orchestrator's idle
// balances straight to the operator, bypassing the queue.
func (h *orchestratorServiceHandler) EmergencyWithdraw(operator uuid.UUID) (decimal.Decimal, error) {
	if err := h.guard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer h.guard.Exit()

	recovered := decimal.Zero
	for _, controller := range h.registeredControllers() {
		amount, err := controller.EmergencyWithdraw(operator)
		if err != nil {
			return recovered, fmt.Errorf("failed to emergency-withdraw controller %s: %w", controller.Name(), err)
		}
		recovered = recovered.Add(amount)
	}
	h.mu.Lock()
	tokens := make([]*bank.Token, 0, len(h.tokenOrder))
	for _, tokenID := range h.tokenOrder {
		tokens = append(tokens, h.tokens[tokenID])
	}
	h.mu.Unlock()
	for _, token := range tokens {
		idle := token.BalanceOf(h.account)
		if !idle.IsPositive() {
			continue
		}
		if err := token.Transfer(h.account, operator, idle); err != nil {
			return recovered, fmt.Errorf("failed to emergency-withdraw idle %s: %w", token.Symbol, err)
		}
		recovered = recovered.Add(idle)
	}
	h.log.Warnw("emergency withdraw executed",
		"operator", operator.String(),
		"recovered", recovered.String(),
	)
	h.emitEvent(domain.EventEmergencyWithdraw, operator, nil, recovered, nil)
	return recovered, nil
}

func (h *orchestratorServiceHandler) emitEvent(eventType domain.LedgerEventType, actor uuid.UUID, controller *uuid.UUID, amount decimal.Decimal, note *string) {
	if h.EventRepository == nil {
		return
	}
	err := h.EventRepository.Add(domain.LedgerEvent{
		Type:          eventType,
		Actor:         actor,
		Controller:    controller,
		Amount:        amount,
		ScalingFactor: h.Ledger.ScalingFactor(),
		TotalShares:   h.Ledger.TotalShares(),
		Note:          note,
		At:            time.Now().UTC(),
	})
	if err != nil {
		h.log.Errorw("failed to record ledger event", "type", string(eventType), "err", err)
	}
}

func (h *orchestratorServiceHandler) persistRequest(id uint64) {
	if h.RequestRepository == nil {
		return
	}
	req, err := h.withdrawalQueue().GetRequest(id)
	if err != nil {
		h.log.Errorw("failed to load request for persistence", "request", id, "err", err)
		return
	}
	if err := h.RequestRepository.Upsert(*req); err != nil {
		h.log.Errorw("failed to persist withdrawal request", "request", id, "err", err)
	}
}
