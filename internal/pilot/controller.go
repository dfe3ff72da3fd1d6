// Package pilot implements the strategy controller: it owns a weighted list
// of yield-source adapters, distributes incoming capital across them, and
// unwinds positions when redemptions need funding. The controller never
// inspects which accounting model sits behind an adapter.
package pilot

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
	"yieldpilot/internal/yieldsource"
)

// Allocation is one explicit amount-to-source assignment used by the manual
// Invest/Divest operations.
type Allocation struct {
	SourceID uuid.UUID
	Amount   decimal.Decimal
}

type Controller struct {
	id      uuid.UUID
	name    string
	token   *bank.Token
	account uuid.UUID

	guard domain.CallGuard

	mu           sync.Mutex
	orchestrator uuid.UUID
	adapters     map[uuid.UUID]yieldsource.Adapter
	// sourceOrder keeps registration order so every iteration over adapters
	// is deterministic.
	sourceOrder []uuid.UUID
	strategy    []domain.StrategyEntry

	log *zap.SugaredLogger
}

func NewController(name string, token *bank.Token, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controller{
		id:       uuid.New(),
		name:     name,
		token:    token,
		account:  uuid.New(),
		adapters: map[uuid.UUID]yieldsource.Adapter{},
		log:      log,
	}
}

func (c *Controller) ID() uuid.UUID      { return c.id }
func (c *Controller) Name() string       { return c.name }
func (c *Controller) Account() uuid.UUID { return c.account }
func (c *Controller) Token() *bank.Token { return c.token }

// BindOrchestrator sets the only account allowed to push capital in through
// ReceiveAndInvest.
func (c *Controller) BindOrchestrator(account uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orchestrator = account
}

// AddSource registers an adapter. Registration is separate from the
// strategy: a registered source holds no weight until a strategy names it.
func (c *Controller) AddSource(a yieldsource.Adapter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.adapters[a.ID()]; ok {
		return
	}
	c.adapters[a.ID()] = a
	c.sourceOrder = append(c.sourceOrder, a.ID())
}

func (c *Controller) Source(id uuid.UUID) (yieldsource.Adapter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.adapters[id]
	return a, ok
}

// SetStrategy replaces the whole strategy atomically. Weights must sum to
// exactly 100% with every named source registered and active.
func (c *Controller) SetStrategy(entries []domain.StrategyEntry) error {
	if err := c.guard.Enter(); err != nil {
		return err
	}
	defer c.guard.Exit()

	if err := domain.ValidateStrategyWeights(entries); err != nil {
		return fmt.Errorf("failed to set strategy on %s: %w", c.name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		a, ok := c.adapters[e.SourceID]
		if !ok {
			return fmt.Errorf("failed to set strategy on %s: unknown source %s: %w", c.name, e.SourceID, domain.ErrInvalidAllocation)
		}
		if !a.IsActive() {
			return fmt.Errorf("failed to set strategy on %s: source %s inactive: %w", c.name, a.Name(), domain.ErrInvalidAllocation)
		}
	}
	c.strategy = append([]domain.StrategyEntry{}, entries...)
	c.log.Infow("strategy updated", "controller", c.name, "entries", len(entries))
	return nil
}

func (c *Controller) Strategy() []domain.StrategyEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.StrategyEntry{}, c.strategy...)
}

// ReceiveAndInvest pulls amount from the orchestrator's account and
// distributes it across the current strategy. With no strategy set the
// funds stay idle in the controller account.
func (c *Controller) ReceiveAndInvest(caller uuid.UUID, amount decimal.Decimal) error {
	if err := c.guard.Enter(); err != nil {
		return err
	}
	defer c.guard.Exit()

	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to invest into %s: %w", c.name, domain.ErrInvalidAmount)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if caller != c.orchestrator {
		return fmt.Errorf("failed to invest into %s: caller %s is not the orchestrator: %w", c.name, caller, domain.ErrUnauthorized)
	}
	// Liveness is checked before any funds move. A paused source fails the
	// whole call up front instead of leaving the deposit half-applied.
	for _, e := range c.strategy {
		if a := c.adapters[e.SourceID]; !a.IsActive() {
			return fmt.Errorf("failed to invest into %s: source %s inactive: %w", c.name, a.Name(), domain.ErrInactiveSource)
		}
	}
	if err := c.token.Transfer(c.orchestrator, c.account, amount); err != nil {
		return fmt.Errorf("failed to pull %s into %s: %w", amount, c.name, err)
	}
	if len(c.strategy) == 0 {
		c.log.Infow("no strategy set, funds held idle", "controller", c.name, "amount", amount.String())
		return nil
	}

	portions := splitByWeight(amount, c.strategy)
	for i, e := range c.strategy {
		if portions[i].IsZero() {
			continue
		}
		if _, err := c.adapters[e.SourceID].Deposit(portions[i]); err != nil {
			return fmt.Errorf("failed to deposit %s into source %s: %w", portions[i], c.adapters[e.SourceID].Name(), err)
		}
	}
	return nil
}

// splitByWeight divides amount per basis-point weights. Portions floor, and
// the last entry absorbs the integer-division remainder so the portions
// always sum to exactly amount.
func splitByWeight(amount decimal.Decimal, entries []domain.StrategyEntry) []decimal.Decimal {
	portions := make([]decimal.Decimal, len(entries))
	distributed := decimal.Zero
	bps := decimal.NewFromInt(domain.TotalWeightBps)
	for i, e := range entries {
		if i == len(entries)-1 {
			portions[i] = amount.Sub(distributed)
			break
		}
		portions[i] = domain.MulDivFloor(amount, decimal.NewFromInt(int64(e.WeightBps)), bps)
		distributed = distributed.Add(portions[i])
	}
	return portions
}

// Invest moves idle controller funds into sources per an explicit
// allocation list, independent of the stored strategy.
func (c *Controller) Invest(allocs []Allocation) error {
	if err := c.guard.Enter(); err != nil {
		return err
	}
	defer c.guard.Exit()
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, a := range allocs {
		if !domain.IsPositiveAmount(a.Amount) {
			return fmt.Errorf("failed to invest from %s: %w", c.name, domain.ErrInvalidAmount)
		}
		if _, ok := c.adapters[a.SourceID]; !ok {
			return fmt.Errorf("failed to invest from %s: unknown source %s: %w", c.name, a.SourceID, domain.ErrInvalidAllocation)
		}
		total = total.Add(a.Amount)
	}
	if c.token.BalanceOf(c.account).LessThan(total) {
		return fmt.Errorf("failed to invest %s from %s idle balance: %w", total, c.name, domain.ErrInsufficientLiquidity)
	}
	for _, a := range allocs {
		if _, err := c.adapters[a.SourceID].Deposit(a.Amount); err != nil {
			return fmt.Errorf("failed to deposit %s into source %s: %w", a.Amount, c.adapters[a.SourceID].Name(), err)
		}
	}
	return nil
}

// Divest pulls explicit amounts out of sources back into the idle balance.
func (c *Controller) Divest(allocs []Allocation) error {
	if err := c.guard.Enter(); err != nil {
		return err
	}
	defer c.guard.Exit()
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range allocs {
		adapter, ok := c.adapters[a.SourceID]
		if !ok {
			return fmt.Errorf("failed to divest from %s: unknown source %s: %w", c.name, a.SourceID, domain.ErrInvalidAllocation)
		}
		if adapter.GetBalance().LessThan(a.Amount) {
			return fmt.Errorf("failed to divest %s from source %s: %w", a.Amount, adapter.Name(), domain.ErrInsufficientLiquidity)
		}
	}
	for _, a := range allocs {
		if _, err := c.adapters[a.SourceID].WithdrawTo(c.account, a.Amount); err != nil {
			return fmt.Errorf("failed to divest %s from source %s: %w", a.Amount, c.adapters[a.SourceID].Name(), err)
		}
	}
	return nil
}

// WithdrawToManager raises amount and sends it to the manager account,
// spending the idle balance first and then drawing the shortfall from
// sources, weighted by the current strategy. Liquidity is checked up front
// so the operation never partially applies.
func (c *Controller) WithdrawToManager(manager uuid.UUID, amount decimal.Decimal) error {
	if err := c.guard.Enter(); err != nil {
		return err
	}
	defer c.guard.Exit()

	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to withdraw from %s: %w", c.name, domain.ErrInvalidAmount)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	idle := c.token.BalanceOf(c.account)
	if idle.Add(c.sourcesValueLocked()).LessThan(amount) {
		return fmt.Errorf("failed to withdraw %s from %s: %w", amount, c.name, domain.ErrInsufficientLiquidity)
	}

	remaining := amount
	if idle.IsPositive() {
		fromIdle := decimal.Min(idle, remaining)
		if err := c.token.Transfer(c.account, manager, fromIdle); err != nil {
			return fmt.Errorf("failed to move idle funds from %s: %w", c.name, err)
		}
		remaining = remaining.Sub(fromIdle)
	}
	if remaining.IsZero() {
		return nil
	}

	// First pass follows strategy weights; the sweep pass drains whatever
	// source still has balance, covering funds stranded outside the current
	// strategy.
	if len(c.strategy) > 0 {
		portions := splitByWeight(remaining, c.strategy)
		for i, e := range c.strategy {
			if remaining.IsZero() {
				break
			}
			adapter := c.adapters[e.SourceID]
			take := decimal.Min(decimal.Min(portions[i], adapter.GetBalance()), remaining)
			if !take.IsPositive() {
				continue
			}
			if _, err := adapter.WithdrawTo(manager, take); err != nil {
				return fmt.Errorf("failed to withdraw %s from source %s: %w", take, adapter.Name(), err)
			}
			remaining = remaining.Sub(take)
		}
	}
	for _, id := range c.sourceOrder {
		if remaining.IsZero() {
			break
		}
		adapter := c.adapters[id]
		take := decimal.Min(adapter.GetBalance(), remaining)
		if !take.IsPositive() {
			continue
		}
		if _, err := adapter.WithdrawTo(manager, take); err != nil {
			return fmt.Errorf("failed to withdraw %s from source %s: %w", take, adapter.Name(), err)
		}
		remaining = remaining.Sub(take)
	}
	if !remaining.IsZero() {
		return fmt.Errorf("failed to raise %s from %s, short by %s: %w", amount, c.name, remaining, domain.ErrInsufficientLiquidity)
	}
	return nil
}

// Harvest collects pending rewards from the given sources, or from every
// registered source when none are named. The sources in this system report
// zero; the flow is kept as the extension point for reward-bearing ones.
func (c *Controller) Harvest(sourceIDs []uuid.UUID) (decimal.Decimal, error) {
	if err := c.guard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer c.guard.Exit()
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(sourceIDs) == 0 {
		sourceIDs = c.sourceOrder
	}
	total := decimal.Zero
	for _, id := range sourceIDs {
		adapter, ok := c.adapters[id]
		if !ok {
			return decimal.Zero, fmt.Errorf("failed to harvest on %s: unknown source %s: %w", c.name, id, domain.ErrInvalidAllocation)
		}
		harvested, err := adapter.Harvest()
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to harvest source %s: %w", adapter.Name(), err)
		}
		total = total.Add(harvested)
	}
	if total.IsPositive() {
		c.log.Infow("harvest collected rewards", "controller", c.name, "amount", total.String())
	}
	return total, nil
}

// TotalValue is the controller's contribution to AUM: idle balance plus
// every registered source's reported balance. Registered-but-unweighted
// sources count too, so value stranded by a strategy replacement is never
// dropped from AUM.
func (c *Controller) TotalValue() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token.BalanceOf(c.account).Add(c.sourcesValueLocked())
}

func (c *Controller) sourcesValueLocked() decimal.Decimal {
	total := decimal.Zero
	for _, id := range c.sourceOrder {
		total = total.Add(c.adapters[id].GetBalance())
	}
	return total
}

// EmergencyWithdraw unwinds every position and the idle balance straight to
// the operator account, bypassing the withdrawal queue. Restricted to the
// administrative principal by the layer above; every use is logged.
func (c *Controller) EmergencyWithdraw(operator uuid.UUID) (decimal.Decimal, error) {
	if err := c.guard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer c.guard.Exit()
	c.mu.Lock()
	defer c.mu.Unlock()

	recovered := decimal.Zero
	for _, id := range c.sourceOrder {
		adapter := c.adapters[id]
		balance := adapter.GetBalance()
		if !balance.IsPositive() {
			continue
		}
		paid, err := adapter.WithdrawTo(operator, balance)
		if err != nil {
			return recovered, fmt.Errorf("failed to emergency-withdraw from source %s: %w", adapter.Name(), err)
		}
		recovered = recovered.Add(paid)
	}
	idle := c.token.BalanceOf(c.account)
	if idle.IsPositive() {
		if err := c.token.Transfer(c.account, operator, idle); err != nil {
			return recovered, fmt.Errorf("failed to emergency-withdraw idle balance from %s: %w", c.name, err)
		}
		recovered = recovered.Add(idle)
	}
	c.log.Warnw("emergency withdraw executed",
		"controller", c.name,
		"operator", operator.String(),
		"recovered", recovered.String(),
	)
	return recovered, nil
}

// PauseSource takes one source out of rotation without unwinding it.
func (c *Controller) PauseSource(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	adapter, ok := c.adapters[id]
	if !ok {
		return fmt.Errorf("failed to pause source %s: %w", id, domain.ErrInvalidAllocation)
	}
	p, ok := adapter.(yieldsource.Pausable)
	if !ok {
		return fmt.Errorf("failed to pause source %s: not pausable: %w", adapter.Name(), domain.ErrInvalidAllocation)
	}
	p.Pause()
	return nil
}

func (c *Controller) UnpauseSource(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	adapter, ok := c.adapters[id]
	if !ok {
		return fmt.Errorf("failed to unpause source %s: %w", id, domain.ErrInvalidAllocation)
	}
	p, ok := adapter.(yieldsource.Pausable)
	if !ok {
		return fmt.Errorf("failed to unpause source %s: not pausable: %w", adapter.Name(), domain.ErrInvalidAllocation)
	}
	p.Unpause()
	return nil
}
