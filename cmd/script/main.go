package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
	"yieldpilot/internal/ledger"
	"yieldpilot/internal/pilot"
	"yieldpilot/internal/queue"
	"yieldpilot/internal/repository"
	"yieldpilot/internal/service"
	"yieldpilot/internal/yieldsource"
)

func main() {
	root := &cobra.Command{
		Use:   "pilotctl",
		Short: "operational scripts for the yield ledger",
	}
	root.AddCommand(simulateCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

// simulateCmd runs the whole deposit / accrue / rebase / withdraw / claim
// lifecycle against an in-memory stack and prints each step. Useful as a
// smoke check and as living documentation of the flow.
func simulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "run a full yield lifecycle in memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(os.Stdout)
		},
	}
}

func runSimulation(out *os.File) error {
	token := bank.NewToken("USDX")
	shareLedger := ledger.NewLedger(nil)
	orchestrator := service.NewOrchestratorService(
		shareLedger,
		repository.NewInMemoryLedgerEventRepository(),
		repository.NewInMemoryWithdrawalRequestRepository(),
		service.NewYieldStatsService(),
		nil,
	)
	orchestrator.AddSupportedToken(token)

	controller := pilot.NewController("core", token, nil)
	source := yieldsource.NewFixedSource("fixed-rate", token, controller.Account())
	controller.AddSource(source)
	err := controller.SetStrategy([]domain.StrategyEntry{
		{SourceID: source.ID(), WeightBps: domain.TotalWeightBps},
	})
	if err != nil {
		return err
	}
	if err := orchestrator.RegisterController(controller); err != nil {
		return err
	}
	if err := orchestrator.SetWithdrawalQueue(queue.NewQueue(token, nil)); err != nil {
		return err
	}

	holder := uuid.New()
	if err := token.Mint(holder, decimal.NewFromInt(1000)); err != nil {
		return err
	}
	if err := orchestrator.Deposit(holder, token.ID, decimal.NewFromInt(1000)); err != nil {
		return err
	}
	fmt.Fprintf(out, "deposited 1000, balance=%s\n", orchestrator.BalanceOf(holder))

	if err := source.AccrueYield(decimal.NewFromInt(100)); err != nil {
		return err
	}
	aum, err := orchestrator.Rebase()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "accrued 100 yield, rebased to AUM=%s, balance=%s\n", aum, orchestrator.BalanceOf(holder))

	id, err := orchestrator.Withdraw(holder, orchestrator.BalanceOf(holder))
	if err != nil {
		return err
	}
	if err := orchestrator.FundRequest(id); err != nil {
		return err
	}
	paid, err := orchestrator.Claim(holder, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "withdrew via request %d, paid=%s, wallet=%s\n", id, paid, token.BalanceOf(holder))
	return nil
}
