package pilot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
	"yieldpilot/internal/yieldsource"
	mock_yieldsource "yieldpilot/internal/yieldsource/mocks"
)

func dec(i int64) decimal.Decimal {
	return decimal.NewFromInt(i)
}

type fixture struct {
	token        *bank.Token
	orchestrator uuid.UUID
	controller   *Controller
	sources      []*yieldsource.FixedSource
}

func newFixture(t *testing.T, numSources int) fixture {
	t.Helper()
	token := bank.NewToken("USDX")
	orchestrator := uuid.New()
	require.NoError(t, token.Mint(orchestrator, dec(1000000)))

	c := NewController("pilot-1", token, zap.NewNop().Sugar())
	c.BindOrchestrator(orchestrator)

	sources := make([]*yieldsource.FixedSource, numSources)
	for i := range sources {
		sources[i] = yieldsource.NewFixedSource("fixed", token, c.Account())
		c.AddSource(sources[i])
	}
	return fixture{token: token, orchestrator: orchestrator, controller: c, sources: sources}
}

func entries(sources []*yieldsource.FixedSource, weights ...uint16) []domain.StrategyEntry {
	out := make([]domain.StrategyEntry, len(weights))
	for i, w := range weights {
		out[i] = domain.StrategyEntry{SourceID: sources[i].ID(), WeightBps: w}
	}
	return out
}

func TestSetStrategy(t *testing.T) {
	t.Run("valid strategy replaces wholesale", func(t *testing.T) {
		f := newFixture(t, 3)
		require.NoError(t, f.controller.SetStrategy(entries(f.sources, 3000, 4000, 3000)))
		require.Len(t, f.controller.Strategy(), 3)

		require.NoError(t, f.controller.SetStrategy(entries(f.sources, 5000, 5000)))
		require.Len(t, f.controller.Strategy(), 2)
	})

	t.Run("weights must sum to 10000", func(t *testing.T) {
		f := newFixture(t, 2)
		err := f.controller.SetStrategy(entries(f.sources, 5000, 4000))
		require.ErrorIs(t, err, domain.ErrInvalidAllocation)
	})

	t.Run("zero weight rejected", func(t *testing.T) {
		f := newFixture(t, 2)
		err := f.controller.SetStrategy(entries(f.sources, 10000, 0))
		require.ErrorIs(t, err, domain.ErrInvalidAllocation)
	})

	t.Run("duplicate source rejected", func(t *testing.T) {
		f := newFixture(t, 1)
		err := f.controller.SetStrategy([]domain.StrategyEntry{
			{SourceID: f.sources[0].ID(), WeightBps: 5000},
			{SourceID: f.sources[0].ID(), WeightBps: 5000},
		})
		require.ErrorIs(t, err, domain.ErrInvalidAllocation)
	})

	t.Run("unknown source rejected", func(t *testing.T) {
		f := newFixture(t, 1)
		err := f.controller.SetStrategy([]domain.StrategyEntry{
			{SourceID: uuid.New(), WeightBps: 10000},
		})
		require.ErrorIs(t, err, domain.ErrInvalidAllocation)
	})

	t.Run("inactive source rejected", func(t *testing.T) {
		f := newFixture(t, 1)
		f.sources[0].Pause()
		err := f.controller.SetStrategy(entries(f.sources, 10000))
		require.ErrorIs(t, err, domain.ErrInvalidAllocation)
	})

	t.Run("empty strategy rejected", func(t *testing.T) {
		f := newFixture(t, 0)
		err := f.controller.SetStrategy(nil)
		require.ErrorIs(t, err, domain.ErrInvalidAllocation)
	})
}

func TestSplitByWeight(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		weights []uint16
		want    []int64
	}{
		{name: "even split", amount: 1000, weights: []uint16{3000, 4000, 3000}, want: []int64{300, 400, 300}},
		{name: "last entry absorbs remainder", amount: 1001, weights: []uint16{3000, 4000, 3000}, want: []int64{300, 400, 301}},
		{name: "single entry", amount: 7, weights: []uint16{10000}, want: []int64{7}},
		{name: "amount below entry count", amount: 2, weights: []uint16{3333, 3333, 3334}, want: []int64{0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := make([]domain.StrategyEntry, len(tt.weights))
			for i, w := range tt.weights {
				es[i] = domain.StrategyEntry{SourceID: uuid.New(), WeightBps: w}
			}
			portions := splitByWeight(dec(tt.amount), es)
			sum := decimal.Zero
			for i, p := range portions {
				require.True(t, p.Equal(dec(tt.want[i])), "portion %d: got %s want %d", i, p, tt.want[i])
				sum = sum.Add(p)
			}
			require.True(t, sum.Equal(dec(tt.amount)), "portions must sum to the full amount")
		})
	}
}

func TestReceiveAndInvest(t *testing.T) {
	t.Run("distributes per weights", func(t *testing.T) {
		f := newFixture(t, 3)
		require.NoError(t, f.controller.SetStrategy(entries(f.sources, 3000, 4000, 3000)))

		require.NoError(t, f.controller.ReceiveAndInvest(f.orchestrator, dec(1000)))

		require.True(t, f.sources[0].GetBalance().Equal(dec(300)))
		require.True(t, f.sources[1].GetBalance().Equal(dec(400)))
		require.True(t, f.sources[2].GetBalance().Equal(dec(300)))
		require.True(t, f.controller.TotalValue().Equal(dec(1000)))
	})

	t.Run("no strategy keeps funds idle", func(t *testing.T) {
		f := newFixture(t, 0)
		require.NoError(t, f.controller.ReceiveAndInvest(f.orchestrator, dec(500)))
		require.True(t, f.token.BalanceOf(f.controller.Account()).Equal(dec(500)))
		require.True(t, f.controller.TotalValue().Equal(dec(500)))
	})

	t.Run("paused source fails the whole call before funds move", func(t *testing.T) {
		f := newFixture(t, 2)
		require.NoError(t, f.controller.SetStrategy(entries(f.sources, 5000, 5000)))
		f.sources[1].Pause()

		err := f.controller.ReceiveAndInvest(f.orchestrator, dec(1000))
		require.ErrorIs(t, err, domain.ErrInactiveSource)
		require.True(t, f.token.BalanceOf(f.orchestrator).Equal(dec(1000000)))
		require.True(t, f.sources[0].GetBalance().IsZero())
		require.True(t, f.controller.TotalValue().IsZero())
	})

	t.Run("only the orchestrator may push capital", func(t *testing.T) {
		f := newFixture(t, 0)
		err := f.controller.ReceiveAndInvest(uuid.New(), dec(500))
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		f := newFixture(t, 0)
		err := f.controller.ReceiveAndInvest(f.orchestrator, decimal.Zero)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

type decimalEq struct {
	want decimal.Decimal
}

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string {
	return "decimal equal to " + m.want.String()
}

func TestReceiveAndInvestCallsAdapters(t *testing.T) {
	ctrl := gomock.NewController(t)
	token := bank.NewToken("USDX")
	orchestrator := uuid.New()
	require.NoError(t, token.Mint(orchestrator, dec(10000)))

	c := NewController("pilot-1", token, zap.NewNop().Sugar())
	c.BindOrchestrator(orchestrator)

	a := mock_yieldsource.NewMockAdapter(ctrl)
	b := mock_yieldsource.NewMockAdapter(ctrl)
	idA, idB := uuid.New(), uuid.New()
	a.EXPECT().ID().Return(idA).AnyTimes()
	b.EXPECT().ID().Return(idB).AnyTimes()
	a.EXPECT().IsActive().Return(true).AnyTimes()
	b.EXPECT().IsActive().Return(true).AnyTimes()
	c.AddSource(a)
	c.AddSource(b)

	require.NoError(t, c.SetStrategy([]domain.StrategyEntry{
		{SourceID: idA, WeightBps: 2500},
		{SourceID: idB, WeightBps: 7500},
	}))

	a.EXPECT().Deposit(decimalEq{want: dec(250)}).Return(dec(250), nil)
	b.EXPECT().Deposit(decimalEq{want: dec(750)}).Return(dec(750), nil)

	require.NoError(t, c.ReceiveAndInvest(orchestrator, dec(1000)))
}

func TestWithdrawToManager(t *testing.T) {
	t.Run("idle balance spent first", func(t *testing.T) {
		f := newFixture(t, 1)
		// 500 idle, nothing invested.
		require.NoError(t, f.controller.ReceiveAndInvest(f.orchestrator, dec(500)))

		manager := uuid.New()
		require.NoError(t, f.controller.WithdrawToManager(manager, dec(300)))
		require.True(t, f.token.BalanceOf(manager).Equal(dec(300)))
		require.True(t, f.token.BalanceOf(f.controller.Account()).Equal(dec(200)))
	})

	t.Run("shortfall drawn from sources", func(t *testing.T) {
		f := newFixture(t, 2)
		require.NoError(t, f.controller.SetStrategy(entries(f.sources, 6000, 4000)))
		require.NoError(t, f.controller.ReceiveAndInvest(f.orchestrator, dec(1000)))

		manager := uuid.New()
		require.NoError(t, f.controller.WithdrawToManager(manager, dec(900)))
		require.True(t, f.token.BalanceOf(manager).Equal(dec(900)))
		require.True(t, f.controller.TotalValue().Equal(dec(100)))
	})

	t.Run("insufficient liquidity leaves state untouched", func(t *testing.T) {
		f := newFixture(t, 1)
		require.NoError(t, f.controller.SetStrategy(entries(f.sources, 10000)))
		require.NoError(t, f.controller.ReceiveAndInvest(f.orchestrator, dec(100)))

		manager := uuid.New()
		err := f.controller.WithdrawToManager(manager, dec(101))
		require.ErrorIs(t, err, domain.ErrInsufficientLiquidity)
		require.True(t, f.token.BalanceOf(manager).IsZero())
		require.True(t, f.controller.TotalValue().Equal(dec(100)))
	})
}

func TestInvestDivest(t *testing.T) {
	f := newFixture(t, 2)
	require.NoError(t, f.controller.ReceiveAndInvest(f.orchestrator, dec(1000)))

	require.NoError(t, f.controller.Invest([]Allocation{
		{SourceID: f.sources[0].ID(), Amount: dec(600)},
		{SourceID: f.sources[1].ID(), Amount: dec(400)},
	}))
	require.True(t, f.sources[0].GetBalance().Equal(dec(600)))
	require.True(t, f.sources[1].GetBalance().Equal(dec(400)))
	require.True(t, f.token.BalanceOf(f.controller.Account()).IsZero())

	require.NoError(t, f.controller.Divest([]Allocation{
		{SourceID: f.sources[0].ID(), Amount: dec(100)},
	}))
	require.True(t, f.sources[0].GetBalance().Equal(dec(500)))
	require.True(t, f.token.BalanceOf(f.controller.Account()).Equal(dec(100)))

	err := f.controller.Invest([]Allocation{
		{SourceID: f.sources[0].ID(), Amount: dec(101)},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientLiquidity)

	err = f.controller.Divest([]Allocation{
		{SourceID: f.sources[1].ID(), Amount: dec(401)},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientLiquidity)
}

func TestEmergencyWithdraw(t *testing.T) {
	f := newFixture(t, 2)
	require.NoError(t, f.controller.SetStrategy(entries(f.sources, 5000, 5000)))
	require.NoError(t, f.controller.ReceiveAndInvest(f.orchestrator, dec(999)))
	require.NoError(t, f.sources[0].AccrueYield(dec(101)))

	operator := uuid.New()
	recovered, err := f.controller.EmergencyWithdraw(operator)
	require.NoError(t, err)
	require.True(t, recovered.Equal(dec(1100)), "recovered %s", recovered)
	require.True(t, f.token.BalanceOf(operator).Equal(dec(1100)))
	require.True(t, f.controller.TotalValue().IsZero())
}

func TestHarvestAggregatesRewards(t *testing.T) {
	f := newFixture(t, 2)
	require.NoError(t, f.controller.ReceiveAndInvest(f.orchestrator, dec(200)))
	require.NoError(t, f.controller.Invest([]Allocation{
		{SourceID: f.sources[0].ID(), Amount: dec(100)},
		{SourceID: f.sources[1].ID(), Amount: dec(100)},
	}))
	require.NoError(t, f.sources[0].AccrueReward(dec(30)))
	require.NoError(t, f.sources[1].AccrueReward(dec(12)))

	total, err := f.controller.Harvest(nil)
	require.NoError(t, err)
	require.True(t, total.Equal(dec(42)), "got %s", total)
}
