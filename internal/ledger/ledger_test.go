package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"yieldpilot/internal/domain"
)

func dec(i int64) decimal.Decimal {
	return decimal.NewFromInt(i)
}

func TestMint(t *testing.T) {
	t.Run("first mint is 1:1", func(t *testing.T) {
		l := NewLedger(nil)
		holder := uuid.New()

		shares, err := l.Mint(holder, dec(1000))
		require.NoError(t, err)
		require.True(t, shares.Equal(dec(1000)), "got %s shares", shares)
		require.True(t, l.BalanceOf(holder).Equal(dec(1000)))
		require.True(t, l.TotalShares().Equal(dec(1000)))
	})

	t.Run("mint after rebase credits exact display amount", func(t *testing.T) {
		l := NewLedger(nil)
		a := uuid.New()
		b := uuid.New()

		_, err := l.Mint(a, dec(1000))
		require.NoError(t, err)
		require.NoError(t, l.Rebase(dec(1100)))

		shares, err := l.Mint(b, dec(2200))
		require.NoError(t, err)
		require.True(t, shares.Equal(dec(2000)), "got %s shares", shares)
		require.True(t, l.BalanceOf(b).Equal(dec(2200)))
		require.True(t, l.BalanceOf(a).Equal(dec(1100)))
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		l := NewLedger(nil)
		_, err := l.Mint(uuid.New(), decimal.Zero)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestBurn(t *testing.T) {
	t.Run("burn full balance", func(t *testing.T) {
		l := NewLedger(nil)
		holder := uuid.New()
		_, err := l.Mint(holder, dec(1000))
		require.NoError(t, err)

		shares, err := l.Burn(holder, dec(1000))
		require.NoError(t, err)
		require.True(t, shares.Equal(dec(1000)))
		require.True(t, l.BalanceOf(holder).IsZero())
		require.True(t, l.TotalShares().IsZero())
	})

	t.Run("burn rounds shares up", func(t *testing.T) {
		l := NewLedger(nil)
		holder := uuid.New()
		_, err := l.Mint(holder, dec(1000))
		require.NoError(t, err)
		require.NoError(t, l.Rebase(dec(1500)))

		// 100 display units at factor 1.5 is 66.67 shares; the burn takes 67.
		shares, err := l.Burn(holder, dec(100))
		require.NoError(t, err)
		require.True(t, shares.Equal(dec(67)), "got %s shares", shares)
		require.True(t, l.SharesOf(holder).Equal(dec(933)))
	})

	t.Run("burn beyond balance rejected", func(t *testing.T) {
		l := NewLedger(nil)
		holder := uuid.New()
		_, err := l.Mint(holder, dec(500))
		require.NoError(t, err)

		_, err = l.Burn(holder, dec(501))
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)
		require.True(t, l.BalanceOf(holder).Equal(dec(500)))
	})
}

func TestRebase(t *testing.T) {
	t.Run("noop with no shares", func(t *testing.T) {
		l := NewLedger(nil)
		require.NoError(t, l.Rebase(dec(12345)))
		require.True(t, l.ScalingFactor().Equal(domain.Scale))
	})

	t.Run("negative total rejected", func(t *testing.T) {
		l := NewLedger(nil)
		_, err := l.Mint(uuid.New(), dec(100))
		require.NoError(t, err)
		require.ErrorIs(t, l.Rebase(dec(-1)), domain.ErrInvalidAmount)
	})

	t.Run("loss rebase decreases balances", func(t *testing.T) {
		l := NewLedger(nil)
		holder := uuid.New()
		_, err := l.Mint(holder, dec(1000))
		require.NoError(t, err)

		require.NoError(t, l.Rebase(dec(900)))
		require.True(t, l.BalanceOf(holder).Equal(dec(900)))
	})

	t.Run("fairness across holders", func(t *testing.T) {
		l := NewLedger(nil)
		a := uuid.New()
		b := uuid.New()
		_, err := l.Mint(a, dec(1000))
		require.NoError(t, err)
		_, err = l.Mint(b, dec(2000))
		require.NoError(t, err)

		require.NoError(t, l.Rebase(dec(6600)))
		require.True(t, l.BalanceOf(a).Equal(dec(2200)), "a=%s", l.BalanceOf(a))
		require.True(t, l.BalanceOf(b).Equal(dec(4400)), "b=%s", l.BalanceOf(b))
	})
}

func TestShareConservation(t *testing.T) {
	l := NewLedger(nil)
	holders := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	type op struct {
		holder int
		mint   int64
		burn   int64
		rebase int64
	}
	ops := []op{
		{holder: 0, mint: 1000},
		{holder: 1, mint: 250},
		{rebase: 1375},
		{holder: 2, mint: 777},
		{holder: 0, burn: 300},
		{rebase: 2500},
		{holder: 1, burn: 100},
		{holder: 2, mint: 3},
	}
	for _, o := range ops {
		switch {
		case o.mint > 0:
			_, err := l.Mint(holders[o.holder], dec(o.mint))
			require.NoError(t, err)
		case o.burn > 0:
			_, err := l.Burn(holders[o.holder], dec(o.burn))
			require.NoError(t, err)
		case o.rebase > 0:
			require.NoError(t, l.Rebase(dec(o.rebase)))
		}

		sum := decimal.Zero
		for _, h := range holders {
			sum = sum.Add(l.SharesOf(h))
		}
		require.True(t, sum.Equal(l.TotalShares()),
			"share conservation broken: sum=%s total=%s", sum, l.TotalShares())

		// Display balances may each lose up to one unit to flooring.
		balanceSum := decimal.Zero
		for _, h := range holders {
			balanceSum = balanceSum.Add(l.BalanceOf(h))
		}
		diff := l.TotalAssets().Sub(balanceSum)
		require.True(t, diff.GreaterThanOrEqual(decimal.Zero))
		require.True(t, diff.LessThanOrEqual(dec(int64(len(holders)))),
			"rounding drift %s exceeds holder count", diff)
	}
}

func TestTransfers(t *testing.T) {
	t.Run("share transfer preserves totals", func(t *testing.T) {
		l := NewLedger(nil)
		a := uuid.New()
		b := uuid.New()
		_, err := l.Mint(a, dec(1000))
		require.NoError(t, err)

		require.NoError(t, l.TransferShares(a, b, dec(400)))
		require.True(t, l.SharesOf(a).Equal(dec(600)))
		require.True(t, l.SharesOf(b).Equal(dec(400)))
		require.True(t, l.TotalShares().Equal(dec(1000)))
	})

	t.Run("balance transfer after rebase", func(t *testing.T) {
		l := NewLedger(nil)
		a := uuid.New()
		b := uuid.New()
		_, err := l.Mint(a, dec(1000))
		require.NoError(t, err)
		require.NoError(t, l.Rebase(dec(2000)))

		shares, err := l.TransferBalance(a, b, dec(500))
		require.NoError(t, err)
		require.True(t, shares.Equal(dec(250)))
		require.True(t, l.BalanceOf(b).Equal(dec(500)))
		require.True(t, l.BalanceOf(a).Equal(dec(1500)))
	})

	t.Run("transfer beyond shares rejected", func(t *testing.T) {
		l := NewLedger(nil)
		a := uuid.New()
		_, err := l.Mint(a, dec(10))
		require.NoError(t, err)
		require.ErrorIs(t, l.TransferShares(a, uuid.New(), dec(11)), domain.ErrInsufficientShares)
	})
}
