package service

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"yieldpilot/internal/domain"
)

func TestYieldSummaryRequiresTwoSamples(t *testing.T) {
	svc := NewYieldStatsService()
	_, err := svc.Summary()
	require.Error(t, err)

	svc.Record(time.Now(), dec(1000), domain.Scale)
	_, err = svc.Summary()
	require.Error(t, err)
}

func TestYieldSummary(t *testing.T) {
	svc := NewYieldStatsService()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// 1% growth per 30-day period, twice.
	factor := decimal.NewFromFloat(1.00).Mul(domain.Scale)
	svc.Record(start, dec(10000), factor)
	factor = decimal.NewFromFloat(1.01).Mul(domain.Scale)
	svc.Record(start.AddDate(0, 0, 30), dec(10100), factor)
	factor = decimal.NewFromFloat(1.0201).Mul(domain.Scale)
	svc.Record(start.AddDate(0, 0, 60), dec(10201), factor)

	summary, err := svc.Summary()
	require.NoError(t, err)
	require.Equal(t, 3, summary.Samples)
	require.InDelta(t, 0.0201, summary.NetGrowth, 1e-9)
	require.InDelta(t, 0.01, summary.MeanPeriodReturn, 1e-9)

	// 365/30 periods per year at 1% each.
	wantAnnualized := math.Pow(1.01, 365.0/30.0) - 1
	require.InDelta(t, wantAnnualized, summary.AnnualizedYield, 1e-9)
	require.InDelta(t, 0, summary.Volatility, 1e-9)
	require.Equal(t, "10201", summary.LatestAUM)
}
