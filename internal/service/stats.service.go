package service

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// YieldStatsService accumulates one sample per rebase and reports realized
// yield statistics over the recorded window.
type YieldStatsService interface {
	Record(at time.Time, totalAUM decimal.Decimal, scalingFactor decimal.Decimal)
	Summary() (*YieldSummary, error)
}

type YieldSummary struct {
	Samples          int       `json:"samples"`
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	NetGrowth        float64   `json:"netGrowth"`
	MeanPeriodReturn float64   `json:"meanPeriodReturn"`
	AnnualizedYield  float64   `json:"annualizedYield"`
	Volatility       float64   `json:"volatility"`
	LatestAUM        string    `json:"latestAum"`
}

type yieldSample struct {
	At            time.Time
	TotalAUM      decimal.Decimal
	ScalingFactor decimal.Decimal
}

type yieldStatsServiceHandler struct {
	mu      sync.Mutex
	samples []yieldSample
}

func NewYieldStatsService() YieldStatsService {
	return &yieldStatsServiceHandler{}
}

func (h *yieldStatsServiceHandler) Record(at time.Time, totalAUM decimal.Decimal, scalingFactor decimal.Decimal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = append(h.samples, yieldSample{
		At:            at,
		TotalAUM:      totalAUM,
		ScalingFactor: scalingFactor,
	})
}

// Summary derives per-rebase returns from consecutive scaling factors and
// annualizes them over the average sample interval. At least two samples
// with nonzero factors are required.
func (h *yieldStatsServiceHandler) Summary() (*YieldSummary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) < 2 {
		return nil, fmt.Errorf("failed to summarize yield: need at least 2 samples, have %d", len(h.samples))
	}

	returns := make([]float64, 0, len(h.samples)-1)
	for i := 1; i < len(h.samples); i++ {
		prev, _ := h.samples[i-1].ScalingFactor.Float64()
		curr, _ := h.samples[i].ScalingFactor.Float64()
		if prev == 0 {
			return nil, fmt.Errorf("failed to summarize yield: zero scaling factor at sample %d", i-1)
		}
		returns = append(returns, curr/prev-1)
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean return: %w", err)
	}
	stdev := 0.0
	if len(returns) > 1 {
		stdev, err = stats.StandardDeviationSample(returns)
		if err != nil {
			return nil, fmt.Errorf("failed to compute return stdev: %w", err)
		}
	}

	first := h.samples[0]
	last := h.samples[len(h.samples)-1]
	window := last.At.Sub(first.At)
	periodsPerYear := 0.0
	if window > 0 {
		avgPeriod := window / time.Duration(len(h.samples)-1)
		periodsPerYear = float64(365*24*time.Hour) / float64(avgPeriod)
	}

	firstFactor, _ := first.ScalingFactor.Float64()
	lastFactor, _ := last.ScalingFactor.Float64()

	return &YieldSummary{
		Samples:          len(h.samples),
		From:             first.At,
		To:               last.At,
		NetGrowth:        lastFactor/firstFactor - 1,
		MeanPeriodReturn: mean,
		AnnualizedYield:  math.Pow(1+mean, periodsPerYear) - 1,
		Volatility:       stdev * math.Sqrt(periodsPerYear),
		LatestAUM:        last.TotalAUM.String(),
	}, nil
}
