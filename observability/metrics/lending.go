package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LendingMetrics holds the Prometheus collectors for the lending engine.
type LendingMetrics struct {
	accrualInterest   *prometheus.GaugeVec
	reservesTotal     *prometheus.GaugeVec
	liquidationsTotal *prometheus.CounterVec
	rewardsEmitted    *prometheus.CounterVec
	insolventRejected *prometheus.CounterVec
}

var (
	lendingOnce     sync.Once
	lendingRegistry *LendingMetrics
)

// Lending returns the process-wide lending metrics collector, registering it
// with the default Prometheus registry on first use.
func Lending() *LendingMetrics {
	lendingOnce.Do(func() {
		lendingRegistry = &LendingMetrics{
			accrualInterest: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "lending_accrual_interest",
				Help: "Interest amount applied by the most recent accrual of a market.",
			}, []string{"market"}),
			reservesTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "lending_reserves_total",
				Help: "Current total_reserves balance of a market.",
			}, []string{"market"}),
			liquidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lending_liquidations_total",
				Help: "Count of completed liquidations by collateral/loan market pair.",
			}, []string{"collateral_market", "loan_market"}),
			rewardsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lending_rewards_emitted_total",
				Help: "Cumulative IPX reward emission by market and side.",
			}, []string{"market", "side"}),
			insolventRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lending_insolvent_rejected_total",
				Help: "Count of actions rejected for leaving the caller insolvent, by market.",
			}, []string{"market"}),
		}
		prometheus.MustRegister(
			lendingRegistry.accrualInterest,
			lendingRegistry.reservesTotal,
			lendingRegistry.liquidationsTotal,
			lendingRegistry.rewardsEmitted,
			lendingRegistry.insolventRejected,
		)
	})
	return lendingRegistry
}

// ObserveAccrual records the interest applied during a single accrual call.
func (m *LendingMetrics) ObserveAccrual(market string, interest float64) {
	if m == nil {
		return
	}
	m.accrualInterest.WithLabelValues(market).Set(interest)
}

// SetReserves records a market's current total_reserves balance.
func (m *LendingMetrics) SetReserves(market string, reserves float64) {
	if m == nil {
		return
	}
	m.reservesTotal.WithLabelValues(market).Set(reserves)
}

// IncLiquidation records one completed liquidation.
func (m *LendingMetrics) IncLiquidation(collateralMarket, loanMarket string) {
	if m == nil {
		return
	}
	m.liquidationsTotal.WithLabelValues(collateralMarket, loanMarket).Inc()
}

// AddRewardsEmitted accumulates reward emission for a market/side pair.
func (m *LendingMetrics) AddRewardsEmitted(market, side string, amount float64) {
	if m == nil {
		return
	}
	m.rewardsEmitted.WithLabelValues(market, side).Add(amount)
}

// IncInsolventRejected records an action rejected for insolvency.
func (m *LendingMetrics) IncInsolventRejected(market string) {
	if m == nil {
		return
	}
	m.insolventRejected.WithLabelValues(market).Inc()
}
