package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
	Flush()
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_Invocation       = "ledger.invocation"
	Metric_Incr_InvocationFailed = "ledger.invocation.failed"
	Metric_Incr_TokensClaimed    = "ledger.tokens.claimed"
	Metric_Incr_TokensDeposited  = "ledger.tokens.deposited"
	Metric_Incr_TokensForfeited  = "ledger.tokens.forfeited"
	Metric_Incr_TokensSwept      = "ledger.tokens.swept"
	Metric_Incr_EventEmitted     = "ledger.event.emitted"

	Metric_Gauge_PoolOptedInSupply = "ledger.pool.optedInSupply"

	Metric_Timing_InvocationDuration = "ledger.invocation.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name: Metric_Incr_Invocation,
			Labels: []string{
				"operation",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_InvocationFailed,
			Labels: []string{
				"operation",
				"error",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_TokensClaimed,
			Labels: []string{
				"kind",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_TokensDeposited,
			Labels: []string{
				"kind",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_TokensForfeited,
			Labels: []string{
				"kind",
				"mode",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_TokensSwept,
			Labels: []string{
				"kind",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_EventEmitted,
			Labels: []string{
				"event",
			},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_PoolOptedInSupply,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name: Metric_Timing_InvocationDuration,
			Labels: []string{
				"operation",
				"hasError",
			},
		},
	},
}
