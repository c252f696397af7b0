// Package metrics fans ledger metrics out to every configured metrics client.
package metrics

import (
	"errors"
	"time"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/dogstatsd"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/metricsTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/prometheus"
	"go.uber.org/zap"
)

type MetricsSinkConfig struct {
	// DefaultLabels are appended to every emitted metric.
	DefaultLabels []metricsTypes.MetricsLabel
}

type MetricsSink struct {
	config  *MetricsSinkConfig
	clients []metricsTypes.IMetricsClient
}

var _ metricsTypes.IMetricsClient = (*MetricsSink)(nil)

func NewMetricsSink(cfg *MetricsSinkConfig, clients []metricsTypes.IMetricsClient) (*MetricsSink, error) {
	return &MetricsSink{
		config:  cfg,
		clients: clients,
	}, nil
}

func (ms *MetricsSink) withDefaults(labels []metricsTypes.MetricsLabel) []metricsTypes.MetricsLabel {
	if len(ms.config.DefaultLabels) == 0 {
		return labels
	}
	out := make([]metricsTypes.MetricsLabel, 0, len(labels)+len(ms.config.DefaultLabels))
	out = append(out, labels...)
	return append(out, ms.config.DefaultLabels...)
}

func (ms *MetricsSink) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	var errs []error
	for _, client := range ms.clients {
		if err := client.Incr(name, ms.withDefaults(labels), value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ms *MetricsSink) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	var errs []error
	for _, client := range ms.clients {
		if err := client.Gauge(name, value, ms.withDefaults(labels)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ms *MetricsSink) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	var errs []error
	for _, client := range ms.clients {
		if err := client.Timing(name, value, ms.withDefaults(labels)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ms *MetricsSink) Flush() {
	for _, client := range ms.clients {
		client.Flush()
	}
}

// InitMetricsSinksFromConfig builds a client for every metrics backend enabled in cfg.
func InitMetricsSinksFromConfig(cfg *config.Config, l *zap.Logger) ([]metricsTypes.IMetricsClient, error) {
	clients := []metricsTypes.IMetricsClient{}

	if cfg.DataDogConfig.StatsdConfig.Enabled {
		dd, err := dogstatsd.NewDogStatsdMetricsClient(&dogstatsd.DogStatsdMetricsConfig{
			Url:        cfg.DataDogConfig.StatsdConfig.Url,
			SampleRate: cfg.DataDogConfig.StatsdConfig.SampleRate,
		}, l)
		if err != nil {
			l.Sugar().Errorw("Failed to create statsd client", zap.Error(err))
			return nil, err
		}
		clients = append(clients, dd)
	}

	if cfg.PrometheusConfig.Enabled {
		pc, err := prometheus.NewPrometheusMetricsClient(&prometheus.PrometheusMetricsConfig{
			Metrics: metricsTypes.MetricTypes,
		}, l)
		if err != nil {
			l.Sugar().Errorw("Failed to create prometheus client", zap.Error(err))
			return nil, err
		}
		clients = append(clients, pc)
	}

	return clients, nil
}

// PrometheusClient returns the first prometheus client in clients, if any.
func PrometheusClient(clients []metricsTypes.IMetricsClient) (*prometheus.PrometheusMetricsClient, bool) {
	for _, c := range clients {
		if pc, ok := c.(*prometheus.PrometheusMetricsClient); ok {
			return pc, true
		}
	}
	return nil, false
}
