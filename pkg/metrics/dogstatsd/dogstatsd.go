package dogstatsd

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/metricsTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/utils"
	"go.uber.org/zap"
)

type DogStatsdMetricsConfig struct {
	Url        string
	SampleRate float64
	// Namespace prefixes every metric. Defaults to "rewards_ledger.".
	Namespace string
}

// statsdClient is the subset of the statsd client used here.
type statsdClient interface {
	Count(name string, value int64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Timing(name string, value time.Duration, tags []string, rate float64) error
	Flush() error
}

type DogStatsdMetricsClient struct {
	client statsdClient
	config *DogStatsdMetricsConfig
	logger *zap.Logger
}

func NewDogStatsdMetricsClient(config *DogStatsdMetricsConfig, l *zap.Logger) (*DogStatsdMetricsClient, error) {
	if config.Namespace == "" {
		config.Namespace = "rewards_ledger."
	}
	if config.SampleRate <= 0 || config.SampleRate > 1 {
		config.SampleRate = 1
	}
	client, err := statsd.New(config.Url, statsd.WithNamespace(config.Namespace))
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client: %w", err)
	}
	return newDogStatsdMetricsClient(client, config, l), nil
}

func newDogStatsdMetricsClient(client statsdClient, config *DogStatsdMetricsConfig, l *zap.Logger) *DogStatsdMetricsClient {
	return &DogStatsdMetricsClient{
		client: client,
		config: config,
		logger: l,
	}
}

func formatTags(labels []metricsTypes.MetricsLabel) []string {
	return utils.Map(labels, func(label metricsTypes.MetricsLabel, i uint64) string {
		return fmt.Sprintf("%s:%s", label.Name, label.Value)
	})
}

func (dmc *DogStatsdMetricsClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	return dmc.client.Count(name, int64(value), formatTags(labels), dmc.config.SampleRate)
}

func (dmc *DogStatsdMetricsClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	return dmc.client.Gauge(name, value, formatTags(labels), dmc.config.SampleRate)
}

func (dmc *DogStatsdMetricsClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	return dmc.client.Timing(name, value, formatTags(labels), dmc.config.SampleRate)
}

func (dmc *DogStatsdMetricsClient) Flush() {
	if err := dmc.client.Flush(); err != nil {
		dmc.logger.Sugar().Warnw("Failed to flush statsd client", zap.Error(err))
	}
}
