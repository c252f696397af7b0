package prometheus

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/metricsTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type PrometheusMetricsConfig struct {
	Metrics map[metricsTypes.MetricsType][]metricsTypes.MetricsTypeConfig
	// Namespace prefixes every metric name. Defaults to "rewards_ledger".
	Namespace string
}

type PrometheusMetricsClient struct {
	logger   *zap.Logger
	config   *PrometheusMetricsConfig
	registry *prometheus.Registry

	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

func NewPrometheusMetricsClient(config *PrometheusMetricsConfig, l *zap.Logger) (*PrometheusMetricsClient, error) {
	if config.Namespace == "" {
		config.Namespace = "rewards_ledger"
	}
	client := &PrometheusMetricsClient{
		config:   config,
		logger:   l,
		registry: prometheus.NewRegistry(),

		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}

	if err := client.initializeTypes(); err != nil {
		return nil, err
	}

	return client, nil
}

// metricName converts dotted metric names into valid prometheus names.
func metricName(name string) string {
	return utils.SnakeCase(name)
}

func (pmc *PrometheusMetricsClient) logExistingMetric(t metricsTypes.MetricsType, metric metricsTypes.MetricsTypeConfig) {
	pmc.logger.Sugar().Warnw("Prometheus metric already exists for type",
		zap.String("type", string(t)),
		zap.String("name", metric.Name),
	)
}

func (pmc *PrometheusMetricsClient) initializeTypes() error {
	for t, types := range pmc.config.Metrics {
		for _, mt := range types {
			var collector prometheus.Collector
			switch t {
			case metricsTypes.MetricsType_Incr:
				if _, ok := pmc.counters[mt.Name]; ok {
					pmc.logExistingMetric(t, mt)
					continue
				}
				pmc.counters[mt.Name] = prometheus.NewCounterVec(prometheus.CounterOpts{
					Namespace: pmc.config.Namespace,
					Name:      metricName(mt.Name),
				}, mt.Labels)
				collector = pmc.counters[mt.Name]
			case metricsTypes.MetricsType_Gauge:
				if _, ok := pmc.gauges[mt.Name]; ok {
					pmc.logExistingMetric(t, mt)
					continue
				}
				pmc.gauges[mt.Name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
					Namespace: pmc.config.Namespace,
					Name:      metricName(mt.Name),
				}, mt.Labels)
				collector = pmc.gauges[mt.Name]
			case metricsTypes.MetricsType_Timing:
				if _, ok := pmc.histograms[mt.Name]; ok {
					pmc.logExistingMetric(t, mt)
					continue
				}
				pmc.histograms[mt.Name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
					Namespace: pmc.config.Namespace,
					Name:      metricName(mt.Name),
				}, mt.Labels)
				collector = pmc.histograms[mt.Name]
			default:
				continue
			}
			if err := pmc.registry.Register(collector); err != nil {
				return fmt.Errorf("failed to register metric '%s': %w", mt.Name, err)
			}
		}
	}
	return nil
}

// Handler serves the client's registry in the prometheus exposition format.
func (pmc *PrometheusMetricsClient) Handler() http.Handler {
	return promhttp.HandlerFor(pmc.registry, promhttp.HandlerOpts{})
}

func (pmc *PrometheusMetricsClient) Registry() *prometheus.Registry {
	return pmc.registry
}

func (pmc *PrometheusMetricsClient) formatLabels(labels []metricsTypes.MetricsLabel) prometheus.Labels {
	l := make(prometheus.Labels)
	if labels == nil {
		return l
	}
	for _, label := range labels {
		l[label.Name] = label.Value
	}
	return l
}

func (pmc *PrometheusMetricsClient) findExpectedLabels(t metricsTypes.MetricsType, name string) []string {
	for _, types := range pmc.config.Metrics[t] {
		if types.Name == name {
			return types.Labels
		}
	}
	return nil
}

// hasUnexpectedLabels checks if any unexpected labels are present in the given labels.
func (pmc *PrometheusMetricsClient) hasUnexpectedLabels(t metricsTypes.MetricsType, name string, providedLabels []metricsTypes.MetricsLabel) error {
	expectedLabels := pmc.findExpectedLabels(t, name)
	unexpectedLabels := make([]string, 0)

	if len(expectedLabels) == 0 && len(providedLabels) > 0 {
		pmc.logger.Sugar().Warnw("Prometheus metric has no expected labels but received labels",
			zap.String("type", string(t)),
			zap.String("name", name),
			zap.Strings("providedLabels", utils.Map(providedLabels, func(label metricsTypes.MetricsLabel, i uint64) string {
				return label.Name
			})),
		)
		return fmt.Errorf("no expected labels, received '%d'", len(providedLabels))
	}

	for _, label := range providedLabels {
		if !slices.Contains(expectedLabels, label.Name) {
			unexpectedLabels = append(unexpectedLabels, label.Name)
		}
	}

	if len(unexpectedLabels) > 0 {
		pmc.logger.Sugar().Warnw("Prometheus metric has unexpected labels",
			zap.String("type", string(t)),
			zap.String("name", name),
			zap.Strings("unexpectedLabels", unexpectedLabels),
		)
		return fmt.Errorf("unexpected labels: '%s'", strings.Join(unexpectedLabels, ", "))
	}
	return nil
}

// completeLabels fills in an empty value for every expected label that was not provided.
func (pmc *PrometheusMetricsClient) completeLabels(t metricsTypes.MetricsType, name string, labels []metricsTypes.MetricsLabel) prometheus.Labels {
	l := pmc.formatLabels(labels)
	for _, expected := range pmc.findExpectedLabels(t, name) {
		if _, ok := l[expected]; !ok {
			l[expected] = ""
		}
	}
	return l
}

func (pmc *PrometheusMetricsClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	m, ok := pmc.counters[name]
	if !ok {
		pmc.logger.Sugar().Warnw("Prometheus incr not found",
			zap.String("name", name),
		)
		return nil
	}
	if err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Incr, name, labels); err != nil {
		return err
	}
	m.With(pmc.completeLabels(metricsTypes.MetricsType_Incr, name, labels)).Add(value)
	return nil
}

func (pmc *PrometheusMetricsClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	m, ok := pmc.gauges[name]
	if !ok {
		pmc.logger.Sugar().Warnw("Prometheus gauge not found",
			zap.String("name", name),
		)
		return nil
	}
	if err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Gauge, name, labels); err != nil {
		return err
	}
	m.With(pmc.completeLabels(metricsTypes.MetricsType_Gauge, name, labels)).Set(value)
	return nil
}

func (pmc *PrometheusMetricsClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	return pmc.Histogram(name, value, labels)
}

func (pmc *PrometheusMetricsClient) Histogram(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	m, ok := pmc.histograms[name]
	if !ok {
		pmc.logger.Sugar().Warnw("Prometheus histogram not found",
			zap.String("name", name),
		)
		return nil
	}
	if err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Timing, name, labels); err != nil {
		return err
	}
	m.With(pmc.completeLabels(metricsTypes.MetricsType_Timing, name, labels)).Observe(float64(value.Microseconds()) / 1000)
	return nil
}

func (pmc *PrometheusMetricsClient) Flush() {
	// No flush needed for Prometheus
}
