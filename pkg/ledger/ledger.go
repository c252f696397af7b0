// Package ledger runs ledger operations end to end. Each operation is one
// invocation: it reads the clock once, opens a store transaction, loads the
// records it needs, applies the core state transition, moves tokens, writes
// the records back and commits. Events are emitted only after the commit.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/Layr-Labs/rewards-ledger/pkg/events"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/metricsTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/proofs"
	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	"github.com/Layr-Labs/rewards-ledger/pkg/tokenMover"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	ddTracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

type Ledger struct {
	store    storage.Store
	mover    tokenMover.TokenMover
	verifier proofs.Verifier
	sink     events.Sink
	clock    clockwork.Clock
	metrics  metricsTypes.IMetricsClient
	logger   *zap.Logger

	// invocations run one at a time
	mu sync.Mutex
}

func NewLedger(
	store storage.Store,
	mover tokenMover.TokenMover,
	verifier proofs.Verifier,
	sink events.Sink,
	clock clockwork.Clock,
	mc metricsTypes.IMetricsClient,
	l *zap.Logger,
) *Ledger {
	return &Ledger{
		store:    store,
		mover:    mover,
		verifier: verifier,
		sink:     sink,
		clock:    clock,
		metrics:  mc,
		logger:   l,
	}
}

// Receipt describes a committed invocation.
type Receipt struct {
	InvocationId string
	Operation    string
	Now          int64
	// Address is the primary record the operation created or acted on.
	Address solana.PublicKey
	// Amount is the number of tokens paid out, deposited or swept.
	Amount uint64
	// CommitmentRoot is the merkle root over every record the invocation wrote.
	CommitmentRoot gethcommon.Hash
	Events         []events.Event
}

type invocation struct {
	ctx       context.Context
	id        string
	operation string
	now       int64
	tx        *recordingTx
	receipt   *Receipt
	events    []events.Event
	counters  []pendingCounter
	gauges    []pendingGauge
}

type pendingCounter struct {
	name   string
	value  float64
	labels []metricsTypes.MetricsLabel
}

type pendingGauge struct {
	name  string
	value float64
}

func (inv *invocation) emit(e events.Event) {
	inv.events = append(inv.events, e)
}

// count records a counter that is only reported if the invocation commits.
func (inv *invocation) count(name string, value uint64, labels ...metricsTypes.MetricsLabel) {
	inv.counters = append(inv.counters, pendingCounter{name: name, value: float64(value), labels: labels})
}

func (inv *invocation) gauge(name string, value uint64) {
	inv.gauges = append(inv.gauges, pendingGauge{name: name, value: float64(value)})
}

// invoke runs fn inside a single store transaction. Any error discards the
// transaction; nothing is emitted unless the commit succeeds.
func (l *Ledger) invoke(ctx context.Context, operation string, fn func(inv *invocation) error) (receipt *Receipt, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	span, ctx := ddTracer.StartSpanFromContext(ctx, "ledger.invoke", ddTracer.ResourceName(operation))
	started := l.clock.Now()
	defer func() {
		span.Finish(ddTracer.WithError(err))
		l.recordInvocation(operation, l.clock.Since(started), err)
	}()

	inv := &invocation{
		ctx:       ctx,
		id:        uuid.New().String(),
		operation: operation,
		now:       started.Unix(),
	}
	inv.receipt = &Receipt{InvocationId: inv.id, Operation: operation, Now: inv.now}
	span.SetTag("invocationId", inv.id)

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	inv.tx = newRecordingTx(tx)
	defer inv.tx.Discard()

	if err = fn(inv); err != nil {
		l.logger.Sugar().Debugw("Invocation failed",
			zap.String("operation", operation),
			zap.String("invocationId", inv.id),
			zap.Error(err),
		)
		return nil, err
	}

	root, err := commitmentRoot(inv.id, inv.now, inv.tx.writes)
	if err != nil {
		return nil, err
	}
	if err = inv.tx.Commit(); err != nil {
		return nil, err
	}
	inv.receipt.CommitmentRoot = root
	inv.receipt.Events = inv.events

	l.logger.Sugar().Infow("Invocation committed",
		zap.String("operation", operation),
		zap.String("invocationId", inv.id),
		zap.Int64("now", inv.now),
		zap.Int("writes", inv.tx.writes.Len()),
		zap.String("commitmentRoot", root.Hex()),
	)
	for _, c := range inv.counters {
		l.incr(c.name, c.value, c.labels...)
	}
	for _, g := range inv.gauges {
		l.gauge(g.name, g.value)
	}
	l.emitEvents(inv)
	return inv.receipt, nil
}

// emitEvents hands committed events to the sink. Failures are logged only.
func (l *Ledger) emitEvents(inv *invocation) {
	for _, e := range inv.events {
		if err := l.sink.Emit(e.Kind(), events.Encode(e)); err != nil {
			l.logger.Sugar().Errorw("Failed to emit event",
				zap.String("kind", e.Kind().String()),
				zap.String("invocationId", inv.id),
				zap.Error(err),
			)
			continue
		}
		l.incr(metricsTypes.Metric_Incr_EventEmitted, 1, metricsTypes.MetricsLabel{Name: "event", Value: e.Kind().String()})
	}
}

// view runs fn against a transaction that is always discarded.
func (l *Ledger) view(ctx context.Context, fn func(tx storage.Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Discard()
	return fn(tx)
}

func errorKind(err error) string {
	if kind := ledgerErrors.KindOf(err); kind != "" {
		return kind
	}
	return "internal"
}

func (l *Ledger) recordInvocation(operation string, duration time.Duration, err error) {
	opLabel := metricsTypes.MetricsLabel{Name: "operation", Value: operation}
	l.incr(metricsTypes.Metric_Incr_Invocation, 1, opLabel)

	hasError := "false"
	if err != nil {
		hasError = "true"
		l.incr(metricsTypes.Metric_Incr_InvocationFailed, 1, opLabel, metricsTypes.MetricsLabel{Name: "error", Value: errorKind(err)})
	}
	if mErr := l.metrics.Timing(metricsTypes.Metric_Timing_InvocationDuration, duration, []metricsTypes.MetricsLabel{
		opLabel,
		{Name: "hasError", Value: hasError},
	}); mErr != nil {
		l.logger.Sugar().Debugw("Failed to record timing", zap.Error(mErr))
	}
}

func (l *Ledger) incr(name string, value float64, labels ...metricsTypes.MetricsLabel) {
	if value == 0 {
		return
	}
	if err := l.metrics.Incr(name, labels, value); err != nil {
		l.logger.Sugar().Debugw("Failed to record metric", zap.String("name", name), zap.Error(err))
	}
}

func (l *Ledger) gauge(name string, value float64, labels ...metricsTypes.MetricsLabel) {
	if err := l.metrics.Gauge(name, value, labels); err != nil {
		l.logger.Sugar().Debugw("Failed to record metric", zap.String("name", name), zap.Error(err))
	}
}
