package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	"github.com/Layr-Labs/rewards-ledger/internal/tracer"
	"github.com/Layr-Labs/rewards-ledger/pkg/eventBus"
	"github.com/Layr-Labs/rewards-ledger/pkg/eventBus/eventBusTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/events"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledger"
	"github.com/Layr-Labs/rewards-ledger/pkg/logger"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/prometheus"
	"github.com/Layr-Labs/rewards-ledger/pkg/postgres"
	"github.com/Layr-Labs/rewards-ledger/pkg/postgres/migrations"
	"github.com/Layr-Labs/rewards-ledger/pkg/proofs"
	"github.com/Layr-Labs/rewards-ledger/pkg/scenario"
	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	"github.com/Layr-Labs/rewards-ledger/pkg/storage/leveldb"
	pgStorage "github.com/Layr-Labs/rewards-ledger/pkg/storage/postgres"
	"github.com/Layr-Labs/rewards-ledger/pkg/tokenMover"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scenario file against a fresh ledger and print each step's result",
	RunE: func(cmd *cobra.Command, args []string) error {
		initSimulateCmd(cmd)
		cfg := config.NewConfig()

		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
		if err != nil {
			return err
		}
		defer l.Sync() //nolint:errcheck

		tracer.StartTracer(cfg.DataDogConfig.TracingConfig.Enabled, "")
		defer tracer.StopTracer()

		path := viper.GetString("scenario")
		if path == "" {
			return fmt.Errorf("--scenario is required")
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open scenario: %w", err)
		}
		s, err := scenario.Load(f)
		f.Close()
		if err != nil {
			return err
		}

		metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
		if err != nil {
			l.Sugar().Fatal("Failed to setup metrics sink", zap.Error(err))
		}
		sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, metricsClients)
		if err != nil {
			l.Sugar().Fatal("Failed to setup metrics sink", zap.Error(err))
		}
		defer sink.Flush()

		promStop := make(chan bool, 1)
		if pc, ok := metrics.PrometheusClient(metricsClients); ok {
			ps := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.PrometheusConfig.Port,
			}, pc, l)
			if err := ps.Start(promStop); err != nil {
				l.Sugar().Fatal("Failed to start prometheus server", zap.Error(err))
			}
			defer func() { promStop <- true }()
		}

		store, err := openStore(cfg, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to open record store", zap.Error(err))
		}
		defer store.Close()

		bus := eventBus.NewEventBus(l)
		counts, wait := countLedgerEvents(cmd.Context(), bus, cfg.LedgerConfig.EventBufferSize, l)

		clock := clockwork.NewFakeClockAt(time.Unix(s.StartTs, 0))
		lg := ledger.NewLedger(
			store,
			tokenMover.NewStoreTokenMover(l),
			proofs.NewKeccakVerifier(),
			events.MultiSink{events.NewLoggingSink(l), events.NewEventBusSink(bus)},
			clock,
			sink,
			l,
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		results, runErr := scenario.NewRunner(lg, clock, l).Run(ctx, s)
		if err := writeOutput(os.Stdout, viper.GetString("output"), results); err != nil {
			return err
		}

		wait()
		for kind, n := range counts {
			l.Sugar().Infow("Ledger events", zap.String("kind", kind), zap.Int("count", n))
		}
		if runErr != nil {
			return runErr
		}

		if viper.GetBool("hold") {
			l.Sugar().Infow("Scenario complete, holding until interrupted")
			<-ctx.Done()
		}
		return nil
	},
}

func openStore(cfg *config.Config, l *zap.Logger) (storage.Store, error) {
	switch cfg.StorageConfig.Backend {
	case config.StorageBackend_Postgres:
		pg, err := postgres.NewPostgres(postgres.PostgresConfigFromDbConfig(&cfg.DatabaseConfig))
		if err != nil {
			return nil, err
		}
		grm, err := postgres.NewGormFromPostgresConnection(pg.Db)
		if err != nil {
			return nil, err
		}
		if err := migrations.NewMigrator(pg.Db, grm, l, cfg).MigrateAll(); err != nil {
			return nil, err
		}
		return pgStorage.NewPostgresStore(grm, l, cfg), nil
	default:
		ldb, err := leveldb.NewLevelDBStore(cfg.GetLevelDBPath(), l)
		if err != nil {
			return nil, err
		}
		return ldb, nil
	}
}

// countLedgerEvents subscribes to bus and tallies ledger events by kind.
// The returned func unsubscribes and waits for the consumer to drain.
func countLedgerEvents(ctx context.Context, bus eventBusTypes.IEventBus, bufferSize int, l *zap.Logger) (map[string]int, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	consumer := &eventBusTypes.Consumer{
		Id:      eventBusTypes.ConsumerId("simulate"),
		Context: ctx,
		Channel: make(chan *eventBusTypes.Event, bufferSize),
	}
	bus.Subscribe(consumer)

	counts := make(map[string]int)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case e := <-consumer.Channel:
				if data, ok := e.Data.(*eventBusTypes.LedgerEventData); ok {
					counts[data.KindName]++
				}
			case <-ctx.Done():
				for {
					select {
					case e := <-consumer.Channel:
						if data, ok := e.Data.(*eventBusTypes.LedgerEventData); ok {
							counts[data.KindName]++
						}
					default:
						return
					}
				}
			}
		}
	}()

	return counts, func() {
		bus.Unsubscribe(consumer)
		cancel()
		wg.Wait()
		l.Sugar().Debugw("Event consumer drained", zap.String("consumerId", string(consumer.Id)))
	}
}

func initSimulateCmd(cmd *cobra.Command) {
	bindCommandFlags(cmd)
}

func init() {
	simulateCmd.Flags().String("scenario", "", "Path to the scenario YAML file")
	simulateCmd.Flags().String("output", "yaml", `Output format ("yaml" or "json")`)
	simulateCmd.Flags().Bool("hold", false, "Keep running after the scenario, e.g. to scrape metrics")
}
