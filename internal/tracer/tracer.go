package tracer

import (
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/mocktracer"
	ddTracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const serviceName = "rewards-ledger"

// StartTracer initializes the DataDog tracer, or a mock tracer when tracing is disabled.
func StartTracer(enabled bool, env string) {
	if !enabled {
		mocktracer.Start()
		return
	}
	opts := []ddTracer.StartOption{
		ddTracer.WithServiceName(serviceName),
		ddTracer.WithGlobalServiceName(true),
		ddTracer.WithDebugMode(false),
		ddTracer.WithLogStartup(false),
	}
	if env != "" {
		opts = append(opts, ddTracer.WithEnv(env))
	}
	ddTracer.Start(opts...)
}

func StopTracer() {
	ddTracer.Stop()
}
