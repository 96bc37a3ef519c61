// Package telemetry wires OpenTelemetry tracing and metrics export.
//
// Services create tracers and meters from the otel globals; New installs
// OTLP-backed providers behind those globals when telemetry.enabled is set,
// and leaves the no-op defaults in place otherwise.
//
//	tel, err := telemetry.New(ctx, cfg.Telemetry, logger)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Exporter failures never stop the process: the instance is marked degraded
// and the affected signal stays no-op.
//
// Configuration:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc          # or http/protobuf
//	  sample_rate: 1.0
//	  export_interval: 15s
//
// Use NewTestTelemetry in tests to record spans and metrics in memory.
package telemetry
