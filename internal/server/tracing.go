package server

import (
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	TracesNone   = "none"
	TracesStdout = "stdout"
)

// newTracerProvider builds the provider for the exporter named by
// OTEL_TRACES_EXPORTER. With "none" spans are recorded but not exported.
func newTracerProvider(exporter string, out io.Writer) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "taskboard"))),
	}
	switch exporter {
	case "", TracesNone:
	case TracesStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	default:
		return nil, fmt.Errorf("unsupported traces exporter %q", exporter)
	}
	return sdktrace.NewTracerProvider(opts...), nil
}
