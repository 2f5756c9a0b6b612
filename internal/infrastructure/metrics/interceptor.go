package metrics

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// Observe records one completed call of method on the collector and, when
// set, the exporter.
func Observe(collector *Collector, exporter *PrometheusExporter, method string, start time.Time, err error) {
	duration := time.Since(start).Seconds()

	collector.RecordRequest(method)
	collector.RecordDuration(method, duration)
	if err != nil {
		collector.RecordError(method)
	}

	if exporter == nil {
		return
	}
	exporter.RecordRequest(method)
	exporter.RecordDuration(method, duration)
	if err != nil {
		exporter.RecordError(method)
	}
}

// UnaryServerInterceptor returns a gRPC interceptor that records metrics for each request.
func UnaryServerInterceptor(collector *Collector, exporter *PrometheusExporter) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		Observe(collector, exporter, info.FullMethod, start, err)
		return resp, err
	}
}
