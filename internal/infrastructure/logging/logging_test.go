package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
		enabled zapcore.Level
	}{
		{name: "defaults", enabled: zapcore.InfoLevel},
		{name: "debug console", level: "debug", format: "console", enabled: zapcore.DebugLevel},
		{name: "warn json", level: "warn", format: "JSON", enabled: zapcore.WarnLevel},
		{name: "bad level", level: "loud", wantErr: true},
		{name: "bad format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("expected level %v to be enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && logger.Core().Enabled(tt.enabled-1) {
				t.Errorf("expected level %v to be disabled", tt.enabled-1)
			}
		})
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := UnaryServerInterceptor(zap.New(core))
	info := &grpc.UnaryServerInfo{FullMethod: "/unicatalog.v1.CatalogService/GetEntity"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notFound := status.Error(codes.NotFound, "entity not found")
	_, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, notFound
	})
	if !errors.Is(err, notFound) {
		t.Fatalf("expected handler error, got %v", err)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Errorf("expected success at debug, got %v", entries[0].Level)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("expected failure at warn, got %v", entries[1].Level)
	}
	if code := entries[1].ContextMap()["code"]; code != "NotFound" {
		t.Errorf("expected code NotFound, got %v", code)
	}
}

func TestUnaryServerInterceptor_NilLogger(t *testing.T) {
	interceptor := UnaryServerInterceptor(nil)
	resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Errorf("expected pass-through, got %v, %v", resp, err)
	}
}
