package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/threadhouse/internal/config"
	"github.com/threadhouse/internal/payment"
)

type fakeService struct {
	name     string
	startErr error
	blocking bool
	stopped  atomic.Bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	if s.blocking {
		<-ctx.Done()
	}
	return nil
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnCancel(t *testing.T) {
	api := &fakeService{name: "http", blocking: true}
	wk := &fakeService{name: "worker", blocking: true}
	runner := NewRunner(api, wk)
	var closed atomic.Bool
	runner.OnClose(func() error {
		closed.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled run should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop")
	}
	if !api.stopped.Load() || !wk.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
	if !closed.Load() {
		t.Fatalf("close hooks should run")
	}
}

func TestRunnerReturnsServiceError(t *testing.T) {
	boom := errors.New("listen tcp :8080: address already in use")
	api := &fakeService{name: "http", startErr: boom}
	wk := &fakeService{name: "worker", blocking: true}

	err := NewRunner(api, wk).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("want start error, got %v", err)
	}
	if !wk.stopped.Load() {
		t.Fatalf("sibling service should be stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Config: &config.Config{Server: config.ServerConfig{ShutdownTimeoutSeconds: 3}}})
	if opts.Mode != ModeAll || opts.ShutdownTimeout != 3*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected options: %+v", opts)
	}
	opts = normalizeOptions(Options{})
	if opts.ShutdownTimeout != defaultShutdownTimeout {
		t.Fatalf("default timeout want %v got %v", defaultShutdownTimeout, opts.ShutdownTimeout)
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	if _, err := BuildRunner(&config.Config{}, "cron"); err == nil {
		t.Fatalf("unknown mode should be rejected")
	}
	if ValidMode("cron") || !ValidMode(ModeWorker) {
		t.Fatalf("ValidMode mismatch")
	}
}

func TestBuildRunnerRefusesUnconfiguredGateway(t *testing.T) {
	_, err := BuildRunner(&config.Config{}, ModeAPI)
	if !errors.Is(err, payment.ErrConfigInvalid) {
		t.Fatalf("missing gateway config must stop startup, got %v", err)
	}
	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "release"},
		Payment: config.PaymentConfig{Provider: "sandbox"},
	}
	if _, err := BuildRunner(cfg, ModeAPI); !errors.Is(err, payment.ErrConfigInvalid) {
		t.Fatalf("sandbox in release must stop startup, got %v", err)
	}
}
