package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
)

func testGracefulServer() *GracefulServer {
	cfg := &config.Config{Server: config.ServerConfig{
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}}
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	return NewGracefulServer(srv, observability.DiscardLogger(), cfg)
}

func TestGracefulServer_HooksRunInOrder(t *testing.T) {
	gs := testGracefulServer()

	var order []int
	for i := range 3 {
		gs.RegisterShutdownHook(func(ctx context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gs.Serve(ctx); err != nil {
		t.Fatalf("Serve() returned %v", err)
	}

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("expected hooks 0,1,2, got %v", order)
	}
}

func TestGracefulServer_HookErrorsAreJoined(t *testing.T) {
	gs := testGracefulServer()

	closeErr := errors.New("close failed")
	ran := false
	gs.RegisterShutdownHook(func(ctx context.Context) error { return closeErr })
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		ran = true
		return nil
	})

	err := gs.shutdown(context.Background())
	if !errors.Is(err, closeErr) {
		t.Errorf("expected hook error, got %v", err)
	}
	if !ran {
		t.Error("a failing hook should not stop later hooks")
	}
}
