package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/edgard/intillasense/internal/app/tasks"
	"github.com/edgard/intillasense/internal/config"
)

func TestRunStopsOnCancel(t *testing.T) {
	log := zaptest.NewLogger(t)
	sched, err := NewScheduler(log, config.SchedulerConfig{}, map[string]tasks.ScheduledTaskFunc{})
	require.NoError(t, err)

	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	a := New(log, srv, nil, sched, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	a := New(zaptest.NewLogger(t), srv, nil, nil, time.Second)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server failed")
}
