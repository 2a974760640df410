package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/riskworks/stability/internal/risk/pipeline"
)

func noopRunner(ctx context.Context) (*pipeline.Result, error) {
	return &pipeline.Result{}, nil
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := New("0 9 * * 1", noopRunner, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestNewInvalidExpression(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := New("not a schedule", noopRunner, logger); err == nil {
		t.Fatal("want error for invalid cron expression")
	}
}
