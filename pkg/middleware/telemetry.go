package middleware

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/peter-kozarec/rollstat/pkg/tools/rolling"
)

type Telemetry struct {
	logger *zap.Logger

	observationCounter int64
	acceptedCounter    int64
	rejectedCounter    int64
	failedCounter      int64
}

func NewTelemetry(logger *zap.Logger) *Telemetry {
	return &Telemetry{
		logger: logger,
	}
}

func (t *Telemetry) WithObservation(handler ObservationHandler) ObservationHandler {
	return func(ctx context.Context, value any) error {
		t.observationCounter++
		err := handler(ctx, value)
		switch {
		case err == nil:
			t.acceptedCounter++
		case errors.Is(err, rolling.ErrInvalidObservation):
			t.rejectedCounter++
		default:
			t.failedCounter++
		}
		return err
	}
}

func (t *Telemetry) Observations() int64 { return t.observationCounter }
func (t *Telemetry) Accepted() int64     { return t.acceptedCounter }
func (t *Telemetry) Rejected() int64     { return t.rejectedCounter }
func (t *Telemetry) Failed() int64       { return t.failedCounter }

func (t *Telemetry) PrintStatistics() {
	t.logger.Info("observation statistics",
		zap.Int64("observations", t.observationCounter),
		zap.Int64("accepted", t.acceptedCounter),
		zap.Int64("rejected", t.rejectedCounter),
		zap.Int64("failed", t.failedCounter))
}
