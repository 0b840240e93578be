package middleware

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/peter-kozarec/rollstat/pkg/tools/rolling"
)

type MonitorFlags uint8

//goland:noinspection GoUnusedConst
const (
	MonitorNone MonitorFlags = 1 << iota
	MonitorAll
	MonitorRejections
	MonitorSnapshots
)

// Monitor logs what happens to each observation. Rejected observations are logged and
// swallowed so a single bad value does not stop the stream.
type Monitor struct {
	logger *zap.Logger
	stats  *rolling.Statistics
	flags  MonitorFlags
}

func NewMonitor(logger *zap.Logger, stats *rolling.Statistics, flags MonitorFlags) *Monitor {
	return &Monitor{
		logger: logger,
		stats:  stats,
		flags:  flags,
	}
}

func (m *Monitor) enabled(flag MonitorFlags) bool {
	return m.flags&flag != 0 || m.flags&MonitorAll != 0
}

func (m *Monitor) WithObservation(handler ObservationHandler) ObservationHandler {
	return func(ctx context.Context, value any) error {
		err := handler(ctx, value)
		if errors.Is(err, rolling.ErrInvalidObservation) {
			if m.enabled(MonitorRejections) {
				m.logger.Warn("observation rejected", zap.Any("value", value), zap.Error(err))
			}
			return nil
		}
		if err != nil {
			return err
		}

		if m.enabled(MonitorSnapshots) {
			m.logger.Debug("statistics", zap.Object("window", m.stats.Snapshot()))
		}
		return nil
	}
}

func (m *Monitor) PrintSnapshot() {
	m.logger.Info("final statistics", zap.Object("window", m.stats.Snapshot()))
}
