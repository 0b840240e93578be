package middleware

import (
	"context"

	"github.com/peter-kozarec/rollstat/pkg/datasource"
	"github.com/peter-kozarec/rollstat/pkg/tools/rolling"
)

type ObservationHandler = datasource.Handler

// Insert is the terminal handler feeding every observation into stats.
func Insert(stats *rolling.Statistics) ObservationHandler {
	return func(_ context.Context, value any) error {
		return stats.InsertValue(value)
	}
}
