package engine

import (
	"context"

	"isolation/experiments/metrics"
)

type Engine interface {
	// Run plays a game until one side has no legal move left
	Run(ctx context.Context) (winner int, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
