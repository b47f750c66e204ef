package mongoex

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/circleci/mongoprofiler/system"
)

// Load connects to mongo, and adds the connection's cleanup, health check and pool metrics to sys.
// The name identifies the connection in health checks and metrics.
func Load(ctx context.Context, name, appName string, cfg Config, sys *system.System) (*mongo.Client, error) {
	metrics := NewPoolMetrics("mongo-" + name)
	cfg.PoolMonitor = metrics.PoolMonitor(cfg.PoolMonitor)

	client, err := New(ctx, appName, cfg)
	if err != nil {
		return nil, err
	}

	sys.AddMetrics(metrics)
	sys.AddHealthCheck(NewHealth(name, client))
	sys.AddCleanup(func(ctx context.Context) error {
		return client.Disconnect(ctx)
	})

	return client, nil
}
