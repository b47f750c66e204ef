package mongoex

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Health is a system.HealthChecker that pings the server for readiness.
type Health struct {
	name   string
	client pinger
}

func NewHealth(name string, client pinger) *Health {
	return &Health{
		name:   name,
		client: client,
	}
}

func (m *Health) HealthChecks() (name string, ready, live func(ctx context.Context) error) {
	ready = func(ctx context.Context) error {
		ctxPing, cancelPing := context.WithTimeout(ctx, 5*time.Second)
		defer cancelPing()

		err := m.client.Ping(ctxPing, readpref.SecondaryPreferred())
		if err != nil {
			return fmt.Errorf("mongoDB health check failed on ping: %w", err)
		}

		return nil
	}
	return "mongo-" + m.name, ready, nil
}
