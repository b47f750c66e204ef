package connection

import (
	"context"
	"fmt"
	"sync"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/circleci/mongoprofiler/mongoex"
	"github.com/circleci/mongoprofiler/o11y"
	"github.com/circleci/mongoprofiler/querylog"
	"github.com/circleci/mongoprofiler/system"
)

// Dialer creates the client for a connection. If sys is not nil the client
// should register its cleanups and health checks with it.
type Dialer func(ctx context.Context, cfg Config, sys *system.System) (mongoex.ClientAPI, error)

// DriverDialer creates a driver client, loading it into sys when there is one.
func DriverDialer(ctx context.Context, cfg Config, sys *system.System) (mongoex.ClientAPI, error) {
	if sys == nil {
		client, err := mongoex.New(ctx, cfg.appName(), cfg.mongoConfig())
		if err != nil {
			return nil, err
		}
		return mongoex.DriverClient(client), nil
	}

	client, err := mongoex.Load(ctx, cfg.Name, cfg.appName(), cfg.mongoConfig(), sys)
	if err != nil {
		return nil, err
	}
	return mongoex.DriverClient(client), nil
}

type FactoryConfig struct {
	Registry *Registry
	// Logger receives every query made on the created connections. It may be nil to switch query logging off.
	Logger *querylog.Logger
	// System is optional, it takes over disconnecting the clients.
	System *system.System
	// Dialer defaults to DriverDialer.
	Dialer Dialer
}

// Factory creates instrumented connections from the registry, reusing one client per connection name.
type Factory struct {
	registry *Registry
	logger   *querylog.Logger
	sys      *system.System
	dial     Dialer

	mu      sync.Mutex
	clients map[string]*mongoex.Client
}

func NewFactory(cfg FactoryConfig) *Factory {
	dial := cfg.Dialer
	if dial == nil {
		dial = DriverDialer
	}
	return &Factory{
		registry: cfg.Registry,
		logger:   cfg.Logger,
		sys:      cfg.System,
		dial:     dial,
		clients:  map[string]*mongoex.Client{},
	}
}

// CreateConnection returns the named database on the named connection. The connection name is
// registered with the query logger.
func (f *Factory) CreateConnection(ctx context.Context, clientName, databaseName string) (db *mongoex.Database, err error) {
	ctx, span := o11y.StartSpan(ctx, "connection: create")
	defer o11y.End(span, &err)
	span.AddField("connection", clientName)
	span.AddField("database", databaseName)

	client, err := f.Client(ctx, clientName)
	if err != nil {
		return nil, err
	}

	f.logger.RegisterConnection(clientName)
	return client.Database(databaseName), nil
}

// Client returns the instrumented client for the named connection, creating it on first use.
func (f *Factory) Client(ctx context.Context, name string) (*mongoex.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client, nil
	}

	cfg, err := f.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	api, err := f.dial(ctx, cfg, f.sys)
	if err != nil {
		return nil, &ConnectionError{Name: name, Err: err}
	}

	client := mongoex.NewClient(name, api, f.logger)
	f.clients[name] = client
	return client, nil
}

// Close disconnects every client created so far. When the factory was given a system
// the system cleanup disconnects them instead, so Close only forgets them.
func (f *Factory) Close(ctx context.Context) error {
	f.mu.Lock()
	clients := f.clients
	f.clients = map[string]*mongoex.Client{}
	f.mu.Unlock()

	if f.sys != nil {
		return nil
	}

	var result error
	for _, client := range clients {
		if err := client.Disconnect(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("connection %q: disconnect: %w", client.Name(), err))
		}
	}
	return result
}
