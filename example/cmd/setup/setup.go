// Package setup contains common wiring/setup code used by all services
package setup

import (
	"context"
	_ "time/tzdata" // include embedded timezone data

	"github.com/circleci/mongoprofiler/config/o11y"
	"github.com/circleci/mongoprofiler/config/secret"
	"github.com/circleci/mongoprofiler/connection"
	"github.com/circleci/mongoprofiler/mongoex"
	"github.com/circleci/mongoprofiler/profiler"
	"github.com/circleci/mongoprofiler/querylog"
	"github.com/circleci/mongoprofiler/system"
)

type CLI struct {
	AdminAddr string `env:"ADMIN_ADDR" default:":8001" help:"The address for the admin api to listen on"`

	O11yStatsd           string        `name:"o11y-statsd" env:"O11Y_STATSD" default:"metrics.kube-system.svc.cluster.local:8125" help:"Address to send statsd metrics"`
	O11yHoneycombEnabled bool          `name:"o11y-honeycomb" env:"O11Y_HONEYCOMB" default:"true" help:"Send traces to honeycomb"`
	O11yHoneycombDataset string        `name:"o11y-honeycomb-dataset" env:"O11Y_HONEYCOMB_DATASET" default:"execution"`
	O11yHoneycombKey     secret.String `name:"o11y-honeycomb-key" env:"O11Y_HONEYCOMB_KEY"`
	O11yFormat           string        `name:"o11y-format" env:"O11Y_FORMAT" enum:"json,color,text" default:"json" help:"Format used for stderr logging"`
	O11yRollbarToken     secret.String `name:"o11y-rollbar-token" env:"O11Y_ROLLBAR_TOKEN"`
	O11yRollbarEnv       string        `name:"o11y-rollbar-env" env:"O11Y_ROLLBAR_ENV" default:"production"`

	MongoURI        secret.String     `name:"mongo-uri" env:"MONGO_URI" default:"mongodb://localhost:27017" help:"The mongo connection string"`
	MongoURIOptions map[string]string `name:"mongo-uri-options" env:"MONGO_URI_OPTIONS" help:"Extra options merged into the connection string"`
	MongoTLS        bool              `name:"mongo-tls" env:"MONGO_TLS" help:"Connect to mongo over TLS"`
	MongoDatabase   string            `name:"mongo-database" env:"MONGO_DATABASE" default:"example"`
	ConnectionName  string            `env:"CONNECTION_NAME" default:"primary" help:"The name the mongo connection is registered under"`

	QueryLogging bool `env:"QUERY_LOGGING" default:"true" help:"Record every query for the profiler"`
	ProfilerSize int  `env:"PROFILER_SIZE" default:"100" help:"The number of request profiles to keep"`
}

func LoadO11y(version, mode string, cli CLI) (context.Context, func(context.Context), error) {
	cfg := o11y.Config{
		Statsd:            cli.O11yStatsd,
		RollbarToken:      cli.O11yRollbarToken,
		RollbarEnv:        cli.O11yRollbarEnv,
		RollbarServerRoot: "github.com/circleci/mongoprofiler/example",
		HoneycombEnabled:  cli.O11yHoneycombEnabled,
		HoneycombDataset:  cli.O11yHoneycombDataset,
		HoneycombKey:      cli.O11yHoneycombKey,
		Format:            cli.O11yFormat,
		Version:           version,
		Service:           "example",
		StatsNamespace:    "circleci.example.",
		Mode:              mode,
	}
	return o11y.Setup(context.Background(), cfg)
}

// Connections is the wired connection layer of a service.
type Connections struct {
	Factory  *connection.Factory
	Logger   *querylog.Logger
	Profiler *profiler.Collector
}

// LoadConnections registers the configured connection and builds the factory. Query logging
// and the profiler are only set up when the CLI asks for them.
func LoadConnections(ctx context.Context, cli CLI, sys *system.System) (*Connections, error) {
	registry := connection.NewRegistry()
	err := registry.Configure(connection.Config{
		Name:       cli.ConnectionName,
		URI:        cli.MongoURI,
		URIOptions: cli.MongoURIOptions,
		UseTLS:     cli.MongoTLS,
		AppName:    "example",
	})
	if err != nil {
		return nil, err
	}

	c := &Connections{}
	if cli.QueryLogging {
		c.Logger = querylog.New()
		c.Profiler, err = profiler.NewCollector(c.Logger, cli.ProfilerSize)
		if err != nil {
			return nil, err
		}
	}

	c.Factory = connection.NewFactory(connection.FactoryConfig{
		Registry: registry,
		Logger:   c.Logger,
		System:   sys,
	})
	return c, nil
}

// Database creates the service database on the configured connection.
func (c *Connections) Database(ctx context.Context, cli CLI) (*mongoex.Database, error) {
	return c.Factory.CreateConnection(ctx, cli.ConnectionName, cli.MongoDatabase)
}
