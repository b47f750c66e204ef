package connection

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circleci/mongoprofiler/config/secret"
	"github.com/circleci/mongoprofiler/mongoex"
)

var (
	// ErrUnknownConnection is returned when resolving a name that was never configured.
	ErrUnknownConnection = errors.New("unknown connection")

	errNoName = errors.New("connection config must have a name")
)

// Config defines one named connection.
type Config struct {
	Name string
	URI  secret.String
	// URIOptions are merged into the query string of the URI.
	URIOptions map[string]string
	// DriverOptions are applied after the URI.
	DriverOptions *options.ClientOptions
	// AppName is reported to the server, it defaults to the connection name.
	AppName string
	UseTLS  bool
}

func (c Config) appName() string {
	if c.AppName == "" {
		return c.Name
	}
	return c.AppName
}

func (c Config) mongoConfig() mongoex.Config {
	return mongoex.Config{
		URI:        c.URI,
		URIOptions: c.URIOptions,
		UseTLS:     c.UseTLS,
		Options:    c.DriverOptions,
	}
}

// clone copies the config so later changes to the caller's map do not leak into the registry.
func (c Config) clone() Config {
	if c.URIOptions == nil {
		return c
	}
	opts := make(map[string]string, len(c.URIOptions))
	for k, v := range c.URIOptions {
		opts[k] = v
	}
	c.URIOptions = opts
	return c
}

// ConnectionError is returned when the driver client for a connection could not be created.
type ConnectionError struct {
	Name string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %q: failed to create client: %v", e.Name, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
