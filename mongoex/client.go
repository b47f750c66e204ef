package mongoex

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/circleci/mongoprofiler/querylog"
)

type ClientAPI interface {
	Database(name string, opts ...*options.DatabaseOptions) DatabaseAPI
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
}

// DriverClient adapts a driver client to ClientAPI.
func DriverClient(c *mongo.Client) ClientAPI {
	return driverClient{client: c}
}

type driverClient struct {
	client *mongo.Client
}

func (d driverClient) Database(name string, opts ...*options.DatabaseOptions) DatabaseAPI {
	return DriverDatabase(d.client.Database(name, opts...))
}

func (d driverClient) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return d.client.Ping(ctx, rp)
}

func (d driverClient) Disconnect(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Client is a named connection whose databases and collections log every query.
type Client struct {
	name   string
	api    ClientAPI
	logger *querylog.Logger
}

func NewClient(name string, api ClientAPI, logger *querylog.Logger) *Client {
	return &Client{
		name:   name,
		api:    api,
		logger: logger,
	}
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) Database(name string, opts ...*options.DatabaseOptions) *Database {
	return NewDatabase(c.name, c.api.Database(name, opts...), c.logger)
}

// Collection is a shortcut for selecting a database then a collection in it.
func (c *Client) Collection(database, collection string) *Collection {
	return c.Database(database).Collection(collection)
}

func (c *Client) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return c.api.Ping(ctx, rp)
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.api.Disconnect(ctx)
}
