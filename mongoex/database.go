package mongoex

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circleci/mongoprofiler/querylog"
)

// DatabaseAPI is the part of a database needed to hand out collections.
type DatabaseAPI interface {
	Name() string
	Collection(name string, opts ...*options.CollectionOptions) CollectionAPI
}

// DriverDatabase adapts a driver database to DatabaseAPI.
func DriverDatabase(db *mongo.Database) DatabaseAPI {
	return driverDatabase{db: db}
}

type driverDatabase struct {
	db *mongo.Database
}

func (d driverDatabase) Name() string {
	return d.db.Name()
}

func (d driverDatabase) Collection(name string, opts ...*options.CollectionOptions) CollectionAPI {
	return d.db.Collection(name, opts...)
}

// Database hands out instrumented collections, all logging to the same logger.
type Database struct {
	api    DatabaseAPI
	logger *querylog.Logger
	client string
}

func NewDatabase(client string, api DatabaseAPI, logger *querylog.Logger) *Database {
	return &Database{
		api:    api,
		logger: logger,
		client: client,
	}
}

func (d *Database) Name() string {
	return d.api.Name()
}

// ClientName is the name of the connection the database was selected from.
func (d *Database) ClientName() string {
	return d.client
}

func (d *Database) Collection(name string, opts ...*options.CollectionOptions) *Collection {
	return NewCollection(d.api.Collection(name, opts...), d.logger, d.client, d.api.Name())
}
