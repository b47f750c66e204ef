package connection

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/circleci/mongoprofiler/mongoex"
	"github.com/circleci/mongoprofiler/system"
)

type fakeClient struct {
	cfg           Config
	inserted      []interface{}
	disconnected  int
	disconnectErr error
}

func (f *fakeClient) Database(name string, _ ...*options.DatabaseOptions) mongoex.DatabaseAPI {
	return &fakeDatabase{client: f, name: name}
}

func (f *fakeClient) Ping(context.Context, *readpref.ReadPref) error {
	return nil
}

func (f *fakeClient) Disconnect(context.Context) error {
	f.disconnected++
	return f.disconnectErr
}

type fakeDatabase struct {
	client *fakeClient
	name   string
}

func (f *fakeDatabase) Name() string {
	return f.name
}

func (f *fakeDatabase) Collection(name string, _ ...*options.CollectionOptions) mongoex.CollectionAPI {
	return &fakeCollection{client: f.client, name: name}
}

// fakeCollection only supports InsertOne, the other methods come from the nil embedded interface.
type fakeCollection struct {
	mongoex.CollectionAPI
	client *fakeClient
	name   string
}

func (f *fakeCollection) Name() string {
	return f.name
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{},
	_ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.client.inserted = append(f.client.inserted, document)
	return &mongo.InsertOneResult{InsertedID: len(f.client.inserted)}, nil
}

// fakeDialer hands out fake clients, remembering every one it dialled.
type fakeDialer struct {
	err     error
	clients []*fakeClient
}

func (d *fakeDialer) dial(_ context.Context, cfg Config, _ *system.System) (mongoex.ClientAPI, error) {
	if d.err != nil {
		return nil, d.err
	}
	c := &fakeClient{cfg: cfg}
	d.clients = append(d.clients, c)
	return c, nil
}
