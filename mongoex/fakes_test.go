package mongoex

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type fakeCall struct {
	method string
	filter interface{}
	arg    interface{}
	opts   interface{}
}

// fakeCollection records what it was called with and returns err from every call.
type fakeCollection struct {
	name   string
	err    error
	single *mongo.SingleResult
	calls  []fakeCall
}

func (f *fakeCollection) Name() string {
	return f.name
}

func (f *fakeCollection) record(method string, filter, arg, opts interface{}) {
	f.calls = append(f.calls, fakeCall{method: method, filter: filter, arg: arg, opts: opts})
}

func (f *fakeCollection) singleResult() *mongo.SingleResult {
	if f.single != nil {
		return f.single
	}
	return mongo.NewSingleResultFromDocument(map[string]interface{}{"ok": 1}, nil, nil)
}

func (f *fakeCollection) Find(_ context.Context, filter interface{},
	opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.record("find", filter, nil, opts)
	if f.err != nil {
		return nil, f.err
	}
	return mongo.NewCursorFromDocuments(nil, nil, nil)
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{},
	opts ...*options.FindOneOptions) *mongo.SingleResult {
	f.record("findOne", filter, nil, opts)
	return f.singleResult()
}

func (f *fakeCollection) FindOneAndUpdate(_ context.Context, filter, update interface{},
	opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	f.record("findOneAndUpdate", filter, update, opts)
	return f.singleResult()
}

func (f *fakeCollection) FindOneAndDelete(_ context.Context, filter interface{},
	opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult {
	f.record("findOneAndDelete", filter, nil, opts)
	return f.singleResult()
}

func (f *fakeCollection) DeleteOne(_ context.Context, filter interface{},
	opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.record("deleteOne", filter, nil, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (f *fakeCollection) DeleteMany(_ context.Context, filter interface{},
	opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.record("deleteMany", filter, nil, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.DeleteResult{DeletedCount: 2}, nil
}

func (f *fakeCollection) ReplaceOne(_ context.Context, filter, replacement interface{},
	opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	f.record("replaceOne", filter, replacement, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{},
	opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.record("insertOne", nil, document, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.InsertOneResult{InsertedID: "an-id"}, nil
}

type fakeDatabase struct {
	name        string
	collections map[string]*fakeCollection
}

func (f *fakeDatabase) Name() string {
	return f.name
}

func (f *fakeDatabase) Collection(name string, _ ...*options.CollectionOptions) CollectionAPI {
	if f.collections == nil {
		f.collections = map[string]*fakeCollection{}
	}
	c, ok := f.collections[name]
	if !ok {
		c = &fakeCollection{name: name}
		f.collections[name] = c
	}
	return c
}

type fakeClient struct {
	databases    map[string]*fakeDatabase
	pingErr      error
	disconnected bool
}

func (f *fakeClient) Database(name string, _ ...*options.DatabaseOptions) DatabaseAPI {
	if f.databases == nil {
		f.databases = map[string]*fakeDatabase{}
	}
	d, ok := f.databases[name]
	if !ok {
		d = &fakeDatabase{name: name}
		f.databases[name] = d
	}
	return d
}

func (f *fakeClient) Ping(context.Context, *readpref.ReadPref) error {
	return f.pingErr
}

func (f *fakeClient) Disconnect(context.Context) error {
	f.disconnected = true
	return nil
}
