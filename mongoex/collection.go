package mongoex

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circleci/mongoprofiler/o11y"
	"github.com/circleci/mongoprofiler/querylog"
)

// CollectionAPI is the set of collection operations that can be instrumented.
// The arguments and options are exactly those of the driver.
type CollectionAPI interface {
	Name() string
	Find(ctx context.Context, filter interface{},
		opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{},
		opts ...*options.FindOneOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter, update interface{},
		opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	FindOneAndDelete(ctx context.Context, filter interface{},
		opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult
	DeleteOne(ctx context.Context, filter interface{},
		opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{},
		opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	ReplaceOne(ctx context.Context, filter, replacement interface{},
		opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	InsertOne(ctx context.Context, document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

var (
	_ CollectionAPI = (*mongo.Collection)(nil)
	_ CollectionAPI = (*Collection)(nil)
)

// Collection logs every call made through it to a querylog.Logger, then hands the call
// to the wrapped collection unchanged.
type Collection struct {
	api      CollectionAPI
	logger   *querylog.Logger
	client   string
	database string
}

// NewCollection wraps api. The logger may be nil, in which case nothing is logged.
func NewCollection(api CollectionAPI, logger *querylog.Logger, client, database string) *Collection {
	return &Collection{
		api:      api,
		logger:   logger,
		client:   client,
		database: database,
	}
}

func (c *Collection) Name() string {
	return c.api.Name()
}

func (c *Collection) Database() string {
	return c.database
}

func (c *Collection) ClientName() string {
	return c.client
}

func (c *Collection) Find(ctx context.Context, filter interface{},
	opts ...*options.FindOptions) (cur *mongo.Cursor, err error) {

	ctx, q := c.begin(ctx, querylog.MethodFind, filter, nil)
	defer q.end(&err)

	return c.api.Find(ctx, filter, opts...)
}

func (c *Collection) FindOne(ctx context.Context, filter interface{},
	opts ...*options.FindOneOptions) *mongo.SingleResult {

	ctx, q := c.begin(ctx, querylog.MethodFindOne, filter, nil)
	res := c.api.FindOne(ctx, filter, opts...)
	q.endSingle(res)
	return res
}

func (c *Collection) FindOneAndUpdate(ctx context.Context, filter, update interface{},
	opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {

	ctx, q := c.begin(ctx, querylog.MethodFindOneAndUpdate, filter, update)
	res := c.api.FindOneAndUpdate(ctx, filter, update, opts...)
	q.endSingle(res)
	return res
}

func (c *Collection) FindOneAndDelete(ctx context.Context, filter interface{},
	opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult {

	ctx, q := c.begin(ctx, querylog.MethodFindOneAndDelete, filter, nil)
	res := c.api.FindOneAndDelete(ctx, filter, opts...)
	q.endSingle(res)
	return res
}

func (c *Collection) DeleteOne(ctx context.Context, filter interface{},
	opts ...*options.DeleteOptions) (res *mongo.DeleteResult, err error) {

	ctx, q := c.begin(ctx, querylog.MethodDeleteOne, filter, nil)
	defer q.end(&err)

	return c.api.DeleteOne(ctx, filter, opts...)
}

func (c *Collection) DeleteMany(ctx context.Context, filter interface{},
	opts ...*options.DeleteOptions) (res *mongo.DeleteResult, err error) {

	ctx, q := c.begin(ctx, querylog.MethodDeleteMany, filter, nil)
	defer q.end(&err)

	return c.api.DeleteMany(ctx, filter, opts...)
}

func (c *Collection) ReplaceOne(ctx context.Context, filter, replacement interface{},
	opts ...*options.ReplaceOptions) (res *mongo.UpdateResult, err error) {

	ctx, q := c.begin(ctx, querylog.MethodReplaceOne, filter, replacement)
	defer q.end(&err)

	return c.api.ReplaceOne(ctx, filter, replacement, opts...)
}

// InsertOne logs the document as the payload, with an empty filter.
func (c *Collection) InsertOne(ctx context.Context, document interface{},
	opts ...*options.InsertOneOptions) (res *mongo.InsertOneResult, err error) {

	ctx, q := c.begin(ctx, querylog.MethodInsertOne, nil, document)
	defer q.end(&err)

	return c.api.InsertOne(ctx, document, opts...)
}

type query struct {
	logger *querylog.Logger
	event  *querylog.Event
	span   o11y.Span
}

// begin records the event as started, so it is logged even if the driver call fails.
func (c *Collection) begin(ctx context.Context, method querylog.Method,
	filter, payload interface{}) (context.Context, *query) {

	name := c.api.Name()
	ctx, span := Span(ctx, name, string(method))
	span.AddRawField("db.name", c.database)
	span.AddRawField("db.connection", c.client)

	ev := querylog.NewEvent(method, c.client, c.database, name, filter, payload)
	c.logger.Record(ev)

	return ctx, &query{
		logger: c.logger,
		event:  ev,
		span:   span,
	}
}

func (q *query) end(err *error) {
	if *err == nil {
		q.logger.Complete(q.event)
	}
	o11y.End(q.span, err)
}

// endSingle treats a query that matched nothing as completed.
func (q *query) endSingle(res *mongo.SingleResult) {
	err := res.Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		q.span.AddRawField("db.no_documents", true)
		err = nil
	}
	q.end(&err)
}
