package mongoex

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/circleci/mongoprofiler/querylog"
	"github.com/circleci/mongoprofiler/testing/testcontext"
)

func newTestCollection(name string) (*Collection, *fakeCollection, *querylog.Logger) {
	fake := &fakeCollection{name: name}
	logger := querylog.New()
	return NewCollection(fake, logger, "default", "library"), fake, logger
}

func TestCollection_InsertOne(t *testing.T) {
	ctx := testcontext.Background()
	coll, fake, logger := newTestCollection("books")

	res, err := coll.InsertOne(ctx, bson.M{"a": 1})
	assert.Assert(t, err)
	assert.Check(t, cmp.Equal(res.InsertedID, "an-id"))
	assert.Check(t, cmp.DeepEqual(fake.calls[0].arg, bson.M{"a": 1}))

	ev, err := logger.TakeNext()
	assert.Assert(t, err)
	assert.Check(t, cmp.Equal(ev.Method, querylog.MethodInsertOne))
	assert.Check(t, cmp.Equal(ev.Collection, "books"))
	assert.Check(t, cmp.Equal(ev.Database, "library"))
	assert.Check(t, cmp.Equal(ev.Client, "default"))
	assert.Check(t, cmp.DeepEqual(ev.Filter, bson.D{}))
	assert.Check(t, cmp.DeepEqual(ev.Payload, bson.M{"a": 1}))
	assert.Check(t, cmp.Equal(ev.State(), querylog.StateCompleted))
	assert.Check(t, !ev.FinishedAt().Before(ev.StartedAt()))
	assert.Check(t, !logger.HasPending())
}

func TestCollection_FailedCallStaysStarted(t *testing.T) {
	ctx := testcontext.Background()
	errBoom := errors.New("boom")

	tests := []struct {
		name   string
		call   func(c *Collection) error
		method querylog.Method
	}{
		{
			name: "find",
			call: func(c *Collection) error {
				_, err := c.Find(ctx, bson.M{"a": 1})
				return err
			},
			method: querylog.MethodFind,
		},
		{
			name: "deleteOne",
			call: func(c *Collection) error {
				_, err := c.DeleteOne(ctx, bson.M{"a": 1})
				return err
			},
			method: querylog.MethodDeleteOne,
		},
		{
			name: "deleteMany",
			call: func(c *Collection) error {
				_, err := c.DeleteMany(ctx, bson.M{"a": 1})
				return err
			},
			method: querylog.MethodDeleteMany,
		},
		{
			name: "replaceOne",
			call: func(c *Collection) error {
				_, err := c.ReplaceOne(ctx, bson.M{"a": 1}, bson.M{"a": 2})
				return err
			},
			method: querylog.MethodReplaceOne,
		},
		{
			name: "insertOne",
			call: func(c *Collection) error {
				_, err := c.InsertOne(ctx, bson.M{"a": 1})
				return err
			},
			method: querylog.MethodInsertOne,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			coll, fake, logger := newTestCollection("books")
			fake.err = errBoom

			err := tt.call(coll)
			assert.Check(t, err == errBoom, "error should be returned untouched, got %v", err)

			events := logger.Drain()
			assert.Assert(t, cmp.Len(events, 1))
			assert.Check(t, cmp.Equal(events[0].Method, tt.method))
			assert.Check(t, cmp.Equal(events[0].State(), querylog.StateStarted))
			assert.Check(t, events[0].FinishedAt().IsZero())
		})
	}
}

func TestCollection_SingleResults(t *testing.T) {
	ctx := testcontext.Background()

	t.Run("match is completed", func(t *testing.T) {
		coll, _, logger := newTestCollection("books")

		res := coll.FindOne(ctx, bson.M{"name": "Dune"})
		assert.Assert(t, res.Err())

		ev, err := logger.TakeNext()
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(ev.State(), querylog.StateCompleted))
	})

	t.Run("no documents is completed", func(t *testing.T) {
		coll, fake, logger := newTestCollection("books")
		fake.single = &mongo.SingleResult{}

		res := coll.FindOneAndDelete(ctx, bson.M{"name": "Dune"})
		assert.Check(t, cmp.ErrorIs(res.Err(), mongo.ErrNoDocuments))

		ev, err := logger.TakeNext()
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(ev.Method, querylog.MethodFindOneAndDelete))
		assert.Check(t, cmp.Equal(ev.State(), querylog.StateCompleted))
	})

	t.Run("error stays started", func(t *testing.T) {
		coll, fake, logger := newTestCollection("books")
		fake.single = mongo.NewSingleResultFromDocument(nil, nil, nil)

		res := coll.FindOneAndUpdate(ctx, bson.M{"name": "Dune"}, bson.M{"$set": bson.M{"year": 1965}})
		assert.Check(t, res == fake.single)
		assert.Check(t, cmp.ErrorIs(res.Err(), mongo.ErrNilDocument))

		ev, err := logger.TakeNext()
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(ev.Method, querylog.MethodFindOneAndUpdate))
		assert.Check(t, cmp.DeepEqual(ev.Payload, bson.M{"$set": bson.M{"year": 1965}}))
		assert.Check(t, cmp.Equal(ev.State(), querylog.StateStarted))
	})
}

func TestCollection_EventsInCallOrder(t *testing.T) {
	ctx := testcontext.Background()
	coll, _, logger := newTestCollection("books")

	_, err := coll.Find(ctx, bson.M{"q": 1})
	assert.Assert(t, err)
	assert.Assert(t, coll.FindOne(ctx, bson.M{"q": 2}).Err())
	assert.Assert(t, coll.FindOneAndUpdate(ctx, bson.M{"q": 3}, bson.M{"$set": bson.M{"u": 3}}).Err())
	assert.Assert(t, coll.FindOneAndDelete(ctx, bson.M{"q": 4}).Err())
	_, err = coll.DeleteOne(ctx, bson.M{"q": 5})
	assert.Assert(t, err)
	_, err = coll.DeleteMany(ctx, bson.M{"q": 6})
	assert.Assert(t, err)
	_, err = coll.ReplaceOne(ctx, bson.M{"q": 7}, bson.M{"r": 7})
	assert.Assert(t, err)
	_, err = coll.InsertOne(ctx, bson.M{"i": 8})
	assert.Assert(t, err)

	type logged struct {
		Method  querylog.Method
		Filter  interface{}
		Payload interface{}
	}
	var got []logged
	for logger.HasPending() {
		ev, err := logger.TakeNext()
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(ev.Collection, "books"))
		assert.Check(t, cmp.Equal(ev.State(), querylog.StateCompleted))
		got = append(got, logged{Method: ev.Method, Filter: ev.Filter, Payload: ev.Payload})
	}

	assert.Check(t, cmp.DeepEqual(got, []logged{
		{Method: querylog.MethodFind, Filter: bson.M{"q": 1}},
		{Method: querylog.MethodFindOne, Filter: bson.M{"q": 2}},
		{Method: querylog.MethodFindOneAndUpdate, Filter: bson.M{"q": 3}, Payload: bson.M{"$set": bson.M{"u": 3}}},
		{Method: querylog.MethodFindOneAndDelete, Filter: bson.M{"q": 4}},
		{Method: querylog.MethodDeleteOne, Filter: bson.M{"q": 5}},
		{Method: querylog.MethodDeleteMany, Filter: bson.M{"q": 6}},
		{Method: querylog.MethodReplaceOne, Filter: bson.M{"q": 7}, Payload: bson.M{"r": 7}},
		{Method: querylog.MethodInsertOne, Filter: bson.D{}, Payload: bson.M{"i": 8}},
	}))
}

func TestCollection_ForwardsArguments(t *testing.T) {
	ctx := testcontext.Background()
	coll, fake, _ := newTestCollection("books")

	findOpts := options.Find().SetLimit(10).SetSort(bson.D{{Key: "name", Value: 1}})
	_, err := coll.Find(ctx, bson.M{"a": 1}, findOpts)
	assert.Assert(t, err)

	replaceOpts := options.Replace().SetUpsert(true)
	_, err = coll.ReplaceOne(ctx, bson.M{"a": 1}, bson.M{"b": 2}, replaceOpts)
	assert.Assert(t, err)

	_, err = coll.Find(ctx, nil)
	assert.Assert(t, err)

	assert.Assert(t, cmp.Len(fake.calls, 3))
	assert.Check(t, fake.calls[0].opts.([]*options.FindOptions)[0] == findOpts)
	assert.Check(t, fake.calls[1].opts.([]*options.ReplaceOptions)[0] == replaceOpts)
	assert.Check(t, cmp.DeepEqual(fake.calls[1].arg, bson.M{"b": 2}))

	t.Run("nil filter is passed on as nil", func(t *testing.T) {
		assert.Check(t, fake.calls[2].filter == nil)
	})
}

func TestCollection_NilLogger(t *testing.T) {
	ctx := testcontext.Background()
	fake := &fakeCollection{name: "books"}
	coll := NewCollection(fake, nil, "default", "library")

	_, err := coll.InsertOne(ctx, bson.M{"a": 1})
	assert.Check(t, err)
	assert.Check(t, cmp.Len(fake.calls, 1))
}
