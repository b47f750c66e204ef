package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/circleci/mongoprofiler/example/books"
	"github.com/circleci/mongoprofiler/profiler"
	"github.com/circleci/mongoprofiler/querylog"
	"github.com/circleci/mongoprofiler/testing/mongofixture"
)

type fixture struct {
	url       string
	Store     *books.Store
	Collector *profiler.Collector
	Logger    *querylog.Logger
}

// startAPI starts the api without a store, for routes that do not touch the database.
func startAPI(ctx context.Context, t testing.TB) *fixture {
	t.Helper()

	logger := querylog.New()
	collector, err := profiler.NewCollector(logger, 10)
	assert.Assert(t, err)

	return serve(t, &fixture{Collector: collector, Logger: logger}, Options{Profiler: collector})
}

// startAPIWithStore starts the api backed by a fresh database, skipping if there is no mongo.
func startAPIWithStore(ctx context.Context, t testing.TB) *fixture {
	t.Helper()

	dbfix := mongofixture.Setup(ctx, t, mongofixture.Connection{})
	collector, err := profiler.NewCollector(dbfix.Logger, 10)
	assert.Assert(t, err)

	store := books.NewStore(dbfix.DB)
	return serve(t, &fixture{Store: store, Collector: collector, Logger: dbfix.Logger}, Options{
		Store:    store,
		Profiler: collector,
	})
}

func serve(t testing.TB, fix *fixture, opts Options) *fixture {
	t.Helper()

	api := New(context.Background(), opts)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	fix.url = srv.URL
	return fix
}

func (f *fixture) Get(t testing.TB, path string, v interface{}) (statusCode int) {
	t.Helper()
	return f.Do(t, http.MethodGet, path, nil, v).StatusCode
}

func (f *fixture) Post(t testing.TB, path string, body, v interface{}) (statusCode int) {
	t.Helper()
	return f.Do(t, http.MethodPost, path, body, v).StatusCode
}

// Do makes a request, decoding the response body into v if v is not nil.
func (f *fixture) Do(t testing.TB, method, path string, body, v interface{}) *http.Response {
	t.Helper()

	var b bytes.Buffer
	if body != nil {
		assert.Assert(t, json.NewEncoder(&b).Encode(body))
	}

	req, err := http.NewRequest(method, f.url+path, &b)
	assert.Assert(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	assert.Assert(t, err)

	defer func() {
		assert.Check(t, resp.Body.Close())
	}()

	if v != nil {
		err = json.NewDecoder(resp.Body).Decode(v)
		assert.Assert(t, err)
	}

	return resp
}
