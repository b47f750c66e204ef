package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/circleci/mongoprofiler/example/books"
	"github.com/circleci/mongoprofiler/httpserver/ginrouter"
	"github.com/circleci/mongoprofiler/profiler"
)

type API struct {
	router *gin.Engine
	store  *books.Store
}

type Options struct {
	Store *books.Store
	// Profiler is optional, when set every api request is profiled and the profiles are served.
	Profiler *profiler.Collector
}

func New(ctx context.Context, opts Options) *API {
	r := ginrouter.Default(ctx, "api")
	a := &API{
		router: r,
		store:  opts.Store,
	}

	api := r.Group("/api")
	if opts.Profiler != nil {
		api.Use(profiler.Middleware(opts.Profiler))
		profiler.Register(r, opts.Profiler)
	}

	api.GET("/hello", a.getHelloWorld)
	api.GET("/books", a.listBooks)
	api.POST("/books", a.postBook)
	api.GET("/books/:id", a.getBook)
	api.PUT("/books/:id", a.putBook)
	api.PATCH("/books/:id/price", a.patchPrice)
	api.DELETE("/books/:id", a.deleteBook)

	return a
}

func (a *API) Handler() http.Handler {
	return a.router
}
