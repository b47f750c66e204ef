package testcontext

import (
	"context"

	"github.com/circleci/mongoprofiler/config/o11y"
)

// ctx is a global singleton, initialised at package time since beeline is itself a global singleton
var ctx = newContext()

// Background returns a context for use in tests which contains a working o11y, so you get logs.
func Background() context.Context {
	return ctx
}

func newContext() context.Context {
	cx, _, err := o11y.Setup(context.Background(), o11y.Config{
		Service: "test-service",
		Version: "test",
		Format:  "text",
	})
	if err != nil {
		panic(err)
	}
	return cx
}
