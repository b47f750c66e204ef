package o11y

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rollbar/rollbar-go"
)

// RollbarProvider is implemented by providers that also report to rollbar.
type RollbarProvider interface {
	RollBarClient() *rollbar.Client
}

// HandlePanic records a recovered panic on the span and returns it as an error. If the
// provider reports to rollbar the panic is sent there too, with the request when there is one.
func HandlePanic(ctx context.Context, span Span, recovered interface{}, r *http.Request) error {
	err := fmt.Errorf("panic handled: %+v", recovered)

	span.AddRawField("panic", recovered)
	span.AddRawField("has_panicked", "true")
	span.AddRawField("stack", string(debug.Stack()))
	span.RecordMetric(Incr("panics", "name"))

	rp, ok := FromContext(ctx).(RollbarProvider)
	if !ok {
		return err
	}
	if r == nil {
		rp.RollBarClient().LogPanic(recovered, true)
	} else {
		rp.RollBarClient().RequestError(rollbar.CRIT, r, err)
	}
	return err
}
