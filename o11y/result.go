package o11y

import (
	"context"
	"errors"
)

// End records the outcome of err on the span and sends it. Passing a pointer lets it be
// deferred straight after StartSpan with a named error result:
//
//	defer o11y.End(span, &err)
func End(span Span, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	AddResultToSpan(span, e)
	span.End()
}

// AddResultToSpan sets the result field, plus error or warning when there is one.
// Warnings and cancellations are not treated as errors.
func AddResultToSpan(span Span, err error) {
	switch {
	case err == nil:
		span.AddRawField("result", "success")
	case IsWarning(err):
		span.AddRawField("result", "success")
		span.AddRawField("warning", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		span.AddRawField("result", "canceled")
		span.AddRawField("warning", err.Error())
	default:
		span.AddRawField("result", "error")
		span.AddRawField("error", err.Error())
	}
}

var errWarning = errors.New("warning")

type warning struct {
	msg string
}

func (w *warning) Error() string {
	return w.msg
}

func (w *warning) Is(target error) bool {
	return target == errWarning
}

// NewWarning returns an error for an expected condition, such as a missing document.
// It is traced as a warning rather than an error. Every call returns a distinct error.
func NewWarning(msg string) error {
	return &warning{msg: msg}
}

// IsWarning reports whether any error in the chain was made by NewWarning.
func IsWarning(err error) bool {
	return errors.Is(err, errWarning)
}
