// Package honeycomb is the o11y provider backed by the honeycomb beeline. Spans are written
// locally (stderr by default) and can also be sent to honeycomb; metrics recorded on spans
// are emitted to the configured metrics provider when the span is sent.
package honeycomb

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/honeycombio/beeline-go"
	"github.com/honeycombio/beeline-go/client"
	"github.com/honeycombio/beeline-go/trace"
	dynsampler "github.com/honeycombio/dynsampler-go"
	"github.com/honeycombio/libhoney-go"
	"github.com/honeycombio/libhoney-go/transmission"

	"github.com/circleci/mongoprofiler/o11y"
)

type Config struct {
	Host    string
	Dataset string
	Key     string
	// Format of the local output: json (the default), text, color or none.
	Format string
	// SendTraces sends spans to honeycomb as well as writing them locally.
	SendTraces bool
	// Sender replaces the default honeycomb transmission.
	Sender transmission.Sender
	Writer io.Writer

	SampleTraces  bool
	SampleKeyFunc func(map[string]interface{}) string
	SampleRates   map[string]int

	Metrics     o11y.ClosableMetricsProvider
	ServiceName string
	Debug       bool
}

// Validate checks a key is present when it would be needed to send traces.
func (c *Config) Validate() error {
	if c.SendTraces && c.Sender == nil && c.Key == "" {
		return errors.New("honeycomb_key key required for honeycomb")
	}
	return nil
}

func (c *Config) sender() transmission.Sender {
	w := c.Writer
	if w == nil {
		w = os.Stderr
	}

	s := &MultiSender{}
	switch {
	case !c.SendTraces:
	case c.Sender != nil:
		s.Senders = append(s.Senders, c.Sender)
	default:
		s.Senders = append(s.Senders, &transmission.Honeycomb{
			MaxBatchSize:         libhoney.DefaultMaxBatchSize,
			BatchTimeout:         libhoney.DefaultBatchTimeout,
			MaxConcurrentBatches: libhoney.DefaultMaxConcurrentBatches,
			PendingWorkCapacity:  libhoney.DefaultPendingWorkCapacity,
			UserAgentAddition:    c.ServiceName,
		})
	}

	switch c.Format {
	case "none":
	case "text":
		s.Senders = append(s.Senders, &TextSender{w: w})
	case "color", "colour":
		s.Senders = append(s.Senders, &TextSender{w: w, colour: true})
	default:
		s.Senders = append(s.Senders, &transmission.WriterSender{W: w})
	}
	return s
}

type honeycomb struct {
	metrics o11y.ClosableMetricsProvider
}

// New initialises the beeline and returns a provider using it.
func New(conf Config) o11y.Provider {
	// beeline's own default constructor ignores this error too
	hc, _ := libhoney.NewClient(libhoney.ClientConfig{
		APIKey:       conf.Key,
		Dataset:      conf.Dataset,
		APIHost:      conf.Host,
		Transmission: conf.sender(),
	})

	emitter := spanMetrics{provider: conf.Metrics}
	bc := beeline.Config{
		Client:      hc,
		Debug:       conf.Debug,
		WriteKey:    conf.Key,
		ServiceName: conf.ServiceName,
		PresendHook: emitter.hook,
	}

	if conf.SampleTraces {
		sampler := newTraceSampler(conf)
		// A span dropped by the sampler never reaches the presend hook, so metrics are
		// emitted before sampling instead.
		bc.PresendHook = nil
		bc.SamplerHook = func(fields map[string]interface{}) (bool, int) {
			emitter.hook(fields)
			return sampler.Hook(fields)
		}
	}

	beeline.Init(bc)
	return &honeycomb{metrics: conf.Metrics}
}

func newTraceSampler(conf Config) *TraceSampler {
	rates := conf.SampleRates
	if rates == nil {
		rates = map[string]int{}
	}
	key := conf.SampleKeyFunc
	if key == nil {
		key = DefaultSampleKey
	}
	return &TraceSampler{
		KeyFunc: key,
		Sampler: &dynsampler.Static{Default: 1, Rates: rates},
	}
}

func (h *honeycomb) AddGlobalField(key string, val interface{}) {
	mustValidateKey(key)
	client.AddField(key, val)
}

func (h *honeycomb) StartSpan(ctx context.Context, name string) (context.Context, o11y.Span) {
	var s *trace.Span
	if parent := trace.GetSpanFromContext(ctx); parent != nil {
		ctx, s = parent.CreateAsyncChild(ctx)
	} else {
		// a new trace's root span is used directly as the span
		ctx, _ = trace.NewTrace(ctx, nil)
		s = trace.GetSpanFromContext(ctx)
	}
	s.AddField("name", name)
	return ctx, WrapSpan(s)
}

func (h *honeycomb) GetSpan(ctx context.Context) o11y.Span {
	return WrapSpan(trace.GetSpanFromContext(ctx))
}

func (h *honeycomb) AddField(ctx context.Context, key string, val interface{}) {
	mustValidateKey(key)
	beeline.AddField(ctx, key, val)
}

func (h *honeycomb) AddFieldToTrace(ctx context.Context, key string, val interface{}) {
	mustValidateKey(key)
	beeline.AddFieldToTrace(ctx, key, val)
}

func (h *honeycomb) Log(ctx context.Context, name string, fields ...o11y.Pair) {
	_, s := beeline.StartSpan(ctx, name)
	span := WrapSpan(s)
	for _, f := range fields {
		span.AddField(f.Key, f.Value)
	}
	span.End()
}

func (h *honeycomb) Close(context.Context) {
	beeline.Close()
	if h.metrics != nil {
		_ = h.metrics.Close()
	}
}

func (h *honeycomb) MetricsProvider() o11y.MetricsProvider {
	return h.metrics
}
