// Package o11y sets up the o11y provider for a service from its configuration.
package o11y

import (
	"context"
	"fmt"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/rollbar/rollbar-go"

	"github.com/circleci/mongoprofiler/config/secret"
	"github.com/circleci/mongoprofiler/o11y"
	"github.com/circleci/mongoprofiler/o11y/honeycomb"
)

type Config struct {
	// Statsd is the agent address, metrics are discarded when it is empty.
	Statsd         string
	StatsNamespace string

	HoneycombEnabled bool
	HoneycombDataset string
	HoneycombKey     secret.String
	SampleTraces     bool
	SampleKeyFunc    func(map[string]interface{}) string
	SampleRates      map[string]int
	// Format of the stderr output, see honeycomb.Config.
	Format string

	// RollbarToken enables rollbar reporting of panics.
	RollbarToken      secret.String
	RollbarEnv        string
	RollbarServerRoot string

	Service string
	Version string

	// Optional
	Mode                    string
	Debug                   bool
	RollbarDisabled         bool
	StatsdTelemetryDisabled bool
}

// Setup builds the provider, returning a context carrying it and a func to flush and close it.
func Setup(ctx context.Context, o Config) (context.Context, func(context.Context), error) {
	hostname, _ := os.Hostname()

	hc := honeycomb.Config{
		Dataset:       o.HoneycombDataset,
		Key:           o.HoneycombKey.Raw(),
		Format:        o.Format,
		SendTraces:    o.HoneycombEnabled,
		SampleTraces:  o.SampleTraces,
		SampleKeyFunc: o.SampleKeyFunc,
		SampleRates:   o.SampleRates,
		ServiceName:   o.Service,
		Debug:         o.Debug,
	}
	if err := hc.Validate(); err != nil {
		return nil, nil, err
	}

	metrics, err := o.metrics(hostname)
	if err != nil {
		return nil, nil, err
	}
	hc.Metrics = metrics

	var provider o11y.Provider = honeycomb.New(hc)
	for k, v := range o.globalFields() {
		provider.AddGlobalField(k, v)
	}

	if o.RollbarToken != "" {
		provider = withRollbar(provider, o, hostname)
	}

	return o11y.WithProvider(ctx, provider), provider.Close, nil
}

func (o Config) globalFields() map[string]string {
	fields := map[string]string{
		"service": o.Service,
		"version": o.Version,
	}
	if o.Mode != "" {
		fields["mode"] = o.Mode
	}
	return fields
}

func (o Config) metrics(hostname string) (o11y.ClosableMetricsProvider, error) {
	if o.Statsd == "" {
		return &statsd.NoOpClient{}, nil
	}

	tags := []string{"hostname:" + hostname}
	for k, v := range o.globalFields() {
		tags = append(tags, k+":"+v)
	}
	opts := []statsd.Option{
		statsd.WithNamespace(o.StatsNamespace),
		statsd.WithTags(tags),
	}
	if o.StatsdTelemetryDisabled {
		opts = append(opts, statsd.WithoutTelemetry())
	}

	client, err := statsd.New(o.Statsd, opts...)
	if err != nil {
		return nil, fmt.Errorf("o11y: statsd: %w", err)
	}
	return client, nil
}

// rollbarProvider reports panics to rollbar as well as tracing them.
type rollbarProvider struct {
	o11y.Provider
	client *rollbar.Client
}

func withRollbar(p o11y.Provider, o Config, hostname string) rollbarProvider {
	client := rollbar.NewAsync(o.RollbarToken.Raw(), o.RollbarEnv, o.Version, hostname, o.RollbarServerRoot)
	client.SetEnabled(!o.RollbarDisabled)
	client.Message(rollbar.INFO, "Deployment")
	return rollbarProvider{Provider: p, client: client}
}

func (p rollbarProvider) Close(ctx context.Context) {
	p.Provider.Close(ctx)
	_ = p.client.Close()
}

func (p rollbarProvider) RollBarClient() *rollbar.Client {
	return p.client
}
