package profiler

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/circleci/mongoprofiler/o11y"
	"github.com/circleci/mongoprofiler/querylog"
)

// DefaultSize is how many profiles are kept when no size is given.
const DefaultSize = 100

// Collector drains a query log into profiles, keeping the most recent ones.
//
// The log is shared by the whole process, so a profile also holds any queries a concurrent
// request made before it was collected.
type Collector struct {
	logger   *querylog.Logger
	profiles *lru.Cache
	now      func() time.Time
}

// NewCollector keeps up to size profiles, DefaultSize if size is not positive.
func NewCollector(logger *querylog.Logger, size int) (*Collector, error) {
	if size <= 0 {
		size = DefaultSize
	}
	profiles, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("profiler: failed to create profile store: %w", err)
	}
	return &Collector{
		logger:   logger,
		profiles: profiles,
		now:      time.Now,
	}, nil
}

// Request identifies the unit of work a profile is collected for.
type Request struct {
	Token  string
	Method string
	Route  string
	Status int
}

// Collect drains every pending event from the query log into a new profile, and stores it under the token.
func (c *Collector) Collect(ctx context.Context, req Request) *Profile {
	events := c.logger.Drain()

	p := &Profile{
		Token:       req.Token,
		Method:      req.Method,
		Route:       req.Route,
		Status:      req.Status,
		CollectedAt: c.now(),
		Connections: c.logger.Connections(),
		Queries:     make([]Query, 0, len(events)),
		Count:       len(events),
	}
	if p.Connections == nil {
		p.Connections = []string{}
	}

	var total time.Duration
	for _, ev := range events {
		if ev.State() != querylog.StateCompleted {
			p.Failed++
		}
		total += ev.Duration()
		p.Queries = append(p.Queries, newQuery(ev))
	}
	p.TotalDurationMS = milliseconds(total)

	o11y.AddField(ctx, "profiler.token", req.Token)
	o11y.AddField(ctx, "profiler.queries", p.Count)
	if p.Failed > 0 {
		o11y.AddField(ctx, "profiler.failed_queries", p.Failed)
	}

	if mp := o11y.FromContext(ctx).MetricsProvider(); mp != nil {
		_ = mp.Histogram("profiler.queries", float64(p.Count), []string{"route:" + p.Route}, 1)
	}

	c.profiles.Add(req.Token, p)
	return p
}

func (c *Collector) Profile(token string) (*Profile, bool) {
	v, ok := c.profiles.Get(token)
	if !ok {
		return nil, false
	}
	return v.(*Profile), true
}

// Summaries lists the stored profiles, most recent first.
func (c *Collector) Summaries() []Summary {
	keys := c.profiles.Keys()
	summaries := make([]Summary, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		// Peek so listing does not change the eviction order
		v, ok := c.profiles.Peek(keys[i])
		if !ok {
			continue
		}
		summaries = append(summaries, v.(*Profile).Summary())
	}
	return summaries
}
