package profiler

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/circleci/mongoprofiler/querylog"
)

type Profile struct {
	Token       string    `json:"token"`
	Method      string    `json:"method,omitempty"`
	Route       string    `json:"route,omitempty"`
	Status      int       `json:"status,omitempty"`
	CollectedAt time.Time `json:"collected_at"`

	Connections []string `json:"connections"`
	Queries     []Query  `json:"queries"`
	Count       int      `json:"count"`
	// Failed counts the queries that never completed.
	Failed          int     `json:"failed"`
	TotalDurationMS float64 `json:"total_duration_ms"`
}

type Query struct {
	Method     querylog.Method `json:"method"`
	Connection string          `json:"connection"`
	Database   string          `json:"database"`
	Collection string          `json:"collection"`
	Filter     json.RawMessage `json:"filter"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	State      querylog.State  `json:"state"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMS float64         `json:"duration_ms"`
}

// Summary is the short form of a profile, used when listing them.
type Summary struct {
	Token       string    `json:"token"`
	Method      string    `json:"method,omitempty"`
	Route       string    `json:"route,omitempty"`
	Status      int       `json:"status,omitempty"`
	CollectedAt time.Time `json:"collected_at"`
	Count       int       `json:"count"`
}

func (p *Profile) Summary() Summary {
	return Summary{
		Token:       p.Token,
		Method:      p.Method,
		Route:       p.Route,
		Status:      p.Status,
		CollectedAt: p.CollectedAt,
		Count:       p.Count,
	}
}

func newQuery(ev *querylog.Event) Query {
	q := Query{
		Method:     ev.Method,
		Connection: ev.Client,
		Database:   ev.Database,
		Collection: ev.Collection,
		Filter:     render(ev.Filter),
		State:      ev.State(),
		StartedAt:  ev.StartedAt(),
		DurationMS: milliseconds(ev.Duration()),
	}
	if ev.Payload != nil {
		q.Payload = render(ev.Payload)
	}
	return q
}

// render writes a document as relaxed extended JSON. Values that are not documents,
// such as an aggregation pipeline, are rendered as a JSON string instead.
func render(doc interface{}) json.RawMessage {
	b, err := bson.MarshalExtJSON(doc, false, false)
	if err == nil {
		return b
	}
	b, err = json.Marshal(fmt.Sprintf("%v", doc))
	if err != nil {
		return json.RawMessage(`null`)
	}
	return b
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(time.Millisecond)
}
