package querylog

import (
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Method names the collection operation a query was issued through.
type Method string

const (
	MethodFind             Method = "find"
	MethodFindOne          Method = "findOne"
	MethodFindOneAndUpdate Method = "findOneAndUpdate"
	MethodFindOneAndDelete Method = "findOneAndDelete"
	MethodDeleteOne        Method = "deleteOne"
	MethodDeleteMany       Method = "deleteMany"
	MethodReplaceOne       Method = "replaceOne"
	MethodInsertOne        Method = "insertOne"
)

// State is where an event is in its lifecycle.
type State string

const (
	StatePending   State = ""
	StateStarted   State = "started"
	StateCompleted State = "completed"
)

// Event describes a single data-access call. The query metadata is fixed once the event
// is built with NewEvent; the lifecycle (state and timestamps) is only moved on by a Logger.
type Event struct {
	Method     Method
	Client     string
	Database   string
	Collection string
	// Filter is never nil, a call without a filter is recorded as an empty document.
	Filter interface{}
	// Payload is the update, replacement or inserted document, if the method takes one.
	Payload interface{}

	mu         sync.Mutex
	state      State
	startedAt  time.Time
	finishedAt time.Time
}

// NewEvent builds an event for a call to method against the named collection.
// It panics if method or collection are empty since every caller is expected to know both.
func NewEvent(method Method, client, database, collection string, filter, payload interface{}) *Event {
	if method == "" {
		panic("querylog: event method must be set")
	}
	if collection == "" {
		panic(fmt.Sprintf("querylog: collection must be set for %s event", method))
	}
	if filter == nil {
		filter = bson.D{}
	}
	return &Event{
		Method:     method,
		Client:     client,
		Database:   database,
		Collection: collection,
		Filter:     filter,
		Payload:    payload,
	}
}

func (e *Event) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Event) StartedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startedAt
}

// FinishedAt is the zero time until the event has completed.
func (e *Event) FinishedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finishedAt
}

// Duration is how long the call took, or zero if it has not (or never will) complete.
func (e *Event) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finishedAt.IsZero() {
		return 0
	}
	return e.finishedAt.Sub(e.startedAt)
}

// Namespace is the fully qualified collection name, as the server reports it.
func (e *Event) Namespace() string {
	if e.Database == "" {
		return e.Collection
	}
	return e.Database + "." + e.Collection
}

func (e *Event) start(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateStarted
	if e.startedAt.IsZero() {
		e.startedAt = now
	}
}

func (e *Event) complete(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateCompleted
	e.finishedAt = now
}
