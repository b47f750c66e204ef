package honeycomb

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/honeycombio/libhoney-go/transmission"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

func TestTextSender(t *testing.T) {
	ts := time.Date(2022, 10, 3, 9, 14, 2, 137602525, time.UTC)

	//nolint: lll
	testcases := []struct {
		source   *transmission.Event
		expected string
	}{
		{
			source: &transmission.Event{
				Timestamp: ts,
				Data:      map[string]interface{}{"app.host": "localhost:27017", "app.username": "root", "result": "success", "duration_ms": 0.075231, "meta.beeline_version": "1.11.1", "meta.span_type": "leaf", "name": "cfg: connect to database", "service": "api", "trace.parent_id": "223ebb27", "trace.span_id": "29d98eb0", "trace.trace_id": "9e020857-1248-431f-b2dd-f1541bd1e113", "version": "dev"},
			},
			expected: "09:14:02 1e113 0.075ms cfg: connect to database app.host=localhost:27017 app.username=root result=success\n",
		},
		{
			source: &transmission.Event{
				Timestamp: ts,
				Data:      map[string]interface{}{"db.system": "mongo", "db.entity": "books", "db.query_name": "insertOne", "result": "error", "error": "connection refused", "duration_ms": 1.455143, "meta.span_type": "root", "name": "db: books.insertOne", "trace.trace_id": "9e020857-1248-431f-b2dd-f1541bd1e113"},
			},
			expected: "09:14:02 1e113 1.455ms db: books.insertOne db.entity=books db.query_name=insertOne db.system=mongo error=connection refused result=error\n",
		},
		{
			source: &transmission.Event{
				Timestamp: ts,
				Data:      map[string]interface{}{"duration_ms": 0.5, "name": "no trace"},
			},
			expected: "09:14:02 unkwn 0.500ms no trace\n",
		},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%v", i), func(t *testing.T) {
			buf := new(bytes.Buffer)
			h := &TextSender{
				w: buf,
			}

			h.Add(tc.source)
			assert.Check(t, cmp.Equal(buf.String(), tc.expected))
		})
	}
}

func TestTextSender_Colour(t *testing.T) {
	buf := new(bytes.Buffer)
	h := &TextSender{
		w:      buf,
		colour: true,
	}
	assert.Assert(t, h.Start())

	ev := &transmission.Event{
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"name": "db: books.find", "error": "boom", "trace.trace_id": "abcdef-12345"},
	}
	h.Add(ev)
	first := buf.String()
	assert.Check(t, cmp.Contains(first, "\033[1;37;41merror\033[0m=boom"))
	assert.Check(t, cmp.Contains(first, "12345\033[0m"))

	t.Run("colours are stable", func(t *testing.T) {
		buf.Reset()
		h.Add(ev)
		second := buf.String()
		assert.Check(t, cmp.Equal(strings.SplitN(first, " ", 2)[1], strings.SplitN(second, " ", 2)[1]))
	})
}
