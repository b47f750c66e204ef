package honeycomb

import (
	"testing"

	dynsampler "github.com/honeycombio/dynsampler-go"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

func TestTraceSampler_Hook(t *testing.T) {
	sampler := &TraceSampler{
		KeyFunc: DefaultSampleKey,
		Sampler: &dynsampler.Static{
			Default: 1,
			Rates: map[string]int{
				"mongo sessions findOne success": 1000,
			},
		},
	}

	hotQuery := func(traceID string) map[string]interface{} {
		return map[string]interface{}{
			"trace.trace_id": traceID,
			"db.system":      "mongo",
			"db.entity":      "sessions",
			"db.query_name":  "findOne",
			"result":         "success",
		}
	}

	tests := []struct {
		name   string
		fields map[string]interface{}
		sample bool
		rate   int
	}{
		{
			name: "unsampled query is kept",
			fields: map[string]interface{}{
				"trace.trace_id": "ede23f67-2048-491b-ba71-749a8a00444f",
				"db.system":      "mongo",
				"db.entity":      "books",
				"db.query_name":  "insertOne",
				"result":         "success",
			},
			sample: true,
			rate:   1,
		},
		{
			name:   "hot query is dropped",
			fields: hotQuery("ede23f67-2048-491b-ba71-749a8a00444f"),
		},
		{
			name:   "hot query in a trace that hits the rate",
			fields: hotQuery("9d45eecd-e447-4418-bd9b-1ac3c32346d5"),
			sample: true,
			rate:   1000,
		},
		{
			name: "hot query kept by the span",
			fields: func() map[string]interface{} {
				f := hotQuery("ede23f67-2048-491b-ba71-749a8a00444f")
				f["meta.keep.span"] = true
				return f
			}(),
			sample: true,
			rate:   1,
		},
		{
			name: "failed hot query has its own key",
			fields: func() map[string]interface{} {
				f := hotQuery("ede23f67-2048-491b-ba71-749a8a00444f")
				f["result"] = "error"
				return f
			}(),
			sample: true,
			rate:   1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sample, rate := sampler.Hook(tt.fields)
			assert.Check(t, cmp.Equal(sample, tt.sample))
			assert.Check(t, cmp.Equal(rate, tt.rate))
		})
	}
}

func TestDefaultSampleKey(t *testing.T) {
	t.Run("database span", func(t *testing.T) {
		key := DefaultSampleKey(map[string]interface{}{
			"db.system":     "mongo",
			"db.entity":     "books",
			"db.query_name": "findOne",
			"result":        "success",
		})
		assert.Check(t, cmp.Equal(key, "mongo books findOne success"))
	})

	t.Run("http span", func(t *testing.T) {
		key := DefaultSampleKey(map[string]interface{}{
			"http.server_name": "admin",
			"http.route":       "/ready",
			"http.status_code": 200,
		})
		assert.Check(t, cmp.Equal(key, "admin /ready 200"))
	})
}
