package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricValues(t *testing.T) {
	m := Metric{Name: "TTFB", Runs: []*float64{nil, Float(1), nil, Float(3)}}
	assert.Equal(t, []float64{1, 3}, m.Values())
	assert.Empty(t, Metric{Name: "empty"}.Values())
}

func TestMetricJSONKeepsNullRuns(t *testing.T) {
	m := Metric{Name: "LCP", Median: 2, Runs: []*float64{Float(2), nil}}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"LCP","median":2,"runs":[2,null]}`, string(data))
}

func TestWPTViewUnmarshal(t *testing.T) {
	raw := `{
		"TTFB": 120,
		"chromeUserTiming.LargestContentfulPaint": 500.5,
		"browser_name": "Chrome",
		"requests": [{"url": "https://example.com/", "headers": {"response": ["HTTP/1.1 200 OK", "Server-Timing: wp-total;dur=12.5"]}}]
	}`

	var view WPTView
	require.NoError(t, json.Unmarshal([]byte(raw), &view))
	assert.Equal(t, 120.0, view.Fields["TTFB"])
	assert.Equal(t, 500.5, view.Fields["chromeUserTiming.LargestContentfulPaint"])
	assert.NotContains(t, view.Fields, "browser_name")
	require.Len(t, view.Requests, 1)
	assert.Equal(t, "https://example.com/", view.Requests[0].URL)
}

func TestWPTRunAccessors(t *testing.T) {
	t.Run("first view requests", func(t *testing.T) {
		run := WPTRun{
			Index: 1,
			FirstView: &WPTView{
				Fields:   map[string]float64{"TTFB": 100},
				Requests: []WPTRequest{{Headers: WPTHeaders{Response: []string{"a: b"}}}},
			},
		}
		v, ok := run.Timing("TTFB")
		assert.True(t, ok)
		assert.Equal(t, 100.0, v)
		_, ok = run.Timing("SpeedIndex")
		assert.False(t, ok)

		headers, err := run.ResponseHeaders()
		require.NoError(t, err)
		assert.Equal(t, []string{"a: b"}, headers)
	})

	t.Run("run level requests", func(t *testing.T) {
		run := WPTRun{
			Index:     2,
			FirstView: &WPTView{Fields: map[string]float64{}},
			Requests:  []WPTRequest{{Headers: WPTHeaders{Response: []string{"c: d"}}}},
		}
		headers, err := run.ResponseHeaders()
		require.NoError(t, err)
		assert.Equal(t, []string{"c: d"}, headers)
	})

	t.Run("missing view", func(t *testing.T) {
		run := WPTRun{Index: 3}
		_, ok := run.Timing("TTFB")
		assert.False(t, ok)
		_, err := run.ResponseHeaders()
		assert.ErrorContains(t, err, "run 3 has no recorded requests")
	})
}

func TestResponseRunTiming(t *testing.T) {
	run := ResponseRun{TTFB: 12, ResponseTime: 30}
	v, ok := run.Timing("TTFB")
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)
	v, ok = run.Timing("responseTime")
	assert.True(t, ok)
	assert.Equal(t, 30.0, v)
	_, ok = run.Timing("LCP")
	assert.False(t, ok)
}

func TestProtocolString(t *testing.T) {
	assert.Equal(t, "HTTP/1.1", HTTP1.String())
	assert.Equal(t, "HTTP/2", HTTP2.String())
	assert.Equal(t, "HTTP/3", HTTP3.String())
}
