package core

import (
	"strings"
	"testing"

	"github.com/huangsam/wpperf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadValues(t *testing.T) {
	values, err := ReadValues(strings.NewReader("10\n\nnull\n 30 \nNULL\n20\n"))
	require.NoError(t, err)
	require.Len(t, values, 6)
	assert.Nil(t, values[1])
	assert.Nil(t, values[2])
	assert.Nil(t, values[4])
	assert.Equal(t, 30.0, *values[3])

	_, err = ReadValues(strings.NewReader("10\nabc\n"))
	assert.EqualError(t, err, `line 2: invalid number "abc"`)
}

func TestSummarizeValues(t *testing.T) {
	values := []*float64{schema.Float(10), nil, schema.Float(20), schema.Float(30), schema.Float(40), schema.Float(50)}
	summary, err := SummarizeValues(values)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Count)
	assert.Equal(t, 1, summary.Missing)
	assert.Equal(t, 30.0, summary.Median)
	require.Len(t, summary.Percentiles, len(schema.DefaultPercentiles))
	assert.Equal(t, 14.0, summary.Percentiles[0].Value)
	assert.Equal(t, 46.0, summary.Percentiles[4].Value)
	require.NotNil(t, summary.MAD)
	assert.Equal(t, 10.0, *summary.MAD)

	t.Run("single value has no spread", func(t *testing.T) {
		summary, err := SummarizeValues([]*float64{schema.Float(5)})
		require.NoError(t, err)
		assert.Nil(t, summary.StdDev)
		assert.Nil(t, summary.MAD)
	})

	t.Run("only holes", func(t *testing.T) {
		_, err := SummarizeValues([]*float64{nil, nil})
		assert.ErrorIs(t, err, ErrNoValues)
	})
}

func TestSummarizeMetric(t *testing.T) {
	m := schema.Metric{Name: "LCP - TTFB", Median: 15, Runs: []*float64{schema.Float(10), nil, schema.Float(20)}}
	s := summarizeMetric(m)
	assert.Equal(t, "ms", s.Unit)
	assert.Equal(t, 2, s.Samples)
	assert.Equal(t, 15.0, s.Median)
	assert.Len(t, s.Runs, 3)
	require.NotNil(t, s.StdDev)
	assert.InDelta(t, 7.071, *s.StdDev, 0.001)

	single := summarizeMetric(schema.Metric{Name: "CLS", Runs: []*float64{schema.Float(0.1)}})
	assert.Nil(t, single.StdDev)
	assert.Empty(t, single.Unit)
}
