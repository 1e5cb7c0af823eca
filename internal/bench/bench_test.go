package bench

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/wpperf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestRunner(number, concurrency int) *Runner {
	opts := Options{Number: number, Concurrency: concurrency, Protocol: schema.HTTP1, Timeout: 5 * time.Second}
	return NewRunner(opts)
}

func TestBenchmark(t *testing.T) {
	var agents sync.Map
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		agents.Store(r.UserAgent(), true)
		w.Header().Add("Server-Timing", "wp-before-template;dur=12.5")
		w.Header().Add("Server-Timing", "wp-template;dur=30")
		_, _ = w.Write([]byte("<html></html>"))
	})

	runner := newTestRunner(8, 3)
	defer runner.Close()

	res, err := runner.Benchmark(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, 8, res.Requests)
	assert.Equal(t, 8, res.Succeeded)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Runs, 8)

	for i, run := range res.Runs {
		assert.Equal(t, i+1, run.Index)
		assert.Equal(t, http.StatusOK, run.StatusCode)
		assert.Equal(t, "HTTP/1.1", run.Proto)
		assert.Greater(t, run.TTFB, 0.0)
		assert.GreaterOrEqual(t, run.ResponseTime, run.TTFB)
		assert.Contains(t, run.Headers, "server-timing: wp-before-template;dur=12.5")
		assert.Contains(t, run.Headers, "server-timing: wp-template;dur=30")
	}
	_, ok := agents.Load(DefaultUserAgent)
	assert.True(t, ok)
}

func TestBenchmarkExcludesFailures(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1)%2 == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	res, err := newTestRunner(6, 1).Benchmark(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], "unexpected status 503")

	var indexes []int
	for _, run := range res.Runs {
		indexes = append(indexes, run.Index)
	}
	assert.Equal(t, []int{1, 3, 5}, indexes)
}

func TestBenchmarkAllFailed(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	res, err := newTestRunner(maxRecordedErrors+5, 4).Benchmark(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrNoSuccessfulResponses)
	assert.Equal(t, maxRecordedErrors+5, res.Failed)
	assert.Len(t, res.Errors, maxRecordedErrors)
	assert.Empty(t, res.Runs)
}

func TestBenchmarkRejectsTargets(t *testing.T) {
	_, err := newTestRunner(1, 1).Benchmark(context.Background(), "ftp://example.test/")
	assert.Error(t, err)

	runner := NewRunner(Options{Number: 1, Protocol: schema.HTTP3})
	_, err = runner.Benchmark(context.Background(), "http://example.test/")
	assert.ErrorContains(t, err, "requires an https URL")
}

func TestBenchmarkCanceled(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(3, 1).Benchmark(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerDefaults(t *testing.T) {
	runner := NewRunnerWithClient(Options{}, http.DefaultClient)
	assert.Equal(t, 1, runner.opts.Number)
	assert.Equal(t, 1, runner.opts.Concurrency)
	assert.Equal(t, DefaultUserAgent, runner.opts.UserAgent)
}

func TestNewClient(t *testing.T) {
	h1, ok := NewClient(schema.HTTP1, time.Second, false).Transport.(*http.Transport)
	require.True(t, ok)
	assert.False(t, h1.ForceAttemptHTTP2)
	assert.Equal(t, []string{"http/1.1"}, h1.TLSClientConfig.NextProtos)

	h2, ok := NewClient(schema.HTTP2, time.Second, true).Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, h2.ForceAttemptHTTP2)
	assert.True(t, h2.TLSClientConfig.InsecureSkipVerify)

	h3 := NewClient(schema.HTTP3, time.Second, false)
	assert.Equal(t, time.Second, h3.Timeout)
	_, isH1 := h3.Transport.(*http.Transport)
	assert.False(t, isH1)
}

func TestHeaderLines(t *testing.T) {
	header := http.Header{}
	header.Add("X-Cache", "HIT")
	header.Add("Server-Timing", "a;dur=1")
	header.Add("Server-Timing", "b;dur=2")
	assert.Equal(t, []string{"server-timing: a;dur=1", "server-timing: b;dur=2", "x-cache: HIT"}, HeaderLines(header))
	assert.Empty(t, HeaderLines(http.Header{}))
}

func TestHostLabel(t *testing.T) {
	assert.Equal(t, "example.test/blog/", HostLabel("https://example.test/blog/"))
	assert.Equal(t, "not a url", HostLabel("not a url"))
}

// MockBenchmarker is a mock implementation of contract.Benchmarker.
type MockBenchmarker struct {
	mock.Mock
}

func (m *MockBenchmarker) Benchmark(ctx context.Context, url string) (schema.BenchmarkResult, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(schema.BenchmarkResult), args.Error(1)
}

func TestSurvey(t *testing.T) {
	ctx := context.Background()
	b := &MockBenchmarker{}
	b.On("Benchmark", ctx, "https://a.test/").Return(schema.BenchmarkResult{URL: "https://a.test/", Succeeded: 2}, nil)
	b.On("Benchmark", ctx, "https://b.test/").Return(schema.BenchmarkResult{}, errors.New("boom"))
	b.On("Benchmark", ctx, "https://c.test/").Return(schema.BenchmarkResult{URL: "https://c.test/", Succeeded: 1}, nil)

	results := Survey(ctx, b, []string{"https://a.test/", "https://b.test/", "https://c.test/"}, 2)
	require.Len(t, results, 3)
	assert.Equal(t, "https://a.test/", results[0].URL)
	assert.Equal(t, 2, results[0].Result.Succeeded)
	assert.EqualError(t, results[1].Err, "boom")
	assert.NoError(t, results[2].Err)
	b.AssertExpectations(t)
}

func TestReadURLs(t *testing.T) {
	input := "# targets\nhttps://a.test/\n\n  https://b.test/blog/  \n"
	urls, err := ReadURLs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/", "https://b.test/blog/"}, urls)

	_, err = ReadURLs(strings.NewReader("https://a.test/\nexample.test\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadURLFile("/nonexistent/urls.txt")
	assert.Error(t, err)
}
