// Package bench measures repeated HTTP requests against WordPress pages.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
	"golang.org/x/sync/errgroup"
)

// maxRecordedErrors bounds the failure messages kept per benchmark.
const maxRecordedErrors = 10

// DefaultUserAgent identifies benchmark requests in access logs.
const DefaultUserAgent = "wpperf-benchmark"

// ErrNoSuccessfulResponses means every request of a benchmark failed.
var ErrNoSuccessfulResponses = errors.New("no successful responses")

// Options shape the load sent to one URL.
type Options struct {
	Number      int
	Concurrency int
	Protocol    schema.Protocol
	Timeout     time.Duration
	Insecure    bool
	UserAgent   string
}

// Runner sends Number GET requests per URL with at most Concurrency in flight.
type Runner struct {
	opts   Options
	client *http.Client
}

var _ contract.Benchmarker = &Runner{}

// NewRunner creates a runner with a client for the configured protocol.
func NewRunner(opts Options) *Runner {
	return NewRunnerWithClient(opts, NewClient(opts.Protocol, opts.Timeout, opts.Insecure))
}

// NewRunnerWithClient creates a runner that sends requests through client.
func NewRunnerWithClient(opts Options, client *http.Client) *Runner {
	if opts.Number <= 0 {
		opts.Number = 1
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Runner{opts: opts, client: client}
}

// Close releases idle connections held by the runner.
func (r *Runner) Close() {
	r.client.CloseIdleConnections()
}

type outcome struct {
	run schema.ResponseRun
	err error
}

// Benchmark measures every request to target. Failed requests are counted and left
// out of Runs; the remaining runs keep request order.
func (r *Runner) Benchmark(ctx context.Context, target string) (schema.BenchmarkResult, error) {
	result := schema.BenchmarkResult{
		SessionID:   uuid.NewString(),
		URL:         target,
		Protocol:    r.opts.Protocol,
		Requests:    r.opts.Number,
		Concurrency: r.opts.Concurrency,
	}
	if err := contract.ValidateTargetURL(target); err != nil {
		return result, err
	}
	if r.opts.Protocol == schema.HTTP3 && !strings.HasPrefix(target, "https://") {
		return result, fmt.Errorf("%s requires an https URL: %s", schema.HTTP3, target)
	}

	start := time.Now()
	outcomes := make([]outcome, r.opts.Number)
	g := new(errgroup.Group)
	g.SetLimit(r.opts.Concurrency)
	for i := range r.opts.Number {
		g.Go(func() error {
			run, err := r.measure(ctx, target)
			outcomes[i] = outcome{run: run, err: err}
			return nil
		})
	}
	_ = g.Wait()
	result.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	for i, o := range outcomes {
		if o.err != nil {
			result.Failed++
			if len(result.Errors) < maxRecordedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("request %d: %v", i+1, o.err))
			}
			continue
		}
		o.run.Index = i + 1
		result.Runs = append(result.Runs, o.run)
		result.Succeeded++
	}

	if result.Succeeded == 0 {
		return result, fmt.Errorf("%w from %s: %d requests failed", ErrNoSuccessfulResponses, target, result.Failed)
	}
	return result, nil
}

func (r *Runner) measure(ctx context.Context, target string) (schema.ResponseRun, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return schema.ResponseRun{}, err
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)

	var start time.Time
	var ttfb time.Duration
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			ttfb = time.Since(start)
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	start = time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return schema.ResponseRun{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	headersAt := time.Since(start)

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return schema.ResponseRun{}, fmt.Errorf("failed to read body: %w", err)
	}
	total := time.Since(start)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return schema.ResponseRun{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// The QUIC transport does not report trace events
	if ttfb == 0 {
		ttfb = headersAt
	}

	return schema.ResponseRun{
		StatusCode:   resp.StatusCode,
		Proto:        resp.Proto,
		TTFB:         milliseconds(ttfb),
		ResponseTime: milliseconds(total),
		Headers:      HeaderLines(resp.Header),
	}, nil
}

// HeaderLines flattens headers into lowercase "name: value" lines sorted by name.
func HeaderLines(header http.Header) []string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	slices.Sort(names)

	var lines []string
	for _, name := range names {
		for _, value := range header[name] {
			lines = append(lines, strings.ToLower(name)+": "+value)
		}
	}
	return lines
}

// HostLabel returns host and path of a URL for compact display.
func HostLabel(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}
	return u.Host + u.EscapedPath()
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
