package bench

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
	"golang.org/x/sync/errgroup"
)

// URLResult is the outcome of benchmarking one URL of a survey.
type URLResult struct {
	URL    string
	Result schema.BenchmarkResult
	Err    error
}

// Survey benchmarks every URL with at most workers URLs in flight. Results keep
// the order of urls, and one failing URL does not stop the others.
func Survey(ctx context.Context, b contract.Benchmarker, urls []string, workers int) []URLResult {
	results := make([]URLResult, len(urls))
	g := new(errgroup.Group)
	g.SetLimit(max(workers, 1))
	for i, target := range urls {
		g.Go(func() error {
			res, err := b.Benchmark(ctx, target)
			results[i] = URLResult{URL: target, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ReadURLFile reads one URL per line. Blank lines and lines starting with # are skipped.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open url file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadURLs(f)
}

// ReadURLs parses URLs from r with the rules of ReadURLFile.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := contract.ValidateTargetURL(text); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		urls = append(urls, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read urls: %w", err)
	}
	return urls, nil
}
