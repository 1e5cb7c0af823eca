package bench

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/huangsam/wpperf/schema"
	"github.com/quic-go/quic-go/http3"
)

// NewClient returns an HTTP client pinned to one protocol.
// HTTP/1.1 is forced through ALPN, HTTP/2 is attempted on TLS connections,
// and HTTP/3 runs over QUIC.
func NewClient(protocol schema.Protocol, timeout time.Duration, insecure bool) *http.Client {
	switch protocol {
	case schema.HTTP3:
		return &http.Client{
			Transport: &http3.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
			},
			Timeout: timeout,
		}
	case schema.HTTP2:
		return &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: insecure,
					NextProtos:         []string{"h2", "http/1.1"},
				},
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		}
	default:
		return &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: insecure,
					NextProtos:         []string{"http/1.1"},
				},
				ForceAttemptHTTP2:   false,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		}
	}
}
