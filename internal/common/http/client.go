// internal/common/http/client.go
package http

import (
	"net"
	"net/http"
	"time"

	"placement-tracker/internal/common/logger"
)

// Transport is the round tripper behind the Elasticsearch client. It bounds
// the wait for response headers and logs failed or slow requests.
type Transport struct {
	base          http.RoundTripper
	slowThreshold time.Duration
	logger        logger.Logger
}

// NewTransport builds a pooled transport. A zero timeout leaves response
// headers unbounded.
func NewTransport(timeout time.Duration, log logger.Logger) *Transport {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return WrapTransport(base, timeout/2, log)
}

// WrapTransport instruments an existing round tripper.
func WrapTransport(base http.RoundTripper, slowThreshold time.Duration, log logger.Logger) *Transport {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Transport{base: base, slowThreshold: slowThreshold, logger: log}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	res, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)

	fields := map[string]interface{}{
		"method":      req.Method,
		"path":        req.URL.Path,
		"duration_ms": elapsed.Milliseconds(),
	}
	switch {
	case err != nil:
		fields["error"] = err.Error()
		t.logger.Warn("HTTP request failed", fields)
	case res.StatusCode >= 500:
		fields["status"] = res.StatusCode
		t.logger.Warn("HTTP request returned server error", fields)
	case t.slowThreshold > 0 && elapsed > t.slowThreshold:
		fields["status"] = res.StatusCode
		t.logger.Warn("Slow HTTP request", fields)
	}
	return res, err
}
