package ologyapi

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	requestTimeout = 2 * time.Minute

	// maxRetries counts attempts, the first one included.
	maxRetries    = 3
	retryDelay    = 2 * time.Second
	maxRetryDelay = 15 * time.Second
)

// baseTransportConfig returns the shared HTTP transport configuration used by API clients.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: requestTimeout,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   8,
	}
}

// retryable retries transport errors, 429 and 5xx. Other 4xx fail at once.
func retryable(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// newRestyClient creates a resty client configured for analytics API requests.
func newRestyClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTransport(baseTransportConfig()).
		SetTimeout(requestTimeout).
		SetRetryCount(maxRetries-1).
		SetRetryWaitTime(retryDelay).
		SetRetryMaxWaitTime(maxRetryDelay).
		AddRetryCondition(retryable).
		SetHeader("Accept", "application/json")
}
