package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	resilient "github.com/DaiyamondoSei/astral-venture-sub006"
)

// maxBodyBytes bounds how much of a response body the adapter will read.
// Wellness dashboard payloads are small; anything larger is truncated rather
// than buffered without limit.
const maxBodyBytes = 1 << 20

// Transport adapts an [http.Client] to the resilient layer's transport
// contract.
//
// Pattern: Adapter — bridges net/http and the request layer by translating
// RequestSpec/Response to their net/http equivalents.
type Transport struct {
	hc   *http.Client
	base string
}

// compile-time guarantee that *Transport implements resilient.Transport
var _ resilient.Transport = (*Transport)(nil)

// NewTransport creates a Transport that resolves endpoints against baseURL.
// A nil hc falls back to [http.DefaultClient].
func NewTransport(baseURL string, hc *http.Client) *Transport {
	if hc == nil {
		hc = http.DefaultClient
	}

	return &Transport{
		hc:   hc,
		base: strings.TrimRight(baseURL, "/"),
	}
}

// Send performs the HTTP call described by spec. The response is returned
// for any status code; deciding whether a status constitutes a failure is
// the executor's business, not the transport's.
func (t *Transport) Send(ctx context.Context, spec resilient.RequestSpec) (*resilient.Response, error) {
	var body io.Reader
	if len(spec.Body) > 0 {
		body = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, t.base+spec.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("httpx: build request: %w", err)
	}

	for key, value := range spec.Header {
		req.Header.Set(key, value)
	}

	if len(spec.Body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.hc.Do(req)
	if err != nil {
		//nolint:wrapcheck // transport errors feed classification as-is
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("httpx: read body: %w", err)
	}

	header := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		header[key] = resp.Header.Get(key)
	}

	return &resilient.Response{
		StatusCode: resp.StatusCode,
		Header:     header,
		Body:       payload,
	}, nil
}

// NewClient creates a resilient client over an HTTP transport. It is the
// usual entry point for hosts talking to one backend.
func NewClient(name, baseURL string, hc *http.Client, opts ...resilient.Option) *resilient.Client {
	return resilient.NewClient(name, NewTransport(baseURL, hc), opts...)
}
