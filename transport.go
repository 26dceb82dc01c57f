package resilient

import "context"

// ---------------------------------------------------------------------------
// Transport contract
// ---------------------------------------------------------------------------.

// RequestSpec describes one outbound request in transport-agnostic terms.
// The layer only requires that the underlying transport reports status-like
// outcomes; whether the call travels over HTTP, RPC or anything else is the
// transport's business.
type RequestSpec struct {
	// Method is the operation verb, e.g. "GET" or "POST".
	Method string
	// Endpoint is the logical target, e.g. "/items/42".
	Endpoint string
	// Header carries transport metadata to attach to the request.
	Header map[string]string
	// Body is the raw request payload, nil for body-less requests.
	Body []byte
}

// Response is the transport-agnostic outcome of a completed call. A Response
// is returned even for non-success status codes; the [Executor] decides
// whether it constitutes a failure.
type Response struct {
	// StatusCode is the HTTP-like status reported by the backend.
	StatusCode int
	// Header carries response metadata.
	Header map[string]string
	// Body is the raw response payload.
	Body []byte
}

// Transport performs the actual network call. Implementations must honour
// ctx cancellation: when ctx is done, Send must abandon the in-flight call
// and return promptly.
//
// Pattern: Strategy — the executor is agnostic to the concrete transport as
// long as it reports status-like outcomes and supports cooperative
// cancellation.
type Transport interface {
	Send(ctx context.Context, spec RequestSpec) (*Response, error)
}

// TransportFunc adapts an ordinary function into a [Transport].
type TransportFunc func(ctx context.Context, spec RequestSpec) (*Response, error)

// Send calls the underlying function.
func (f TransportFunc) Send(ctx context.Context, spec RequestSpec) (*Response, error) {
	return f(ctx, spec)
}
