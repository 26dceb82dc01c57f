// Package httpx provides an HTTP transport adapter for the resilient
// request layer.
//
// Transport bridges net/http and the layer's transport contract: it turns a
// RequestSpec into an http.Request against a base URL, honours cooperative
// cancellation through the request context, and returns the status and a
// bounded body for classification.
package httpx
