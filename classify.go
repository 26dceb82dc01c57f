package resilient

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"syscall"

	json "github.com/goccy/go-json"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------.

// Kind is the closed taxonomy of classified failures. Every failure resolves
// to exactly one Kind; unrecognized failures resolve to KindUnknown rather
// than escaping classification.
type Kind uint8

const (
	// KindUnknown covers anything the classifier does not recognize.
	KindUnknown Kind = iota
	// KindNetwork covers transport-level exceptions where no response was
	// received (connection refused, reset, DNS failure).
	KindNetwork
	// KindAuth covers 401/403 responses.
	KindAuth
	// KindServer covers 5xx responses.
	KindServer
	// KindClient covers 4xx responses other than the auth, validation and
	// rate-limit codes.
	KindClient
	// KindTimeout covers cancellation caused by the configured attempt
	// timeout.
	KindTimeout
	// KindOffline covers calls made while the connectivity monitor reports
	// offline.
	KindOffline
	// KindValidation covers 422 responses and 400 responses carrying
	// structured field errors.
	KindValidation
	// KindRateLimit covers 429 responses.
	KindRateLimit
)

// String returns the kind as a stable lower-case token.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindTimeout:
		return "timeout"
	case KindOffline:
		return "offline"
	case KindValidation:
		return "validation"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its string token.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(k.String())), nil
}

// RecoveryStrategy is a declarative hint to callers and collaborators about
// what remediation applies to a classified failure. The layer only surfaces
// the strategy; it never performs the remediation itself.
type RecoveryStrategy uint8

const (
	// StrategyNone indicates no remediation is applicable.
	StrategyNone RecoveryStrategy = iota
	// StrategyRetry indicates the failure is plausibly transient.
	StrategyRetry
	// StrategyAuthRefresh indicates the caller should invoke its
	// authentication-refresh handler before trying again.
	StrategyAuthRefresh
	// StrategyOfflineQueue indicates the request could be queued for replay
	// once connectivity returns. The layer surfaces the hint only; no queue
	// is assumed to exist.
	StrategyOfflineQueue
	// StrategyFallbackData indicates cached or default data may be served
	// in place of a live response.
	StrategyFallbackData
	// StrategyManualResolution indicates the failure requires operator
	// intervention.
	StrategyManualResolution
)

// String returns the strategy as a stable lower-case token.
func (s RecoveryStrategy) String() string {
	switch s {
	case StrategyRetry:
		return "retry"
	case StrategyAuthRefresh:
		return "auth_refresh"
	case StrategyOfflineQueue:
		return "offline_queue"
	case StrategyFallbackData:
		return "fallback_data"
	case StrategyManualResolution:
		return "manual_resolution"
	default:
		return "none"
	}
}

// MarshalJSON encodes the strategy as its string token.
func (s RecoveryStrategy) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// StatusCategory buckets a status code by its hundreds range.
type StatusCategory uint8

const (
	// CategoryUnknown means the status code is absent or outside 100-599.
	CategoryUnknown StatusCategory = iota
	// CategoryInfo covers 1xx.
	CategoryInfo
	// CategorySuccess covers 2xx.
	CategorySuccess
	// CategoryRedirect covers 3xx.
	CategoryRedirect
	// CategoryClientError covers 4xx.
	CategoryClientError
	// CategoryServerError covers 5xx.
	CategoryServerError
)

// String returns the category as a stable lower-case token.
func (c StatusCategory) String() string {
	switch c {
	case CategoryInfo:
		return "info"
	case CategorySuccess:
		return "success"
	case CategoryRedirect:
		return "redirect"
	case CategoryClientError:
		return "client_error"
	case CategoryServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the category as its string token.
func (c StatusCategory) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// CategoryOf derives the [StatusCategory] for a status code. Codes outside
// 100-599 (including the zero value used for "no response") categorize as
// CategoryUnknown.
func CategoryOf(status int) StatusCategory {
	switch {
	case status >= 100 && status <= 199:
		return CategoryInfo
	case status >= 200 && status <= 299:
		return CategorySuccess
	case status >= 300 && status <= 399:
		return CategoryRedirect
	case status >= 400 && status <= 499:
		return CategoryClientError
	case status >= 500 && status <= 599:
		return CategoryServerError
	default:
		return CategoryUnknown
	}
}

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------.

// coreError is the concrete type backing all sentinel errors.
type coreError string

func (e coreError) Error() string { return string(e) }

// Sentinel errors produced by the request layer itself.
var (
	// ErrOffline marks a call attempted while the connectivity monitor
	// reported offline. It classifies as KindOffline.
	ErrOffline error = coreError("connectivity is offline")
)

// ---------------------------------------------------------------------------
// StatusError — a received non-success response
// ---------------------------------------------------------------------------.

// StatusError carries a received response with a non-success status into
// classification. The body snapshot is bounded by the executor; FieldErrors
// is populated when the body carried structured per-field validation errors.
type StatusError struct {
	StatusCode  int
	Body        []byte
	FieldErrors map[string]string
}

// Error returns a short description of the status failure.
func (e *StatusError) Error() string {
	return "status " + strconv.Itoa(e.StatusCode)
}

// ---------------------------------------------------------------------------
// ClassifiedError — the central value type
// ---------------------------------------------------------------------------.

// ClassifiedError is the structured, typed result of mapping a raw failure
// onto the fixed taxonomy. Instances are created exactly once per failed
// attempt by [Classify] and never mutated afterwards; Retryable and Strategy
// are always the deterministic product of Kind and StatusCode, never set per
// call site.
type ClassifiedError struct {
	// Kind is the taxonomy bucket the failure resolved to.
	Kind Kind
	// StatusCode is the received status, 0 when no response was received.
	StatusCode int
	// Strategy is the declarative remediation hint for this failure.
	Strategy RecoveryStrategy
	// Retryable reports whether the scheduler may retry this failure.
	Retryable bool
	// Context carries structured request metadata for diagnostics.
	Context *ErrorContext

	// cause is the original untyped failure. It is retained for diagnostics
	// only and never inspected by control flow after classification.
	cause error
}

// Error implements the error interface with a compact, developer-facing
// description. User-facing text comes from [UserMessage] instead.
func (e *ClassifiedError) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	if e.Context != nil && e.Context.Endpoint != "" {
		b.WriteString(": ")
		b.WriteString(e.Context.Method)
		b.WriteString(" ")
		b.WriteString(e.Context.Endpoint)
	}

	if e.StatusCode != 0 {
		b.WriteString(" (status ")
		b.WriteString(strconv.Itoa(e.StatusCode))
		b.WriteString(")")
	}

	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}

	return b.String()
}

// Unwrap exposes the original failure for errors.Is / errors.As chains.
func (e *ClassifiedError) Unwrap() error { return e.cause }

// StatusCategory derives the hundreds-range bucket of StatusCode.
// It returns CategoryUnknown when no response was received.
func (e *ClassifiedError) StatusCategory() StatusCategory {
	return CategoryOf(e.StatusCode)
}

// ---------------------------------------------------------------------------
// Classify — the pure mapping from raw failure to ClassifiedError
// ---------------------------------------------------------------------------.

// Classify maps a raw failure onto the taxonomy. It never fails and always
// returns a value; anything unrecognized resolves to KindUnknown. It is a
// pure transformation, safe to call concurrently from any number of in-flight
// requests.
//
// Status code ranges win over generic error inspection when both are
// available. An already-classified error is returned unchanged so that
// classification stays idempotent across layers.
func Classify(failure error, rctx *ErrorContext) *ClassifiedError {
	var ce *ClassifiedError
	if errors.As(failure, &ce) {
		return ce
	}

	out := &ClassifiedError{
		Kind:     KindUnknown,
		Strategy: StrategyNone,
		Context:  rctx,
		cause:    failure,
	}

	var se *StatusError

	switch {
	case failure == nil:
		// Nothing to inspect; stays Unknown.

	case errors.As(failure, &se):
		out.StatusCode = se.StatusCode
		out.Kind, out.Retryable, out.Strategy = classifyStatus(se)

	case errors.Is(failure, ErrOffline):
		out.Kind = KindOffline
		out.Retryable = true
		out.Strategy = StrategyOfflineQueue

	case errors.Is(failure, context.DeadlineExceeded):
		out.Kind = KindTimeout
		out.Retryable = true
		out.Strategy = StrategyRetry

	case isTransportError(failure):
		out.Kind = KindNetwork
		out.Retryable = true
		out.Strategy = StrategyRetry
	}

	return out
}

// classifyStatus is the status-code decision table. Retry eligibility is
// restricted to failures plausibly transient; semantic failures never retry.
func classifyStatus(se *StatusError) (Kind, bool, RecoveryStrategy) {
	code := se.StatusCode

	switch {
	case code == 401 || code == 403:
		return KindAuth, false, StrategyAuthRefresh

	case code == 429:
		return KindRateLimit, true, StrategyRetry

	case code == 422,
		code == 400 && len(se.FieldErrors) > 0:
		return KindValidation, false, StrategyNone

	case code == 501:
		// Not Implemented cannot heal on its own; retries are wasted.
		return KindServer, false, StrategyManualResolution

	case code >= 500 && code <= 599:
		return KindServer, true, StrategyRetry

	case code >= 400 && code <= 499:
		return KindClient, false, StrategyNone

	default:
		return KindUnknown, false, StrategyNone
	}
}

// isTransportError reports whether err looks like a transport-level exception
// where no response was received.
func isTransportError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}

	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}

	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

// fieldErrorBody is the wire convention for structured validation failures:
// an object of per-field messages under "errors".
type fieldErrorBody struct {
	Errors map[string]string `json:"errors"`
}

// extractFieldErrors decodes structured field errors from a response body
// snapshot. It returns nil when the body does not follow the convention;
// malformed bodies are never an error here.
func extractFieldErrors(body []byte) map[string]string {
	if len(body) == 0 {
		return nil
	}

	var decoded fieldErrorBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil
	}

	if len(decoded.Errors) == 0 {
		return nil
	}

	return decoded.Errors
}
