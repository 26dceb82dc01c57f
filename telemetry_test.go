package resilient_test

import (
	"bytes"
	"log/slog"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resilient "github.com/DaiyamondoSei/astral-venture-sub006"
)

func terminalAuthError() *resilient.ClassifiedError {
	return resilient.Classify(&resilient.StatusError{StatusCode: 401}, &resilient.ErrorContext{
		Endpoint:      "/profile",
		Method:        "GET",
		Attempt:       1,
		CorrelationID: "corr-123",
	})
}

func TestNewFailureRecordFlattensClassification(t *testing.T) {
	t.Parallel()

	rec := resilient.NewFailureRecord(terminalAuthError())

	assert.Equal(t, resilient.KindAuth, rec.Kind)
	assert.Equal(t, 401, rec.StatusCode)
	assert.Equal(t, resilient.CategoryClientError, rec.StatusCategory)
	assert.Equal(t, resilient.StrategyAuthRefresh, rec.Strategy)
	assert.False(t, rec.Retryable)
	require.NotNil(t, rec.Context)
	assert.Equal(t, "/profile", rec.Context.Endpoint)
	assert.NotEmpty(t, rec.Message)
}

func TestFailureRecordEncodesAsStringTokens(t *testing.T) {
	t.Parallel()

	data, err := resilient.NewFailureRecord(terminalAuthError()).EncodeJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "auth", decoded["kind"])
	assert.Equal(t, "client_error", decoded["status_category"])
	assert.Equal(t, "auth_refresh", decoded["recovery_strategy"])
	assert.Equal(t, float64(401), decoded["status_code"])
}

func TestLogSinkWritesStructuredAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := resilient.LogSink{
		Logger: slog.New(slog.NewJSONHandler(&buf, nil)),
	}

	sink.Record(resilient.NewFailureRecord(terminalAuthError()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "auth", entry["kind"])
	assert.Equal(t, "auth_refresh", entry["recovery_strategy"])
	assert.Equal(t, float64(401), entry["status_code"])
	assert.Equal(t, "corr-123", entry["correlation_id"])
	assert.Equal(t, "ERROR", entry["level"])
}

func TestLogSinkZeroValueDoesNotPanic(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		resilient.LogSink{}.Record(resilient.NewFailureRecord(terminalAuthError()))
	})
}
