package resilient_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	resilient "github.com/DaiyamondoSei/astral-venture-sub006"
)

var allKinds = []resilient.Kind{
	resilient.KindNetwork,
	resilient.KindAuth,
	resilient.KindServer,
	resilient.KindClient,
	resilient.KindTimeout,
	resilient.KindOffline,
	resilient.KindValidation,
	resilient.KindRateLimit,
	resilient.KindUnknown,
}

func TestUserMessageCoversEveryKind(t *testing.T) {
	t.Parallel()

	seen := make(map[string]resilient.Kind, len(allKinds))

	for _, kind := range allKinds {
		msg := resilient.UserMessage(kind)

		assert.NotEmpty(t, msg, "kind %s", kind)

		if prev, dup := seen[msg]; dup {
			t.Fatalf("kinds %s and %s share the message %q", prev, kind, msg)
		}

		seen[msg] = kind
	}
}

func TestUserMessagesAreNonTechnical(t *testing.T) {
	t.Parallel()

	for _, kind := range allKinds {
		msg := resilient.UserMessage(kind)

		lower := strings.ToLower(msg)
		for _, token := range []string{"http", "status", "nil", "error code", "stack"} {
			assert.NotContains(t, lower, token, "kind %s", kind)
		}
	}
}

func TestUserMessageUnmappedKindFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		resilient.UserMessage(resilient.KindUnknown),
		resilient.UserMessage(resilient.Kind(200)),
	)
}
