package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsUnknownKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/translate"),
		attribute.String("source_text", "নমস্কাৰ"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorTruncates(t *testing.T) {
	assert.Nil(t, SafeError(nil))

	err := SafeError(errors.New(strings.Repeat("x", 1000) + "\n\ttail"))
	assert.Len(t, err.Error(), maxErrorLength)

	assert.Equal(t, "a b", SafeError(errors.New("a\n  b")).Error())
}
