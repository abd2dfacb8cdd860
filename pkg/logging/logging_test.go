package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, &buf)

	Debug("Test", "debug message")
	Info("Test", "info message")
	Warn("Test", "warn message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
}

func TestErrorIncludesErrorAttribute(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Error("Test", assertErr{"boom"}, "operation failed")

	out := buf.String()
	require.Contains(t, out, "operation failed")
	assert.Contains(t, out, "boom")
}

func TestTruncateSessionID(t *testing.T) {
	assert.Equal(t, "short", TruncateSessionID("short"))
	assert.Equal(t, "abcdefgh...", TruncateSessionID("abcdefghijklmnop"))
}

func TestAuditFormatsKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Audit(AuditEvent{
		Action:    "secret_resolve",
		Outcome:   "success",
		SessionID: "sess-1234567890",
		Target:    "gcp-secret-id",
	})

	out := buf.String()
	assert.True(t, strings.Contains(out, "action=secret_resolve"))
	assert.True(t, strings.Contains(out, "outcome=success"))
	assert.True(t, strings.Contains(out, "target=gcp-secret-id"))
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
