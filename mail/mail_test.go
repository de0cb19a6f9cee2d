package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/logging"
)

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.NewStdLoggerTo(&buf, logging.InfoLevel))

	require.NoError(t, m.Send(context.Background(), Message{To: "a@example.com", Subject: "You created a new Conference!"}))
	assert.Contains(t, buf.String(), "mail sent")
	assert.Contains(t, buf.String(), "a@example.com")
}

func TestOutbox(t *testing.T) {
	var o Outbox
	require.NoError(t, o.Send(context.Background(), Message{To: "x"}))
	assert.Len(t, o.Sent(), 1)
}
