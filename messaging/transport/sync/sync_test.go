package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/messaging"
)

func counter(n *int, err error) messaging.IMessageHandler {
	return messaging.NewHandler("inc", func(ctx context.Context, m messaging.IMessage) error {
		*n++
		return err
	})
}

func TestSyncTransport_PublishFlow(t *testing.T) {
	tpt := NewSyncTransport()
	require.NoError(t, tpt.Start(context.Background()))
	defer tpt.Close()

	var c, all int
	require.NoError(t, tpt.Subscribe("T", counter(&c, nil)))
	require.NoError(t, tpt.Subscribe(messaging.Wildcard, counter(&all, nil)))

	require.NoError(t, tpt.Publish(context.Background(), messaging.NewMessage("T", nil)))
	require.NoError(t, tpt.Publish(context.Background(), messaging.NewMessage("other", nil)))

	assert.Equal(t, 1, c)
	assert.Equal(t, 2, all)

	stats := tpt.Stats()
	assert.True(t, stats.Running)
	assert.Equal(t, 2, stats.HandlerCount)
}

func TestSyncTransport_HandlerErrorsReturned(t *testing.T) {
	tpt := NewSyncTransport()
	require.NoError(t, tpt.Start(context.Background()))

	boom := errors.New("boom")
	var a, b int
	require.NoError(t, tpt.Subscribe("T", counter(&a, boom)))
	require.NoError(t, tpt.Subscribe("T", counter(&b, nil)))

	err := tpt.Publish(context.Background(), messaging.NewMessage("T", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, b, "later handlers still run")

	err = tpt.PublishAll(context.Background(), []messaging.IMessage{messaging.NewMessage("T", nil)})
	assert.ErrorIs(t, err, boom)
}

func TestSyncTransport_Lifecycle(t *testing.T) {
	tpt := NewSyncTransport()

	assert.Error(t, tpt.Publish(context.Background(), messaging.NewMessage("T", nil)))
	assert.Error(t, tpt.Close())

	require.NoError(t, tpt.Start(context.Background()))
	assert.Error(t, tpt.Start(context.Background()))
	require.NoError(t, tpt.Close())
	assert.False(t, tpt.Stats().Running)
}
