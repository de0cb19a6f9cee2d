package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTransport struct {
	published     []IMessage
	batch         [][]IMessage
	handlers      map[string][]IMessageHandler
	unsubscribed  []IMessageHandler
	shouldError   error
	orderRecorder *[]string
}

func newMockTransport() *mockTransport {
	return &mockTransport{handlers: make(map[string][]IMessageHandler)}
}

func (m *mockTransport) Publish(ctx context.Context, message IMessage) error {
	if m.orderRecorder != nil {
		*m.orderRecorder = append(*m.orderRecorder, "transport")
	}
	m.published = append(m.published, message)
	return m.shouldError
}

func (m *mockTransport) PublishAll(ctx context.Context, messages []IMessage) error {
	m.batch = append(m.batch, messages)
	return m.shouldError
}

func (m *mockTransport) Subscribe(messageType string, handler IMessageHandler) error {
	m.handlers[messageType] = append(m.handlers[messageType], handler)
	return nil
}

func (m *mockTransport) Unsubscribe(messageType string, handler IMessageHandler) error {
	m.unsubscribed = append(m.unsubscribed, handler)
	return nil
}

func (m *mockTransport) Start(ctx context.Context) error { return nil }
func (m *mockTransport) Close() error                    { return nil }
func (m *mockTransport) Stats() TransportStats           { return TransportStats{} }

type recordingMiddleware struct {
	name  string
	order *[]string
	err   error
}

func (mw recordingMiddleware) Handle(ctx context.Context, message IMessage, next HandlerFunc) error {
	*mw.order = append(*mw.order, mw.name)
	if mw.err != nil {
		return mw.err
	}
	return next(ctx, message)
}

func (mw recordingMiddleware) Name() string { return mw.name }

func TestMessageBus_PublishWithMiddleware(t *testing.T) {
	order := make([]string, 0, 3)
	transport := newMockTransport()
	transport.orderRecorder = &order

	bus := NewMessageBus(transport)
	bus.Use(recordingMiddleware{name: "mw1", order: &order})
	bus.Use(recordingMiddleware{name: "mw2", order: &order})

	msg := NewMessage("test", nil)
	require.NoError(t, bus.Publish(context.Background(), msg))

	assert.Equal(t, []string{"mw1", "mw2", "transport"}, order)
	require.Len(t, transport.published, 1)
	assert.Same(t, msg, transport.published[0])
}

func TestMessageBus_PublishAllMiddlewareError(t *testing.T) {
	order := make([]string, 0, 1)
	transport := newMockTransport()

	mwErr := errors.New("middleware failed")
	bus := NewMessageBus(transport)
	bus.Use(recordingMiddleware{name: "mw-error", order: &order, err: mwErr})

	err := bus.PublishAll(context.Background(), []IMessage{NewMessage("test", nil)})
	require.Error(t, err)
	assert.ErrorIs(t, err, mwErr)
	assert.Empty(t, transport.batch)
	assert.Equal(t, []string{"mw-error"}, order)
}

func TestMessageBus_PublishAllSuccess(t *testing.T) {
	transport := newMockTransport()
	bus := NewMessageBus(transport)

	msg1 := NewMessage("t", 1)
	msg2 := NewMessage("t", 2)
	require.NoError(t, bus.PublishAll(context.Background(), []IMessage{msg1, msg2}))
	require.NoError(t, bus.PublishAll(context.Background(), nil))

	require.Len(t, transport.batch, 1)
	assert.Equal(t, []IMessage{msg1, msg2}, transport.batch[0])
}

func TestMessageBus_HandlerMiddlewareWrapping(t *testing.T) {
	transport := newMockTransport()
	bus := NewMessageBus(transport)

	var order []string
	tag := func(name string) HandlerMiddleware {
		return func(next IMessageHandler) IMessageHandler {
			return NewHandler(next.Type(), func(ctx context.Context, m IMessage) error {
				order = append(order, name)
				return next.Handle(ctx, m)
			})
		}
	}
	bus.UseHandler(tag("outer"))
	bus.UseHandler(tag("inner"))

	handler := NewHandler("h", func(ctx context.Context, m IMessage) error {
		order = append(order, "handler")
		return nil
	})
	require.NoError(t, bus.Subscribe(context.Background(), "test", handler))

	require.Len(t, transport.handlers["test"], 1)
	require.NoError(t, transport.handlers["test"][0].Handle(context.Background(), NewMessage("test", nil)))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)

	require.NoError(t, bus.Unsubscribe(context.Background(), "test", handler))
	require.Len(t, transport.unsubscribed, 1)
	assert.Same(t, transport.handlers["test"][0], transport.unsubscribed[0])
}

type taskPayload struct {
	Email string   `json:"email"`
	Keys  []string `json:"keys"`
}

func TestDecodePayload(t *testing.T) {
	direct := NewMessage("task", taskPayload{Email: "a@b.c", Keys: []string{"k1"}})
	var got taskPayload
	require.NoError(t, DecodePayload(direct, &got))
	assert.Equal(t, "a@b.c", got.Email)

	data, err := Marshal(direct)
	require.NoError(t, err)
	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.IsType(t, map[string]any{}, decoded.GetPayload())

	var again taskPayload
	require.NoError(t, DecodePayload(decoded, &again))
	assert.Equal(t, got, again)

	bad := &Message{Type: "task", Payload: "not an object"}
	assert.Error(t, DecodePayload(bad, &got))
}

func TestCodec_RoundTrip(t *testing.T) {
	ts := time.Unix(0, 1700000000000000000)
	msg := &Message{ID: "m-1", Type: "send_confirmation_email", Timestamp: ts, Payload: map[string]any{"n": 1}}
	msg.SetMetadata("request_id", "r-1")

	data, err := Marshal(msg)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "m-1", decoded.ID)
	assert.Equal(t, ts.UnixNano(), decoded.Timestamp.UnixNano())
	assert.Equal(t, float64(1), decoded.Payload.(map[string]any)["n"])
	assert.Equal(t, "r-1", decoded.Metadata["request_id"])

	_, err = Unmarshal([]byte("{"))
	assert.Error(t, err)
}

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	a := NewHandler("a", func(context.Context, IMessage) error { return nil })
	b := NewHandler("b", func(context.Context, IMessage) error { return nil })
	all := NewHandler("all", func(context.Context, IMessage) error { return nil })

	r.Add("x", a)
	r.Add("x", b)
	r.Add(Wildcard, all)

	assert.Equal(t, []IMessageHandler{a, b, all}, r.Lookup("x"))
	assert.Equal(t, []IMessageHandler{all}, r.Lookup("y"))
	assert.Equal(t, 3, r.Count())
	assert.Equal(t, []string{"*", "x"}, r.Types())

	snapshot := r.Lookup("x")
	require.NoError(t, r.Remove("x", a))
	assert.Len(t, snapshot, 3)
	assert.Equal(t, []IMessageHandler{b, all}, r.Lookup("x"))

	assert.Error(t, r.Remove("x", a))
	assert.Error(t, r.Remove("nope", a))
}
