package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detached builds a connection without a socket; Send and Close never touch it.
func detached(queue int) *Connection {
	return NewConnection(nil, ConnectionOptions{SendQueue: queue}, zerolog.Nop())
}

func TestConnectionSendQueue(t *testing.T) {
	c := detached(1)
	msg, err := NewMessage(TypePong, nil, "")
	require.NoError(t, err)

	require.NoError(t, c.Send(msg))
	assert.ErrorIs(t, c.Send(msg), ErrSendQueueFull)

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.Send(msg), ErrConnectionClosed)
}

func TestHubRegistry(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	a, b := uuid.New(), uuid.New()
	connA, connB := detached(4), detached(4)

	hub.RegisterConnection(a, connA)
	hub.RegisterConnection(b, connB)
	assert.Equal(t, 2, hub.Count())

	msg, err := NewMessage(TypeState, StatePayload{SessionID: a.String(), Event: "state_changed"}, "")
	require.NoError(t, err)

	hub.UnregisterConnection(a)
	assert.Equal(t, 1, hub.Count())
	assert.ErrorIs(t, connA.Send(msg), ErrConnectionClosed)

	require.NoError(t, hub.BroadcastAll(msg))
	hub.CloseAll()
	assert.Zero(t, hub.Count())
	assert.ErrorIs(t, connB.Send(msg), ErrConnectionClosed)
}

func TestShutdownNotifiesThenCloses(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	open, full := detached(4), detached(1)
	hub.RegisterConnection(uuid.New(), open)
	hub.RegisterConnection(uuid.New(), full)

	pong, err := NewMessage(TypePong, nil, "")
	require.NoError(t, err)
	require.NoError(t, full.Send(pong))

	hub.Shutdown("maintenance")
	assert.Zero(t, hub.Count())

	var got []Message
	for msg := range open.sendCh {
		got = append(got, msg)
	}
	require.Len(t, got, 1)
	assert.Equal(t, TypeServerShutdown, got[0].Type)
	assert.JSONEq(t, `{"reason":"maintenance"}`, string(got[0].Payload))

	// a saturated queue misses the notice but is still closed
	assert.ErrorIs(t, full.Send(pong), ErrConnectionClosed)
}

func TestRegisterReplacesExistingConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	id := uuid.New()
	old, replacement := detached(1), detached(1)

	hub.RegisterConnection(id, old)
	hub.RegisterConnection(id, replacement)

	msg, err := NewMessage(TypePong, nil, "")
	require.NoError(t, err)
	assert.ErrorIs(t, old.Send(msg), ErrConnectionClosed)
	assert.NoError(t, replacement.Send(msg))
	assert.Equal(t, 1, hub.Count())
}

func TestNewMessageOmitsEmptyPayload(t *testing.T) {
	msg, err := NewMessage(TypePing, nil, "r1")
	require.NoError(t, err)
	assert.Empty(t, msg.Payload)
	assert.Equal(t, "r1", msg.RequestID)

	msg, err = NewMessage(TypeError, ErrorPayload{Code: "wrong_phase", Message: "no"}, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"wrong_phase","message":"no"}`, string(msg.Payload))
}
