package play

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gokatarajesh/synergy-debrief/internal/content/contenttest"
	"github.com/gokatarajesh/synergy-debrief/internal/game"
	"github.com/gokatarajesh/synergy-debrief/internal/metrics"
	"github.com/gokatarajesh/synergy-debrief/internal/session"
	httperrors "github.com/gokatarajesh/synergy-debrief/pkg/http/errors"
	ws "github.com/gokatarajesh/synergy-debrief/pkg/http/ws"
)

type stateMsg struct {
	SessionID string          `json:"session_id"`
	Event     string          `json:"event"`
	Detail    json.RawMessage `json:"detail"`
	Snapshot  game.Snapshot   `json:"snapshot"`
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func (c *client) send(msgType string, payload interface{}, requestID string) {
	c.t.Helper()
	msg, err := ws.NewMessage(msgType, payload, requestID)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *client) read() ws.Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

func (c *client) readState() stateMsg {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, ws.TypeState, msg.Type, "payload: %s", msg.Payload)
	var s stateMsg
	require.NoError(c.t, json.Unmarshal(msg.Payload, &s))
	return s
}

func (c *client) readError() (ws.ErrorPayload, string) {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, ws.TypeError, msg.Type, "payload: %s", msg.Payload)
	var e ws.ErrorPayload
	require.NoError(c.t, json.Unmarshal(msg.Payload, &e))
	return e, msg.RequestID
}

func setup(t *testing.T) (*client, *ws.Hub, *metrics.Metrics, *session.ManualClock, func()) {
	t.Helper()
	clock := &session.ManualClock{}
	hub := ws.NewHub(zerolog.Nop())
	m := metrics.New(prometheus.NewRegistry())
	h := NewHandler(contenttest.Store(), hub, m, nil, Options{
		Game: game.Options{Seed: 7, TickerFactory: clock.NewTicker},
	}, zerolog.Nop())

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return &client{t: t, conn: conn}, hub, m, clock, func() {
		_ = conn.Close()
		srv.Close()
	}
}

func TestPlaySessionOverWebSocket(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c, hub, m, clock, teardown := setup(t)
	defer teardown()

	started := c.read()
	require.Equal(t, ws.TypeSessionStarted, started.Type)
	var sp ws.SessionStartedPayload
	require.NoError(t, json.Unmarshal(started.Payload, &sp))
	assert.NotEmpty(t, sp.SessionID)
	assert.Equal(t, 2, sp.TraitsTotal)
	assert.Equal(t, 1200, sp.RoundSeconds)
	assert.Equal(t, 1, hub.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))

	c.send(ws.TypePing, nil, "p1")
	pong := c.read()
	assert.Equal(t, ws.TypePong, pong.Type)
	assert.Equal(t, "p1", pong.RequestID)

	c.send(ws.TypeSelectQuestion, ws.SelectQuestionPayload{QuestionID: "q-role"}, "r1")
	e, reqID := c.readError()
	assert.Equal(t, httperrors.ErrCodeWrongPhase, e.Code)
	assert.Equal(t, "r1", reqID)

	c.send(ws.TypeBegin, nil, "")
	s := c.readState()
	assert.Equal(t, string(game.EventStateChanged), s.Event)
	assert.Equal(t, game.PhaseBriefing, s.Snapshot.Phase)
	assert.Equal(t, sp.SessionID, s.SessionID)

	c.send(ws.TypeStartRoundOne, nil, "")
	s = c.readState()
	assert.Equal(t, string(game.EventRoundOneStarted), s.Event)
	assert.Equal(t, "20:00", s.Snapshot.Timer.Clock)

	c.send(ws.TypeSelectQuestion, ws.SelectQuestionPayload{QuestionID: "q-role"}, "")
	s = c.readState()
	assert.Equal(t, string(game.EventResponseShown), s.Event)
	require.NotNil(t, s.Snapshot.Response)
	assert.Equal(t, "I build bridges.", s.Snapshot.Response.Text)
	assert.Equal(t, 1140, s.Snapshot.Timer.RemainingSeconds)

	c.send(ws.TypeSelectQuestion, ws.SelectQuestionPayload{QuestionID: "q-role"}, "")
	s = c.readState()
	assert.Equal(t, string(game.EventStateChanged), s.Event, "exhausted pool answers with the current state")

	c.send(ws.TypeSelectQuestion, ws.SelectQuestionPayload{QuestionID: "q-nope"}, "")
	e, _ = c.readError()
	assert.Equal(t, httperrors.ErrCodeUnknownQuestion, e.Code)

	c.send(ws.TypeChangeTopic, nil, "")
	e, _ = c.readError()
	assert.Equal(t, httperrors.ErrCodeNoTopicOpen, e.Code)

	c.send(ws.TypeSelectDebriefAnswer, map[string]string{"question_id": "d-weekend"}, "")
	e, _ = c.readError()
	assert.Equal(t, httperrors.ErrCodeInvalidPayload, e.Code)

	c.send("dance", nil, "")
	e, _ = c.readError()
	assert.Equal(t, httperrors.ErrCodeUnknownMessageType, e.Code)

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	e, _ = c.readError()
	assert.Equal(t, httperrors.ErrCodeInvalidPayload, e.Code)

	require.True(t, clock.Last().Tick())
	s = c.readState()
	assert.Equal(t, string(game.EventTimerTick), s.Event)
	assert.Equal(t, 1139, s.Snapshot.Timer.RemainingSeconds)

	c.send(ws.TypeRequestState, nil, "s1")
	msg := c.read()
	assert.Equal(t, ws.TypeState, msg.Type)
	assert.Equal(t, "s1", msg.RequestID)

	c.send(ws.TypeRestart, nil, "")
	s = c.readState()
	assert.Equal(t, string(game.EventGameReset), s.Event)
	assert.Equal(t, game.PhaseLanding, s.Snapshot.Phase)

	require.NoError(t, c.conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return testutil.ToFloat64(m.ActiveSessions) == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, clock.Last().Stopped(), "closing the connection stops the round clock")
}

func TestConnectionsGetIndependentGames(t *testing.T) {
	a, _, _, _, teardownA := setup(t)
	defer teardownA()
	b, _, _, _, teardownB := setup(t)
	defer teardownB()

	a.read()
	b.read()

	a.send(ws.TypeBegin, nil, "")
	assert.Equal(t, game.PhaseBriefing, a.readState().Snapshot.Phase)

	b.send(ws.TypeStartRoundOne, nil, "")
	e, _ := b.readError()
	assert.Equal(t, httperrors.ErrCodeWrongPhase, e.Code, "b is still on its own landing screen")
}

func TestErrorCodeMapping(t *testing.T) {
	assert.Equal(t, httperrors.ErrCodeDebriefIncomplete, errorCode(game.ErrDebriefIncomplete))
	assert.Equal(t, httperrors.ErrCodeAnswerOutOfRange, errorCode(game.ErrAnswerOutOfRange))
	assert.Equal(t, httperrors.ErrCodeTopicOpen, errorCode(game.ErrTopicOpen))
	assert.Equal(t, httperrors.ErrCodeSessionClosed, errorCode(game.ErrClosed))
	assert.Equal(t, httperrors.ErrCodeCommandFailed, errorCode(assert.AnError))
}
