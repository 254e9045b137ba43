package play

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
	"github.com/gokatarajesh/synergy-debrief/internal/game"
	"github.com/gokatarajesh/synergy-debrief/internal/logging"
	"github.com/gokatarajesh/synergy-debrief/internal/metrics"
	httperrors "github.com/gokatarajesh/synergy-debrief/pkg/http/errors"
	ws "github.com/gokatarajesh/synergy-debrief/pkg/http/ws"
)

// Options configures every session the handler creates.
type Options struct {
	Game game.Options
	Conn ws.ConnectionOptions
}

// Handler upgrades play requests and routes client commands to a per-connection game.
type Handler struct {
	store    *content.Store
	hub      *ws.Hub
	metrics  *metrics.Metrics
	upgrader *websocket.Upgrader
	opts     Options
	logger   zerolog.Logger
}

// NewHandler creates a play handler. m may be nil.
func NewHandler(store *content.Store, hub *ws.Hub, m *metrics.Metrics, upgrader *websocket.Upgrader, opts Options, logger zerolog.Logger) *Handler {
	if upgrader == nil {
		upgrader = &websocket.Upgrader{}
	}
	return &Handler{
		store:    store,
		hub:      hub,
		metrics:  m,
		upgrader: upgrader,
		opts:     opts,
		logger:   logger.With().Str("component", "play").Logger(),
	}
}

// HandleWebSocket upgrades the HTTP connection and runs a session until the client leaves.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	h.HandleConnection(conn)
}

// session is the per-connection state the router needs.
type playSession struct {
	id     uuid.UUID
	conn   *ws.Connection
	game   *game.Game
	logger zerolog.Logger
}

// HandleConnection serves one client. It blocks until the connection closes.
func (h *Handler) HandleConnection(conn *websocket.Conn) {
	sessionID := uuid.New()
	logger := logging.ForSession(h.logger, sessionID.String())

	wsConn := ws.NewConnection(conn, h.opts.Conn, logger)
	h.hub.RegisterConnection(sessionID, wsConn)
	if h.metrics != nil {
		h.metrics.ActiveSessions.Inc()
		defer h.metrics.ActiveSessions.Dec()
	}

	var notifier game.Notifier = &connNotifier{sessionID: sessionID.String(), conn: wsConn, logger: logger}
	if h.metrics != nil {
		notifier = h.metrics.Wrap(notifier)
	}
	s := &playSession{
		id:     sessionID,
		conn:   wsConn,
		game:   game.New(h.store, notifier, h.opts.Game, logger),
		logger: logger,
	}

	go wsConn.WritePump()

	h.send(s, ws.TypeSessionStarted, ws.SessionStartedPayload{
		SessionID:    sessionID.String(),
		RoundSeconds: s.game.Snapshot().Timer.RemainingSeconds,
		TraitsTotal:  h.store.TraitCount(),
	}, "")
	logger.Info().Uint64("seed", s.game.Seed()).Msg("play session started")

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(s, msg)
	})

	s.game.Close()
	h.hub.UnregisterConnection(sessionID)
	logger.Info().Msg("play session ended")
}

// handleMessage routes incoming WebSocket messages.
func (h *Handler) handleMessage(s *playSession, msg ws.Message) error {
	var err error
	switch msg.Type {
	case ws.TypeBegin:
		err = s.game.Begin()
	case ws.TypeStartRoundOne:
		err = s.game.StartRoundOne()
	case ws.TypeSelectQuestion:
		var req ws.SelectQuestionPayload
		if decodeErr := decode(msg.Payload, &req); decodeErr != nil || req.QuestionID == "" {
			return h.sendError(s, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid select_question payload")
		}
		_, err = s.game.SelectQuestion(req.QuestionID)
	case ws.TypeSelectFollowUp:
		var req ws.SelectFollowUpPayload
		if decodeErr := decode(msg.Payload, &req); decodeErr != nil || req.FollowUpID == "" {
			return h.sendError(s, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid select_follow_up payload")
		}
		_, err = s.game.SelectFollowUp(req.FollowUpID)
	case ws.TypeChangeTopic:
		err = s.game.ChangeTopic()
	case ws.TypeSelectDebriefAnswer:
		var req ws.SelectDebriefAnswerPayload
		if decodeErr := decode(msg.Payload, &req); decodeErr != nil || req.QuestionID == "" || req.AnswerIndex == nil {
			return h.sendError(s, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid select_debrief_answer payload")
		}
		_, err = s.game.SelectDebriefAnswer(req.QuestionID, *req.AnswerIndex)
	case ws.TypeFinish:
		_, err = s.game.Finish()
	case ws.TypeRestart:
		err = s.game.Restart()
	case ws.TypeRequestState:
		return h.sendState(s, msg.RequestID, game.Event{Type: game.EventStateChanged, Snapshot: s.game.Snapshot()})
	case ws.TypePing:
		return h.send(s, ws.TypePong, nil, msg.RequestID)
	default:
		return h.sendError(s, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}

	if err != nil {
		s.logger.Debug().Err(err).Str("type", msg.Type).Msg("command rejected")
		return h.sendError(s, msg.RequestID, errorCode(err), err.Error())
	}
	return nil
}

func decode(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(payload, v)
}

// errorCode maps game errors onto protocol codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		return httperrors.ErrCodeWrongPhase
	case errors.Is(err, game.ErrUnknownQuestion):
		return httperrors.ErrCodeUnknownQuestion
	case errors.Is(err, game.ErrUnknownFollowUp):
		return httperrors.ErrCodeUnknownFollowUp
	case errors.Is(err, game.ErrTopicOpen):
		return httperrors.ErrCodeTopicOpen
	case errors.Is(err, game.ErrNoTopicOpen):
		return httperrors.ErrCodeNoTopicOpen
	case errors.Is(err, game.ErrUnknownDebrief):
		return httperrors.ErrCodeUnknownDebrief
	case errors.Is(err, game.ErrAnswerOutOfRange):
		return httperrors.ErrCodeAnswerOutOfRange
	case errors.Is(err, game.ErrDebriefIncomplete):
		return httperrors.ErrCodeDebriefIncomplete
	case errors.Is(err, game.ErrClosed):
		return httperrors.ErrCodeSessionClosed
	default:
		return httperrors.ErrCodeCommandFailed
	}
}

func (h *Handler) send(s *playSession, msgType string, payload interface{}, requestID string) error {
	msg, err := ws.NewMessage(msgType, payload, requestID)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msgType, err)
	}
	return s.conn.Send(msg)
}

func (h *Handler) sendError(s *playSession, requestID, code, message string) error {
	return h.send(s, ws.TypeError, ws.ErrorPayload{Code: code, Message: message}, requestID)
}

func (h *Handler) sendState(s *playSession, requestID string, e game.Event) error {
	return h.send(s, ws.TypeState, statePayload(s.id.String(), e), requestID)
}

func statePayload(sessionID string, e game.Event) ws.StatePayload {
	p := ws.StatePayload{SessionID: sessionID, Event: string(e.Type), Snapshot: e.Snapshot}
	switch {
	case e.TraitID != "":
		p.Detail = map[string]string{"trait_id": e.TraitID}
	case e.Grade != nil:
		p.Detail = map[string]interface{}{"question_id": e.QuestionID, "grade": e.Grade}
	}
	return p
}

// connNotifier pushes game events onto the connection's send queue. It never blocks the game.
type connNotifier struct {
	sessionID string
	conn      *ws.Connection
	logger    zerolog.Logger
}

func (n *connNotifier) Notify(e game.Event) {
	msg, err := ws.NewMessage(ws.TypeState, statePayload(n.sessionID, e), "")
	if err != nil {
		n.logger.Error().Err(err).Str("event", string(e.Type)).Msg("encode state failed")
		return
	}
	if err := n.conn.Send(msg); err != nil && !errors.Is(err, ws.ErrConnectionClosed) {
		n.logger.Warn().Err(err).Str("event", string(e.Type)).Msg("state dropped")
	}
}
