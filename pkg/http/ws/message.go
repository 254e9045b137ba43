package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeBegin               = "begin"
	TypeStartRoundOne       = "start_round_one"
	TypeSelectQuestion      = "select_question"
	TypeSelectFollowUp      = "select_follow_up"
	TypeChangeTopic         = "change_topic"
	TypeSelectDebriefAnswer = "select_debrief_answer"
	TypeFinish              = "finish"
	TypeRestart             = "restart"
	TypeRequestState        = "request_state"

	// Server -> Client
	TypeSessionStarted = "session_started"
	TypeState          = "state"
	TypeError          = "error"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeServerShutdown = "server_shutdown"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a message envelope. A nil payload leaves it empty.
func NewMessage(msgType string, payload interface{}, requestID string) (Message, error) {
	msg := Message{Type: msgType, RequestID: requestID}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// Client Messages (incoming)

type SelectQuestionPayload struct {
	QuestionID string `json:"question_id"`
}

type SelectFollowUpPayload struct {
	FollowUpID string `json:"follow_up_id"`
}

type SelectDebriefAnswerPayload struct {
	QuestionID  string `json:"question_id"`
	AnswerIndex *int   `json:"answer_index"`
}

// Server Messages (outgoing)

type SessionStartedPayload struct {
	SessionID    string `json:"session_id"`
	RoundSeconds int    `json:"round_seconds"`
	TraitsTotal  int    `json:"traits_total"`
}

// StatePayload carries one game event. Snapshot is the full renderer view after the event.
type StatePayload struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event"`
	Detail    interface{} `json:"detail,omitempty"`
	Snapshot  interface{} `json:"snapshot"`
}

type ShutdownPayload struct {
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
