package errors

// Error codes for standardized error responses
const (
	// Game command errors
	ErrCodeWrongPhase        = "wrong_phase"
	ErrCodeUnknownQuestion   = "unknown_question"
	ErrCodeUnknownFollowUp   = "unknown_follow_up"
	ErrCodeTopicOpen         = "topic_open"
	ErrCodeNoTopicOpen       = "no_topic_open"
	ErrCodeUnknownDebrief    = "unknown_debrief_question"
	ErrCodeAnswerOutOfRange  = "answer_out_of_range"
	ErrCodeDebriefIncomplete = "debrief_incomplete"
	ErrCodeSessionClosed     = "session_closed"
	ErrCodeCommandFailed     = "command_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)
