package ws

// Message types from client.
const (
	MsgTypeInput = "input"
	MsgTypeKey   = "key"
	MsgTypePing  = "ping"
)

// Message types to client. State, navigate and search messages are
// autocomplete events.
const (
	MsgTypeError = "error"
	MsgTypePong  = "pong"
)

// Error codes
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeUnknownKey = "UNKNOWN_KEY"
)

// InboundMessage is any client message; only the fields of its Type are set.
type InboundMessage struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Key   string `json:"key,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}

type PongMessage struct {
	Type string `json:"type"`
}
