package relay

// Client event types.
const (
	EvUserOnline = "user:online"
	EvJoin       = "conversation:join"
	EvTyping     = "user:typing"
	EvStopTyping = "user:stop-typing"
	EvJoinRoom   = "join_room"
	EvSendMsg    = "send_message"
)

// Server event types.
const (
	EvUserStatus = "user:status"
	EvReceiveMsg = "receive_message"
)

// Event is the wire envelope for every frame on a relay connection.
// Fields are sparse; which ones are required depends on Type.
type Event struct {
	Type           string `json:"type"`
	UserID         string `json:"userId,omitempty"`
	Status         string `json:"status,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	OrderID        string `json:"orderId,omitempty"`

	// send_message / receive_message fields
	ID        string `json:"id,omitempty"`
	Text      string `json:"text,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
