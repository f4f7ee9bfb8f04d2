// internal/protocol/chat.go

// Package protocol defines the binary envelope exchanged over room
// websockets and a hand-rolled protobuf codec for it. Every frame in
// either direction is a single Envelope carrying exactly one payload.
package protocol

// MessageType discriminates chat-channel frames. Values 20+ are the
// gobang extension range; decoders must tolerate values they do not know.
type MessageType int32

const (
	MsgSystem         MessageType = 0
	MsgUserText       MessageType = 1
	MsgMusic          MessageType = 2
	MsgRoomCount      MessageType = 3
	MsgDrawingState   MessageType = 4
	MsgDrawingRequest MessageType = 5
	MsgDrawingApprove MessageType = 6
	MsgDrawing        MessageType = 7
	MsgDrawingClear   MessageType = 8
	MsgDrawingStop    MessageType = 9

	MsgGobangState MessageType = 20
	MsgGobangMove  MessageType = 21
	MsgGobangJoin  MessageType = 22
	MsgGobangLeave MessageType = 23
)

// ChatMessage is the payload for chat, drawing and gobang rooms.
// Timestamp is Unix milliseconds.
type ChatMessage struct {
	User      string
	RoomID    int64
	Content   string
	Timestamp int64
	Type      MessageType
}

// Envelope is the top-level frame. Exactly one of Chat or Game is set;
// when a malformed peer sets both, Game wins during dispatch.
type Envelope struct {
	Chat *ChatMessage
	Game *GameMessage
}

// ChatFrame wraps a chat payload in an envelope and marshals it.
func ChatFrame(m *ChatMessage) []byte {
	return (&Envelope{Chat: m}).Marshal()
}

// GameFrame wraps a game payload in an envelope and marshals it.
func GameFrame(m *GameMessage) []byte {
	return (&Envelope{Game: m}).Marshal()
}
