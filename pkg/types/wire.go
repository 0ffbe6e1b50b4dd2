package types

// MessageType defines the type of a frame on the control-surface feed.
type MessageType string

const (
	MessageSessionsInit   MessageType = "sessions_init"   // MessageSessionsInit carries the full registry on connect.
	MessageSessionUpdated MessageType = "session_updated" // MessageSessionUpdated carries one upserted session.
	MessageSessionRemoved MessageType = "session_removed" // MessageSessionRemoved announces a destroyed session.
	MessageControlCommand MessageType = "control_command" // MessageControlCommand carries a surface-issued command.
)

// Message is the envelope exchanged between the coordinator and control
// surfaces. Exactly one payload field is set, selected by Type.
type Message struct {
	// Type indicates the kind of frame.
	Type MessageType `json:"type"`

	// Sessions is the full registry (sessions_init).
	Sessions []Session `json:"sessions,omitempty"`

	// Session is a single upserted session (session_updated).
	Session *Session `json:"session,omitempty"`

	// SessionID identifies a removed session (session_removed).
	SessionID *SessionID `json:"sessionId,omitempty"`

	// Command is a surface-issued control request (control_command).
	Command *Command `json:"command,omitempty"`
}

// NewSessionsInitMessage creates the full-registry frame sent on connect.
func NewSessionsInitMessage(sessions []Session) Message {
	return Message{Type: MessageSessionsInit, Sessions: sessions}
}

// NewSessionUpdatedMessage creates an upsert frame for one session.
func NewSessionUpdatedMessage(session Session) Message {
	return Message{Type: MessageSessionUpdated, Session: &session}
}

// NewSessionRemovedMessage creates a removal frame.
func NewSessionRemovedMessage(id SessionID) Message {
	return Message{Type: MessageSessionRemoved, SessionID: &id}
}

// NewControlCommandMessage creates a command frame sent by a surface.
func NewControlCommandMessage(cmd Command) Message {
	return Message{Type: MessageControlCommand, Command: &cmd}
}
