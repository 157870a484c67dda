package net

import "NodeBoard/internal/state"

type MessageType string

const (
	MsgSnapshot MessageType = "snapshot"
	MsgOp       MessageType = "op"
)

// Message is one JSON frame on the share connection. The host sends a
// snapshot once on join; after that both sides exchange ops.
type Message struct {
	Type     MessageType     `json:"type"`
	Snapshot *state.Snapshot `json:"snapshot,omitempty"`
	Op       *state.Op       `json:"op,omitempty"`
}

func opMessage(op state.Op) Message {
	return Message{Type: MsgOp, Op: &op}
}
