package bridge

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// MessageType tags a protocol message sent by a sandboxed document.
type MessageType string

const (
	TypeReady  MessageType = "quiz-ready"
	TypeChoice MessageType = "quiz-choice"
	TypeEnd    MessageType = "quiz-end"
)

// Message is a decoded sandbox -> host protocol message.
type Message struct {
	Type        MessageType
	ChoiceIndex *int
	IsCorrect   bool
	Explanation string
}

// Feedback is what the host surfaces after a choice or end event.
type Feedback struct {
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}

// Decode parses a raw message. It returns ok=false for anything that is not
// a well-formed protocol message: non-objects, unknown types, a missing or
// non-boolean isCorrect on choice/end, or a non-string explanation.
// A non-numeric choiceIndex is treated as absent.
func Decode(raw []byte) (Message, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Message{}, false
	}

	var typ string
	if err := json.Unmarshal(fields["type"], &typ); err != nil {
		return Message{}, false
	}

	msg := Message{Type: MessageType(typ)}
	switch msg.Type {
	case TypeReady:
		return msg, true
	case TypeChoice, TypeEnd:
	default:
		return Message{}, false
	}

	ok, present := fields["isCorrect"]
	if !present || string(ok) == "null" || json.Unmarshal(ok, &msg.IsCorrect) != nil {
		return Message{}, false
	}

	if exp, present := fields["explanation"]; present && string(exp) != "null" {
		if err := json.Unmarshal(exp, &msg.Explanation); err != nil {
			return Message{}, false
		}
	}

	if idx, present := fields["choiceIndex"]; present {
		var n int
		if json.Unmarshal(idx, &n) == nil {
			msg.ChoiceIndex = &n
		}
	}

	return msg, true
}

// Feedback returns the feedback carried by a choice or end message.
func (m Message) Feedback() (Feedback, bool) {
	if m.Type != TypeChoice && m.Type != TypeEnd {
		return Feedback{}, false
	}
	return Feedback{IsCorrect: m.IsCorrect, Explanation: m.Explanation}, true
}

// Fingerprint identifies a document by content.
func Fingerprint(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:12])
}
