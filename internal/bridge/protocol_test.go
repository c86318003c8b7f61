package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	two := 2

	tests := []struct {
		name string
		raw  string
		want Message
		ok   bool
	}{
		{"ready", `{"type":"quiz-ready"}`, Message{Type: TypeReady}, true},
		{"choice", `{"type":"quiz-choice","choiceIndex":2,"isCorrect":true,"explanation":"yes"}`,
			Message{Type: TypeChoice, ChoiceIndex: &two, IsCorrect: true, Explanation: "yes"}, true},
		{"end without index", `{"type":"quiz-end","isCorrect":false,"explanation":""}`,
			Message{Type: TypeEnd}, true},
		{"missing explanation", `{"type":"quiz-end","isCorrect":true}`,
			Message{Type: TypeEnd, IsCorrect: true}, true},
		{"null explanation", `{"type":"quiz-end","isCorrect":true,"explanation":null}`,
			Message{Type: TypeEnd, IsCorrect: true}, true},
		{"non-numeric index ignored", `{"type":"quiz-choice","choiceIndex":"a","isCorrect":true}`,
			Message{Type: TypeChoice, IsCorrect: true}, true},
		{"missing isCorrect", `{"type":"quiz-choice","explanation":"x"}`, Message{}, false},
		{"string isCorrect", `{"type":"quiz-end","isCorrect":"true"}`, Message{}, false},
		{"null isCorrect", `{"type":"quiz-choice","isCorrect":null}`, Message{}, false},
		{"numeric explanation", `{"type":"quiz-end","isCorrect":true,"explanation":7}`, Message{}, false},
		{"unknown type", `{"type":"quiz-start","isCorrect":true}`, Message{}, false},
		{"missing type", `{"isCorrect":true}`, Message{}, false},
		{"array", `[1,2]`, Message{}, false},
		{"null", `null`, Message{}, false},
		{"garbage", `not json`, Message{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode([]byte(tt.raw))
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessageFeedback_CollapsesChoiceAndEnd(t *testing.T) {
	choice, _ := Decode([]byte(`{"type":"quiz-choice","choiceIndex":0,"isCorrect":true,"explanation":"e"}`))
	end, _ := Decode([]byte(`{"type":"quiz-end","isCorrect":true,"explanation":"e"}`))

	a, ok := choice.Feedback()
	require.True(t, ok)
	b, ok := end.Feedback()
	require.True(t, ok)
	assert.Equal(t, a, b)

	_, ok = Message{Type: TypeReady}.Feedback()
	assert.False(t, ok)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("<html>"), Fingerprint("<html>"))
	assert.NotEqual(t, Fingerprint("<html>"), Fingerprint("<html> "))
	assert.Len(t, Fingerprint(""), 24)
}
