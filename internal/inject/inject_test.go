package inject

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizarcade/internal/quiz"
	"github.com/abhisek/quizarcade/internal/templates"
)

func sampleQuestion() quiz.Question {
	return quiz.Question{
		Number: 1,
		Type:   quiz.TypeMCQ,
		Prompt: "Which planet is largest?",
		Choices: []quiz.Choice{
			{Text: "Mars"},
			{Text: "Jupiter", IsCorrect: true, Explanation: "Gas giant."},
		},
	}
}

func TestSerialize(t *testing.T) {
	rec := Serialize(sampleQuestion())
	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.ElementsMatch(t, []string{"type", "prompt", "choices"}, keys(m))

	choices := m["choices"].([]any)
	require.Len(t, choices, 2)
	first := choices[0].(map[string]any)
	assert.ElementsMatch(t, []string{"text", "is_correct", "explanation"}, keys(first))
	assert.Equal(t, "", first["explanation"], "missing explanation defaults to empty")
}

func TestSerialize_NoChoices(t *testing.T) {
	b, err := json.Marshal(Serialize(quiz.Question{Type: quiz.TypeMCQ}))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"choices":[]`)
}

func TestInject_NamedAssignment(t *testing.T) {
	doc := "<html><body><script>\nconst QUESTION = {\n  type: \"mcq\",\n  choices: []\n};\nrender(QUESTION);\n</script></body></html>"

	out := Inject(doc, sampleQuestion())

	assert.Equal(t, 1, strings.Count(out, "const QUESTION ="))
	assert.Contains(t, out, `"prompt": "Which planet is largest?"`)
	assert.NotContains(t, out, `type: "mcq"`)
	assert.Contains(t, out, "render(QUESTION);")
	assert.True(t, strings.HasSuffix(out, Shim+"\n</body></html>"))
}

func TestInject_OnlyFirstAssignmentReplaced(t *testing.T) {
	doc := "<body><script>const QUESTION = {a:1};\nconst QUESTION = {b:2};</script></body></html>"
	out := Inject(doc, sampleQuestion())
	assert.Contains(t, out, "const QUESTION = {b:2};")
	assert.NotContains(t, out, "{a:1}")
}

func TestInject_MarkerToken(t *testing.T) {
	doc := "<html><body><script>const Q = " + Marker + ";</script></body></html>"

	out := Inject(doc, sampleQuestion())

	assert.NotContains(t, out, Marker)
	assert.Contains(t, out, `const Q = {`)
	assert.NotContains(t, out, "const QUESTION =")
	assert.Contains(t, out, Shim)
}

func TestInject_AssignmentBeatsMarker(t *testing.T) {
	doc := "<body><script>const QUESTION = {x:1}; var y = " + Marker + ";</script></body></html>"
	out := Inject(doc, sampleQuestion())
	assert.Contains(t, out, Marker, "marker is left alone when an assignment matched")
	assert.NotContains(t, out, "{x:1}")
}

func TestInject_FallbackAfterBody(t *testing.T) {
	doc := "<html><BODY class=\"game\"><canvas></canvas></BODY></html>"

	out := Inject(doc, sampleQuestion())

	idx := strings.Index(out, `<BODY class="game">`+"\n<script>const QUESTION = {")
	assert.GreaterOrEqual(t, idx, 0, "declaration inserted right after the body tag")
	assert.True(t, strings.HasSuffix(out, Shim+"\n</body></html>"))
}

func TestInject_NoMarkerNoClosingTags(t *testing.T) {
	doc := "<body><div id=game></div>"

	out := Inject(doc, sampleQuestion())

	assert.True(t, strings.HasPrefix(out, "<body>\n<script>const QUESTION = {"))
	assert.True(t, strings.HasSuffix(out, "\n"+Shim))
}

func TestInject_NoBodyTag(t *testing.T) {
	out := Inject("<canvas></canvas>", sampleQuestion())
	assert.True(t, strings.HasPrefix(out, "<script>const QUESTION = {"))
	assert.True(t, strings.HasSuffix(out, Shim))
}

func TestInject_EmptyTemplate(t *testing.T) {
	out := Inject("", sampleQuestion())
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "const QUESTION =")
	assert.Contains(t, out, Shim)
}

func TestInject_ShimBeforeTrailingTagsWithWhitespace(t *testing.T) {
	doc := "<body>" + Marker + "</body>\n  </html>\n\n"
	out := Inject(doc, sampleQuestion())
	assert.True(t, strings.HasSuffix(out, Shim+"\n</body></html>"))
}

func TestInject_ShimBeforeLastBodyClose(t *testing.T) {
	doc := "<html><body>" + Marker + "</body><!-- footer --></html>"
	out := Inject(doc, sampleQuestion())
	assert.Contains(t, out, Shim+"\n</body><!-- footer --></html>")
}

func TestInject_Pure(t *testing.T) {
	q := sampleQuestion()
	for _, tmpl := range templates.Seed() {
		a := Inject(tmpl.Code, q)
		b := Inject(tmpl.Code, q)
		assert.Equal(t, a, b, tmpl.ID)
		assert.Contains(t, a, Shim, tmpl.ID)
	}
}

func TestInject_SeedTemplatesCarryQuestion(t *testing.T) {
	q := sampleQuestion()
	for _, tmpl := range templates.Seed() {
		out := Inject(tmpl.Code, q)
		assert.Contains(t, out, `"prompt": "Which planet is largest?"`, tmpl.ID)
		assert.NotContains(t, out, Marker, tmpl.ID)
	}
}

func TestInject_EscapesScriptBreakout(t *testing.T) {
	q := sampleQuestion()
	q.Prompt = "</script><script>alert(1)</script>"
	out := Inject("<body></body></html>", q)
	assert.NotContains(t, out, "</script><script>alert(1)")
}

func TestInject_LiteralDollarInPrompt(t *testing.T) {
	q := sampleQuestion()
	q.Prompt = "Costs $1 or $2?"
	out := Inject("<body><script>const QUESTION = {};</script></body></html>", q)
	assert.Contains(t, out, `"prompt": "Costs $1 or $2?"`)
}

func TestShim_Protocol(t *testing.T) {
	for _, want := range []string{"quiz-ready", "quiz-choice", "quiz-end", "__wrapped", "__report", "clearInterval", "pagehide"} {
		assert.Contains(t, Shim, want)
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
