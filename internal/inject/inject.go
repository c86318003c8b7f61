// Package inject rewrites a template document so that it carries one
// question and reports game events to its host.
package inject

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/abhisek/quizarcade/internal/quiz"
)

// Marker is the placeholder token a template may use instead of a
// `const QUESTION = {...};` declaration.
const Marker = "/*__QUESTION_JSON__*/"

//go:embed shim.js
var shimJS string

// Shim is the reporting script appended to every injected document.
var Shim = "<script>\n" + strings.TrimSpace(shimJS) + "\n</script>"

var (
	questionBlock = regexp.MustCompile(`(?s)const\s+QUESTION\s*=\s*\{.*?\};`)
	bodyOpen      = regexp.MustCompile(`(?i)<body[^>]*>`)
	closingTail   = regexp.MustCompile(`(?i)</body>\s*</html>\s*$`)
	bodyClose     = regexp.MustCompile(`(?i)</body>`)
)

// Record is the question data a template sees as QUESTION.
type Record struct {
	Type    quiz.QuestionType `json:"type"`
	Prompt  string            `json:"prompt"`
	Choices []RecordChoice    `json:"choices"`
}

// RecordChoice is a choice inside a Record.
type RecordChoice struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

// Serialize converts a question into the record embedded in templates.
func Serialize(q quiz.Question) Record {
	choices := make([]RecordChoice, len(q.Choices))
	for i, c := range q.Choices {
		choices[i] = RecordChoice{
			Text:        c.Text,
			IsCorrect:   c.IsCorrect,
			Explanation: c.Explanation,
		}
	}
	return Record{Type: q.Type, Prompt: q.Prompt, Choices: choices}
}

// Inject embeds q into the template document and appends the reporting shim.
//
// The embedding point is, in order: an existing `const QUESTION = {...};`
// declaration, the Marker token, or a new declaration right after the
// opening body tag. Documents with no body tag get the declaration
// prepended. Inject has no side effects; equal inputs give equal output.
func Inject(code string, q quiz.Question) string {
	data := marshalRecord(Serialize(q))
	decl := "const QUESTION = " + data + ";"

	switch {
	case questionBlock.MatchString(code):
		loc := questionBlock.FindStringIndex(code)
		code = code[:loc[0]] + decl + code[loc[1]:]
	case strings.Contains(code, Marker):
		code = strings.Replace(code, Marker, data, 1)
	default:
		script := "<script>" + decl + "</script>"
		if loc := bodyOpen.FindStringIndex(code); loc != nil {
			code = code[:loc[1]] + "\n" + script + code[loc[1]:]
		} else {
			code = script + "\n" + code
		}
	}

	return appendShim(code)
}

func appendShim(code string) string {
	if loc := closingTail.FindStringIndex(code); loc != nil {
		return code[:loc[0]] + Shim + "\n</body></html>"
	}
	if all := bodyClose.FindAllStringIndex(code, -1); len(all) > 0 {
		last := all[len(all)-1]
		return code[:last[0]] + Shim + "\n" + code[last[0]:]
	}
	return code + "\n" + Shim
}

// marshalRecord renders the record as indented JSON. HTML-significant
// characters are escaped so question text cannot close the script element.
func marshalRecord(r Record) string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		// Record holds only strings and bools.
		panic("inject: marshal record: " + err.Error())
	}
	return string(b)
}
