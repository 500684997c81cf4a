package domain

import (
	"strings"
	"time"
)

type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionDescriptive QuestionType = "descriptive"
)

func (t QuestionType) Valid() bool {
	return t == QuestionMCQ || t == QuestionDescriptive
}

type Option struct {
	Text string `json:"text" bson:"text"`
}

// Question belongs to exactly one Field. CorrectAnswer and Solution are
// only ever shown to admins.
type Question struct {
	ID            string
	FieldID       string
	Type          QuestionType
	Text          string
	Options       []Option
	CorrectAnswer string
	Solution      string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NormalizeAnswer is the comparison form of an answer: trimmed and lower case.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Accepts reports whether answer matches the stored correct answer, ignoring
// case and surrounding whitespace. A question without a correct answer
// accepts nothing.
func (q Question) Accepts(answer string) bool {
	want := NormalizeAnswer(q.CorrectAnswer)
	return want != "" && NormalizeAnswer(answer) == want
}
