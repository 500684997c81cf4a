package service

import (
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
)

// QuestionView is the only shape in which questions leave the service.
// CorrectAnswer and Solution are nil, and therefore omitted from JSON, for
// callers that are not admins.
type QuestionView struct {
	ID            string    `json:"id"`
	FieldID       string    `json:"fieldId"`
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer *string   `json:"correctAnswer,omitempty"`
	Solution      *string   `json:"solution,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ViewQuestion projects q for a caller.
func ViewQuestion(q domain.Question, admin bool) QuestionView {
	v := QuestionView{
		ID:        q.ID,
		FieldID:   q.FieldID,
		Type:      string(q.Type),
		Text:      q.Text,
		Options:   make([]string, 0, len(q.Options)),
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
	for _, o := range q.Options {
		v.Options = append(v.Options, o.Text)
	}
	if admin {
		answer, solution := q.CorrectAnswer, q.Solution
		v.CorrectAnswer = &answer
		v.Solution = &solution
	}
	return v
}

func ViewQuestions(qs []domain.Question, admin bool) []QuestionView {
	out := make([]QuestionView, 0, len(qs))
	for _, q := range qs {
		out = append(out, ViewQuestion(q, admin))
	}
	return out
}
