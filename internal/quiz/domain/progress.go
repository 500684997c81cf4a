package domain

import "time"

// Answer is one submitted {questionId, answer} pair.
type Answer struct {
	QuestionID string
	Answer     string
}

// AnswerEntry is a graded answer kept in the progress history.
type AnswerEntry struct {
	QuestionID string
	Answer     string
	IsCorrect  bool
	// Batch is the submission number the entry arrived in, starting at 1.
	Batch      int
	AnsweredAt time.Time
}

// Progress is the per (user, field) record. Totals describe the latest
// batch only; Entries accumulate across every batch.
type Progress struct {
	ID            string
	UserID        string
	FieldID       string
	Entries       []AnswerEntry
	TotalCorrect  int
	TotalAnswered int
	Submissions   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Grade scores a batch against the known questions. Answers whose question
// is unknown produce no entry and never count as correct, but totalAnswered
// is always len(answers).
func Grade(answers []Answer, known map[string]Question, batch int, now time.Time) (entries []AnswerEntry, totalCorrect, totalAnswered int) {
	entries = make([]AnswerEntry, 0, len(answers))
	for _, a := range answers {
		q, ok := known[a.QuestionID]
		if !ok {
			continue
		}
		correct := q.Accepts(a.Answer)
		if correct {
			totalCorrect++
		}
		entries = append(entries, AnswerEntry{
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
			IsCorrect:  correct,
			Batch:      batch,
			AnsweredAt: now,
		})
	}
	return entries, totalCorrect, len(answers)
}

// Apply records a graded batch: totals are overwritten, entries appended and
// the submission counter advanced.
func (p *Progress) Apply(entries []AnswerEntry, totalCorrect, totalAnswered int, now time.Time) {
	p.Entries = append(p.Entries, entries...)
	p.TotalCorrect = totalCorrect
	p.TotalAnswered = totalAnswered
	p.Submissions++
	p.UpdatedAt = now
}

// Batch returns the entries of submission n.
func (p Progress) Batch(n int) []AnswerEntry {
	var out []AnswerEntry
	for _, e := range p.Entries {
		if e.Batch == n {
			out = append(out, e)
		}
	}
	return out
}
