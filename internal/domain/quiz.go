package domain

import "strings"

// QuizOptionCount is the number of answer options every question carries.
const QuizOptionCount = 4

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// Validate checks that the question is answerable.
func (q *QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return NewValidationError("question", "cannot be empty")
	}
	if len(q.Options) != QuizOptionCount {
		return NewValidationError("options", "must contain exactly 4 entries")
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return NewValidationError("options", "entries cannot be empty")
		}
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return NewValidationError("correct", "must index one of the options")
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate shared options.
func (q QuizQuestion) Clone() QuizQuestion {
	q.Options = append([]string(nil), q.Options...)
	return q
}
