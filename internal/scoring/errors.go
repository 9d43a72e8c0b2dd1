package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteAnswers is matched by IncompleteAnswersError.
	ErrIncompleteAnswers = errors.New("incomplete answers")
	// ErrInvalidAnswerShape is matched by InvalidAnswerError.
	ErrInvalidAnswerShape = errors.New("invalid answer shape")
)

// IncompleteAnswersError lists the bank questions that have no answer.
// Missing is sorted ascending.
type IncompleteAnswersError struct {
	Missing []string
}

func (e *IncompleteAnswersError) Error() string {
	return fmt.Sprintf("incomplete answers: %d question(s) unanswered: %s",
		len(e.Missing), strings.Join(e.Missing, ", "))
}

func (e *IncompleteAnswersError) Is(target error) bool {
	return target == ErrIncompleteAnswers
}

// InvalidAnswerError reports an answer whose populated field does not match
// the question's answer type.
type InvalidAnswerError struct {
	QuestionID string
	Reason     string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer for %q: %s", e.QuestionID, e.Reason)
}

func (e *InvalidAnswerError) Is(target error) bool {
	return target == ErrInvalidAnswerShape
}
