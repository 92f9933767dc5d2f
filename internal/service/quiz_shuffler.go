package service

import (
	"math/rand"
	"time"
)

// RandSource is the part of *rand.Rand the samplers need.
type RandSource interface {
	Intn(n int) int
}

func NewRandSource() RandSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// ShuffleQuestions returns a shuffled copy of questions (Fisher-Yates).
func ShuffleQuestions(r RandSource, questions []QuizQuestion) []QuizQuestion {
	shuffled := make([]QuizQuestion, len(questions))
	copy(shuffled, questions)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// ShuffleQuestionsWithLimit shuffles and keeps at most limit questions.
// A non-positive limit keeps none.
func ShuffleQuestionsWithLimit(r RandSource, questions []QuizQuestion, limit int) []QuizQuestion {
	shuffled := ShuffleQuestions(r, questions)

	if limit < 0 {
		limit = 0
	}
	if limit > len(shuffled) {
		limit = len(shuffled)
	}

	return shuffled[:limit]
}

// SampleByKind draws singleQuota single and multipleQuota multiple questions
// without replacement, then shuffles the combined set once.
func SampleByKind(r RandSource, bank *QuestionBank, singleQuota, multipleQuota int) []QuizQuestion {
	picked := ShuffleQuestionsWithLimit(r, bank.ByKind(KindSingle), singleQuota)
	picked = append(picked, ShuffleQuestionsWithLimit(r, bank.ByKind(KindMultiple), multipleQuota)...)
	return ShuffleQuestions(r, picked)
}
