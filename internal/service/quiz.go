package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
)

type QuestionKind string

const (
	KindSingle   QuestionKind = "single"
	KindMultiple QuestionKind = "multiple"
)

var ErrQuestionNotFound = errors.New("question not found")

var validate = validator.New()

type QuizQuestion struct {
	ID       int          `json:"id" validate:"gt=0"`
	Question string       `json:"question" validate:"required"`
	Options  []string     `json:"options" validate:"min=1,dive,required"`
	Answer   []int        `json:"answer" validate:"min=1,dive,gte=0"`
	Type     QuestionKind `json:"type" validate:"oneof=single multiple"`
}

// Validate checks the struct tags and that Answer fits Options and Type.
func (q QuizQuestion) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("question %d: %w", q.ID, err)
	}

	seen := make(map[int]bool, len(q.Answer))
	for _, a := range q.Answer {
		if a >= len(q.Options) {
			return fmt.Errorf("question %d: answer %d out of range (%d options)", q.ID, a, len(q.Options))
		}
		if seen[a] {
			return fmt.Errorf("question %d: duplicate answer %d", q.ID, a)
		}
		seen[a] = true
	}

	if q.Type == KindSingle && len(q.Answer) != 1 {
		return fmt.Errorf("question %d: single question needs exactly one answer, got %d", q.ID, len(q.Answer))
	}
	return nil
}

// IsCorrect compares the selection with the answer as sets. No partial credit.
func (q QuizQuestion) IsCorrect(selection []int) bool {
	if len(selection) != len(q.Answer) {
		return false
	}
	want := make(map[int]bool, len(q.Answer))
	for _, a := range q.Answer {
		want[a] = true
	}
	for _, s := range selection {
		if !want[s] {
			return false
		}
		delete(want, s)
	}
	return len(want) == 0
}

func (q QuizQuestion) IsAnswer(option int) bool {
	for _, a := range q.Answer {
		if a == option {
			return true
		}
	}
	return false
}

// AnswerLabels returns the correct options as sorted letters, e.g. ["A", "C"].
func (q QuizQuestion) AnswerLabels() []string {
	answer := append([]int(nil), q.Answer...)
	sort.Ints(answer)

	labels := make([]string, len(answer))
	for i, a := range answer {
		labels[i] = OptionLabel(a)
	}
	return labels
}

var (
	pageRefPattern = regexp.MustCompile(`（[^）]*）`)
	sourcePattern  = regexp.MustCompile(`【[^】]*】`)
)

// DisplayText blanks the first parenthesised reference and drops the first
// bracketed page marker.
func (q QuizQuestion) DisplayText() string {
	text := replaceFirst(pageRefPattern, q.Question, "（ ）")
	return replaceFirst(sourcePattern, text, "")
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

// OptionLabel maps a zero-based option index to A, B, C, ...
func OptionLabel(i int) string {
	if i < 0 || i >= 26 {
		return fmt.Sprintf("%d", i+1)
	}
	return string(rune('A' + i))
}

// QuestionBank is the read-only catalog every session draws from.
type QuestionBank struct {
	questions []QuizQuestion
	byID      map[int]int
}

func NewQuestionBank(questions []QuizQuestion) (*QuestionBank, error) {
	bank := &QuestionBank{
		questions: make([]QuizQuestion, 0, len(questions)),
		byID:      make(map[int]int, len(questions)),
	}

	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := bank.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		q.Options = append([]string(nil), q.Options...)
		q.Answer = append([]int(nil), q.Answer...)
		bank.byID[q.ID] = len(bank.questions)
		bank.questions = append(bank.questions, q)
	}

	return bank, nil
}

func (b *QuestionBank) All() []QuizQuestion {
	out := make([]QuizQuestion, len(b.questions))
	copy(out, b.questions)
	return out
}

func (b *QuestionBank) ByID(id int) (QuizQuestion, error) {
	i, ok := b.byID[id]
	if !ok {
		return QuizQuestion{}, fmt.Errorf("%w: id %d", ErrQuestionNotFound, id)
	}
	return b.questions[i], nil
}

func (b *QuestionBank) ByKind(kind QuestionKind) []QuizQuestion {
	var out []QuizQuestion
	for _, q := range b.questions {
		if q.Type == kind {
			out = append(out, q)
		}
	}
	return out
}

func (b *QuestionBank) Len() int {
	return len(b.questions)
}
