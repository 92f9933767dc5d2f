package service

import (
	"errors"
	"fmt"
	"log"
)

type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeRandom     Mode = "random"
	ModeReview     Mode = "review"
)

// Exhaustion says what Next does on the last question.
type Exhaustion int

const (
	ExhaustStay Exhaustion = iota
	ExhaustSummary
	ExhaustWrap
)

// SessionPolicy holds the mode-specific rules of a Session.
type SessionPolicy interface {
	Mode() Mode
	Sample(bank *QuestionBank, ledger WrongAnswerLedger) []QuizQuestion
	CanAdvance(position, length int) bool
	CanRetreat(position int) bool
	CanJump() bool
	CanRemove() bool
	OnExhausted() Exhaustion
}

// SequentialPolicy walks the whole bank in order, both directions.
type SequentialPolicy struct{}

func (SequentialPolicy) Mode() Mode { return ModeSequential }

func (SequentialPolicy) Sample(bank *QuestionBank, _ WrongAnswerLedger) []QuizQuestion {
	return bank.All()
}

func (SequentialPolicy) CanAdvance(position, length int) bool { return position < length-1 }
func (SequentialPolicy) CanRetreat(position int) bool         { return position > 0 }
func (SequentialPolicy) CanJump() bool                        { return true }
func (SequentialPolicy) CanRemove() bool                      { return false }
func (SequentialPolicy) OnExhausted() Exhaustion              { return ExhaustStay }

// RandomPolicy samples fixed per-kind quotas and ends in a summary.
type RandomPolicy struct {
	Rand          RandSource
	SingleQuota   int
	MultipleQuota int
}

func (RandomPolicy) Mode() Mode { return ModeRandom }

func (p RandomPolicy) Sample(bank *QuestionBank, _ WrongAnswerLedger) []QuizQuestion {
	r := p.Rand
	if r == nil {
		r = NewRandSource()
	}
	return SampleByKind(r, bank, p.SingleQuota, p.MultipleQuota)
}

func (RandomPolicy) CanAdvance(position, length int) bool { return position < length }
func (RandomPolicy) CanRetreat(position int) bool         { return position > 0 }
func (RandomPolicy) CanJump() bool                        { return false }
func (RandomPolicy) CanRemove() bool                      { return false }
func (RandomPolicy) OnExhausted() Exhaustion              { return ExhaustSummary }

// ReviewPolicy replays the ledger's questions, forward only, wrapping around.
type ReviewPolicy struct{}

func (ReviewPolicy) Mode() Mode { return ModeReview }

func (ReviewPolicy) Sample(bank *QuestionBank, ledger WrongAnswerLedger) []QuizQuestion {
	if ledger == nil {
		return nil
	}

	var questions []QuizQuestion
	for _, entry := range ledger.List() {
		q, err := bank.ByID(entry.ID)
		if err != nil {
			if !errors.Is(err, ErrQuestionNotFound) {
				log.Printf("Error loading question %d for review: %v", entry.ID, err)
			}
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func (ReviewPolicy) CanAdvance(position, length int) bool { return length > 0 }
func (ReviewPolicy) CanRetreat(int) bool                  { return false }
func (ReviewPolicy) CanJump() bool                        { return false }
func (ReviewPolicy) CanRemove() bool                      { return true }
func (ReviewPolicy) OnExhausted() Exhaustion              { return ExhaustWrap }

type PolicyConfig struct {
	Rand          RandSource
	SingleQuota   int
	MultipleQuota int
}

func NewPolicy(mode Mode, cfg PolicyConfig) (SessionPolicy, error) {
	switch mode {
	case ModeSequential:
		return SequentialPolicy{}, nil
	case ModeRandom:
		return RandomPolicy{Rand: cfg.Rand, SingleQuota: cfg.SingleQuota, MultipleQuota: cfg.MultipleQuota}, nil
	case ModeReview:
		return ReviewPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}
