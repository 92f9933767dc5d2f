package service

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

var ErrEmptySession = errors.New("no questions to practise")

type Evaluation int

const (
	NotEvaluated Evaluation = iota
	EvaluatedCorrect
	EvaluatedIncorrect
)

func (e Evaluation) String() string {
	switch e {
	case EvaluatedCorrect:
		return "correct"
	case EvaluatedIncorrect:
		return "incorrect"
	}
	return "not evaluated"
}

type SessionState int

const (
	StatePresenting SessionState = iota
	StateEvaluated
	StateSummary
	StateEnded
)

type KindStats struct {
	Total    int
	Correct  int
	Accuracy float64
}

// Summary is the final report of a random session. Accuracy is a percentage.
// Only questions shown in this run are counted; ResumedAt is the 1-based
// number the run resumed from, 0 when it started at the first question.
type Summary struct {
	Total     int
	Correct   int
	Accuracy  float64
	Elapsed   time.Duration
	ResumedAt int
	ByKind    map[QuestionKind]KindStats
}

type OptionView struct {
	Index     int
	Label     string
	Text      string
	Selected  bool
	Correct   bool
	Incorrect bool
}

// QuestionView is everything a shell needs to draw the current question.
type QuestionView struct {
	SessionID     string
	Mode          Mode
	QuestionID    int
	Number        int
	Total         int
	Prompt        string
	Kind          QuestionKind
	Options       []OptionView
	Evaluation    Evaluation
	AnswerLabels  []string
	SubmitPending bool
	CanAdvance    bool
	CanRetreat    bool
	CanJump       bool
	CanRemove     bool
	IsLast        bool
	WrongTimes    int
}

// Session drives one run through a set of questions. It is not safe for
// concurrent use; shells serialize the actions of one user.
type Session struct {
	id       uuid.UUID
	policy   SessionPolicy
	ledger   WrongAnswerLedger
	progress ProgressStore
	now      func() time.Time

	questions  []QuizQuestion
	results    []Evaluation
	visited    []bool
	resumedAt  int
	position   int
	selection  []int
	evaluation Evaluation
	startedAt  time.Time
	summary    *Summary
	ended      bool
}

type SessionOption func(*Session)

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession samples questions with policy and resumes the stored position
// when it is still in range. progress may be nil.
func NewSession(policy SessionPolicy, bank *QuestionBank, ledger WrongAnswerLedger, progress ProgressStore, opts ...SessionOption) (*Session, error) {
	s := &Session{
		id:       uuid.New(),
		policy:   policy,
		ledger:   ledger,
		progress: progress,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.questions = policy.Sample(bank, ledger)
	if len(s.questions) == 0 {
		return nil, ErrEmptySession
	}
	s.results = make([]Evaluation, len(s.questions))
	s.visited = make([]bool, len(s.questions))
	s.startedAt = s.now()

	if progress != nil {
		pos := progress.Load(policy.Mode())
		if pos < len(s.questions) {
			s.position = pos
			s.resumedAt = pos
		} else {
			log.Printf("session %s: stored %s position %d out of range (%d questions), starting over",
				s.id, policy.Mode(), pos, len(s.questions))
		}
	}
	s.visited[s.position] = true

	return s, nil
}

func (s *Session) ID() string {
	return s.id.String()
}

func (s *Session) Mode() Mode {
	return s.policy.Mode()
}

func (s *Session) Len() int {
	return len(s.questions)
}

func (s *Session) Position() int {
	return s.position
}

func (s *Session) Evaluation() Evaluation {
	return s.evaluation
}

func (s *Session) Selection() []int {
	out := append([]int(nil), s.selection...)
	sort.Ints(out)
	return out
}

func (s *Session) State() SessionState {
	switch {
	case s.ended:
		return StateEnded
	case s.summary != nil:
		return StateSummary
	case s.evaluation != NotEvaluated:
		return StateEvaluated
	}
	return StatePresenting
}

func (s *Session) active() bool {
	return !s.ended && s.summary == nil
}

func (s *Session) Current() (QuizQuestion, bool) {
	if !s.active() {
		return QuizQuestion{}, false
	}
	return s.questions[s.position], true
}

// Select picks an option. Single questions are evaluated right away;
// multiple questions toggle the option until Submit. It reports whether the
// action was accepted.
func (s *Session) Select(option int) bool {
	q, ok := s.Current()
	if !ok || s.evaluation != NotEvaluated {
		return false
	}
	if option < 0 || option >= len(q.Options) {
		return false
	}

	if q.Type == KindSingle {
		s.selection = []int{option}
		s.evaluate(q)
		return true
	}

	for i, sel := range s.selection {
		if sel == option {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
			return true
		}
	}
	s.selection = append(s.selection, option)
	return true
}

// Submit evaluates a pending multiple-choice selection.
func (s *Session) Submit() bool {
	q, ok := s.Current()
	if !ok || q.Type != KindMultiple || s.evaluation != NotEvaluated {
		return false
	}
	s.evaluate(q)
	return true
}

func (s *Session) evaluate(q QuizQuestion) {
	if q.IsCorrect(s.selection) {
		s.evaluation = EvaluatedCorrect
	} else {
		s.evaluation = EvaluatedIncorrect
	}
	s.results[s.position] = s.evaluation

	if s.evaluation == EvaluatedIncorrect && s.ledger != nil {
		if err := s.ledger.Record(q.ID); err != nil {
			log.Printf("session %s: error recording wrong answer for question %d: %v", s.id, q.ID, err)
		}
	}
}

// Next advances. On the last question the policy decides: stay, finish
// with a summary, or wrap to the first question.
func (s *Session) Next() bool {
	if !s.active() || !s.policy.CanAdvance(s.position, len(s.questions)) {
		return false
	}

	if s.position < len(s.questions)-1 {
		s.moveTo(s.position + 1)
		return true
	}

	switch s.policy.OnExhausted() {
	case ExhaustSummary:
		s.finish()
		return true
	case ExhaustWrap:
		s.moveTo(0)
		return true
	}
	return false
}

func (s *Session) Prev() bool {
	if !s.active() || !s.policy.CanRetreat(s.position) {
		return false
	}
	s.moveTo(s.position - 1)
	return true
}

func (s *Session) Jump(index int) bool {
	if !s.active() || !s.policy.CanJump() {
		return false
	}
	if index < 0 || index >= len(s.questions) {
		return false
	}
	s.moveTo(index)
	return true
}

// RemoveCurrent drops the current question from the ledger and from this
// session. Removing the last remaining question ends the session.
func (s *Session) RemoveCurrent() bool {
	q, ok := s.Current()
	if !ok || !s.policy.CanRemove() {
		return false
	}

	if s.ledger != nil {
		if err := s.ledger.Remove(q.ID); err != nil {
			log.Printf("session %s: error removing question %d from ledger: %v", s.id, q.ID, err)
		}
	}

	s.questions = append(s.questions[:s.position], s.questions[s.position+1:]...)
	s.results = append(s.results[:s.position], s.results[s.position+1:]...)
	s.visited = append(s.visited[:s.position], s.visited[s.position+1:]...)
	s.reset()

	if len(s.questions) == 0 {
		s.ended = true
		s.position = 0
		s.saveProgress()
		return true
	}

	if s.position > len(s.questions)-1 {
		s.position = len(s.questions) - 1
	}
	s.visited[s.position] = true
	s.saveProgress()
	return true
}

func (s *Session) moveTo(position int) {
	s.position = position
	s.visited[position] = true
	s.reset()
	s.saveProgress()
}

func (s *Session) reset() {
	s.selection = nil
	s.evaluation = NotEvaluated
}

func (s *Session) saveProgress() {
	if s.progress == nil {
		return
	}
	if err := s.progress.Save(s.policy.Mode(), s.position); err != nil {
		log.Printf("session %s: %v", s.id, err)
	}
}

func (s *Session) finish() {
	summary := &Summary{
		Elapsed: s.now().Sub(s.startedAt),
		ByKind:  make(map[QuestionKind]KindStats),
	}
	if s.resumedAt > 0 {
		summary.ResumedAt = s.resumedAt + 1
	}

	for i, q := range s.questions {
		if !s.visited[i] {
			continue
		}
		summary.Total++
		stats := summary.ByKind[q.Type]
		stats.Total++
		if s.results[i] == EvaluatedCorrect {
			stats.Correct++
			summary.Correct++
		}
		summary.ByKind[q.Type] = stats
	}

	summary.Accuracy = percent(summary.Correct, summary.Total)
	for kind, stats := range summary.ByKind {
		stats.Accuracy = percent(stats.Correct, stats.Total)
		summary.ByKind[kind] = stats
	}

	s.summary = summary
	s.reset()
	s.position = 0
	s.saveProgress()

	log.Printf("session %s: finished %d/%d correct in %s", s.id, summary.Correct, summary.Total, summary.Elapsed.Round(time.Second))
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

func (s *Session) Summary() (Summary, bool) {
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

func (s *Session) View() (QuestionView, bool) {
	q, ok := s.Current()
	if !ok {
		return QuestionView{}, false
	}

	evaluated := s.evaluation != NotEvaluated
	selected := make(map[int]bool, len(s.selection))
	for _, sel := range s.selection {
		selected[sel] = true
	}

	view := QuestionView{
		SessionID:     s.ID(),
		Mode:          s.policy.Mode(),
		QuestionID:    q.ID,
		Number:        s.position + 1,
		Total:         len(s.questions),
		Prompt:        q.DisplayText(),
		Kind:          q.Type,
		Evaluation:    s.evaluation,
		SubmitPending: q.Type == KindMultiple && !evaluated,
		CanAdvance:    s.policy.CanAdvance(s.position, len(s.questions)),
		CanRetreat:    s.policy.CanRetreat(s.position),
		CanJump:       s.policy.CanJump(),
		CanRemove:     s.policy.CanRemove(),
		IsLast:        s.position == len(s.questions)-1,
	}
	if evaluated {
		view.AnswerLabels = q.AnswerLabels()
	}

	for i, text := range q.Options {
		opt := OptionView{
			Index:    i,
			Label:    OptionLabel(i),
			Text:     text,
			Selected: selected[i],
		}
		if evaluated {
			opt.Correct = q.IsAnswer(i)
			opt.Incorrect = opt.Selected && !opt.Correct
		}
		view.Options = append(view.Options, opt)
	}

	if view.Mode == ModeReview && s.ledger != nil {
		view.WrongTimes = s.ledger.WrongTimes(q.ID)
	}

	return view, true
}
