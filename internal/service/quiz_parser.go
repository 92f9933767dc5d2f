package service

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// QuestionCatalog is the on-disk JSON shape of a question bank.
type QuestionCatalog struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// ParseQuizQuestions reads a question bank from a .json catalog or a text file.
func ParseQuizQuestions(filename string) ([]QuizQuestion, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var questions []QuizQuestion
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		questions, err = parseJSONQuestions(file)
	} else {
		questions, err = parseTextQuestions(file)
	}
	if err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no valid questions found in file")
	}

	return questions, nil
}

func parseJSONQuestions(r io.Reader) ([]QuizQuestion, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var questions []QuizQuestion
		if err := json.Unmarshal(data, &questions); err != nil {
			return nil, fmt.Errorf("invalid question list: %w", err)
		}
		return questions, nil
	}

	var catalog QuestionCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("invalid question catalog: %w", err)
	}
	return catalog.Questions, nil
}

// parseTextQuestions reads one question per line:
//
//	"prompt" AC first option | second option | third option
func parseTextQuestions(r io.Reader) ([]QuizQuestion, error) {
	var questions []QuizQuestion
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	questionID := 1

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		question, err := parseQuestionLine(line)
		if err != nil {
			return nil, fmt.Errorf("error parsing line '%s': %w", line, err)
		}

		question.ID = questionID
		questions = append(questions, question)
		questionID++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return questions, nil
}

func parseQuestionLine(line string) (QuizQuestion, error) {
	if !strings.HasPrefix(line, `"`) {
		return QuizQuestion{}, fmt.Errorf("invalid format: question must start with a quote")
	}

	quoteEnd := strings.Index(line[1:], `"`) + 1
	if quoteEnd <= 0 {
		return QuizQuestion{}, fmt.Errorf("invalid format: no closing quote")
	}

	text := strings.TrimSpace(line[1:quoteEnd])
	if utf8.RuneCountInString(text) == 0 {
		return QuizQuestion{}, fmt.Errorf("question cannot be empty")
	}

	remaining := strings.TrimSpace(line[quoteEnd+1:])
	letters, rest, found := strings.Cut(remaining, " ")
	if letters == "" {
		return QuizQuestion{}, fmt.Errorf("no answer letters found")
	}
	if !found || strings.TrimSpace(rest) == "" {
		return QuizQuestion{}, fmt.Errorf("no options found")
	}

	var options []string
	for _, opt := range strings.Split(rest, "|") {
		options = append(options, strings.TrimSpace(opt))
	}

	var answer []int
	for _, l := range strings.ToUpper(letters) {
		if l < 'A' || l > 'Z' {
			return QuizQuestion{}, fmt.Errorf("invalid answer letter %q", l)
		}
		answer = append(answer, int(l-'A'))
	}

	kind := KindSingle
	if len(answer) > 1 {
		kind = KindMultiple
	}

	return QuizQuestion{
		Question: text,
		Options:  options,
		Answer:   answer,
		Type:     kind,
	}, nil
}

// LoadQuestionBank loads the bank from filename, falling back to the default
// questions when the file is missing or invalid.
func LoadQuestionBank(filename string) *QuestionBank {
	questions, err := ParseQuizQuestions(filename)
	if err == nil {
		var bank *QuestionBank
		bank, err = NewQuestionBank(questions)
		if err == nil {
			log.Printf("Successfully loaded %d questions from %s", bank.Len(), filename)
			return bank
		}
	}

	log.Printf("Warning: Failed to load questions from %s: %v", filename, err)
	log.Println("Using default questions...")

	bank, err := NewQuestionBank(DefaultQuizQuestions())
	if err != nil {
		// default questions are static and always valid
		panic(err)
	}
	return bank
}

// DefaultQuizQuestions returns the built-in fallback bank.
func DefaultQuizQuestions() []QuizQuestion {
	return []QuizQuestion{
		{
			ID:       1,
			Question: "给中国送来了马克思列宁主义，给苦苦探寻救亡图存出路的中国人民指明了前进方向、提供了全新选择的是（ ）",
			Options:  []string{"鸦片战争", "新文化运动", "五四运动", "十月革命"},
			Answer:   []int{3},
			Type:     KindSingle,
		},
		{
			ID:       2,
			Question: "1921年中国共产党诞生后，（ ）成为中国共产党人的重大时代课题",
			Options:  []string{"领导工人运动", "遵循马克思列宁主义", "马克思主义中国化时代化", "领导中国革命"},
			Answer:   []int{2},
			Type:     KindSingle,
		},
		{
			ID:       3,
			Question: "马克思主义中国化时代化的理论成果包括（ ）",
			Options:  []string{"毛泽东思想", "邓小平理论", "三个代表重要思想", "科学发展观"},
			Answer:   []int{0, 1, 2, 3},
			Type:     KindMultiple,
		},
	}
}
