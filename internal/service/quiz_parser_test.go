package service

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseTextQuestions(t *testing.T) {
	path := writeFile(t, "questions.txt", `
# bank
"Capital of France?" B Berlin | Paris | Rome

"Prime numbers" ac 2 | 4 | 3 | 9
`)

	questions, err := ParseQuizQuestions(path)
	if err != nil {
		t.Fatalf("ParseQuizQuestions: %v", err)
	}

	want := []QuizQuestion{
		{ID: 1, Question: "Capital of France?", Options: []string{"Berlin", "Paris", "Rome"}, Answer: []int{1}, Type: KindSingle},
		{ID: 2, Question: "Prime numbers", Options: []string{"2", "4", "3", "9"}, Answer: []int{0, 2}, Type: KindMultiple},
	}
	if !reflect.DeepEqual(questions, want) {
		t.Fatalf("got %+v\nwant %+v", questions, want)
	}
}

func TestParseQuestionLineErrors(t *testing.T) {
	lines := []string{
		`no quote B a | b`,
		`"unterminated B a | b`,
		`"" B a | b`,
		`"q"`,
		`"q" B`,
		`"q" 1 a | b`,
	}

	for _, line := range lines {
		if _, err := parseQuestionLine(line); err == nil {
			t.Errorf("parseQuestionLine(%q) succeeded, want error", line)
		}
	}
}

func TestParseJSONQuestions(t *testing.T) {
	catalog := writeFile(t, "bank.json", `{
  "title": "demo",
  "questions": [
    {"id": 7, "question": "q7", "options": ["x", "y"], "answer": [1], "type": "single"}
  ]
}`)
	list := writeFile(t, "list.json", `[
  {"id": 8, "question": "q8", "options": ["x", "y", "z"], "answer": [0, 2], "type": "multiple"}
]`)

	got, err := ParseQuizQuestions(catalog)
	if err != nil || len(got) != 1 || got[0].ID != 7 || got[0].Type != KindSingle {
		t.Fatalf("catalog: %+v, %v", got, err)
	}

	got, err = ParseQuizQuestions(list)
	if err != nil || len(got) != 1 || !reflect.DeepEqual(got[0].Answer, []int{0, 2}) {
		t.Fatalf("list: %+v, %v", got, err)
	}
}

func TestParseQuizQuestionsErrors(t *testing.T) {
	if _, err := ParseQuizQuestions(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := ParseQuizQuestions(writeFile(t, "empty.txt", "\n# nothing\n")); err == nil {
		t.Error("expected error for empty bank")
	}
	if _, err := ParseQuizQuestions(writeFile(t, "broken.json", "{")); err == nil {
		t.Error("expected error for broken json")
	}
}

func TestLoadQuestionBankFallsBack(t *testing.T) {
	bank := LoadQuestionBank(filepath.Join(t.TempDir(), "missing.json"))
	if bank.Len() != len(DefaultQuizQuestions()) {
		t.Fatalf("fallback bank has %d questions, want %d", bank.Len(), len(DefaultQuizQuestions()))
	}

	invalid := writeFile(t, "invalid.json", `[{"id": 1, "question": "q", "options": ["a"], "answer": [3], "type": "single"}]`)
	if bank := LoadQuestionBank(invalid); bank.Len() != len(DefaultQuizQuestions()) {
		t.Fatal("invalid bank should fall back to defaults")
	}

	valid := writeFile(t, "valid.txt", `"q" A yes | no`)
	if bank := LoadQuestionBank(valid); bank.Len() != 1 {
		t.Fatalf("valid bank Len() = %d, want 1", bank.Len())
	}
}
