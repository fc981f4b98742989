// behavioral.go
package models

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// QuizOption is one selectable choice for a quiz question.
type QuizOption struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// QuizQuestion is one behavioral scenario question. Correct holds the
// answer key and must never be serialized to riders.
type QuizQuestion struct {
	ID      string       `yaml:"id"`
	Text    string       `yaml:"text"`
	Options []QuizOption `yaml:"options"`
	Correct string       `yaml:"correct"`
}

// Quiz holds the behavioral question catalog.
type Quiz struct {
	Questions []QuizQuestion `yaml:"questions"`
}

// LoadQuiz reads and parses the behavioral question catalog.
func LoadQuiz(path string) (*Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quiz file: %w", err)
	}

	var quiz Quiz
	if err := yaml.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz YAML: %w", err)
	}

	return &quiz, nil
}

// CorrectChoice returns the answer key entry for a question id. It
// satisfies the decision engine's AnswerKey interface.
func (q *Quiz) CorrectChoice(questionID string) (string, bool) {
	for _, question := range q.Questions {
		if question.ID == questionID {
			return question.Correct, true
		}
	}
	return "", false
}

// Shuffled returns the questions in random order for serving; the catalog
// itself keeps its file order.
func (q *Quiz) Shuffled() []QuizQuestion {
	out := make([]QuizQuestion, len(q.Questions))
	copy(out, q.Questions)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
