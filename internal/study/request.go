// Package study models the study-aid operations the gateway dispatches:
// transcript analysis, flashcard batches, and MCQ batches. It owns request
// validation, prompt construction, transcript sampling, and the parsing of
// upstream responses.
package study

import (
	"encoding/json"
	"strings"
)

// Operation discriminates the request union.
type Operation string

const (
	OpAnalyze          Operation = "analyze"
	OpGenerateBatch    Operation = "generate-batch"
	OpGenerateMCQBatch Operation = "generate-mcq-batch"
)

const (
	defaultLanguage = "en"
	defaultCount    = 10

	minCount = 1
	maxCount = 50
)

// CourseData is the analysis result fed back into generation requests.
type CourseData struct {
	Subject string   `json:"subject"`
	Outline []string `json:"outline"`
}

// Request is the dispatched unit of work, a tagged union over the three
// operation kinds. Type selects which field set is required.
type Request struct {
	Type              Operation   `json:"type"`
	Language          string      `json:"language,omitempty"`
	Transcript        string      `json:"transcript,omitempty"`
	CourseData        *CourseData `json:"courseData,omitempty"`
	Count             int         `json:"count,omitempty"`
	ExistingQuestions []string    `json:"existingQuestions,omitempty"`
}

// Validate checks the required-field set for the request's operation kind.
// Messages are caller-facing.
func (r *Request) Validate() error {
	switch r.Type {
	case OpAnalyze:
		if strings.TrimSpace(r.Transcript) == "" {
			return validationErrorf("Missing transcript for analysis")
		}
	case OpGenerateBatch, OpGenerateMCQBatch:
		if r.CourseData == nil {
			return validationErrorf("Missing course data")
		}
		if strings.TrimSpace(r.Transcript) == "" {
			return validationErrorf("Missing transcript")
		}
		if r.Count != 0 && (r.Count < minCount || r.Count > maxCount) {
			return validationErrorf("Invalid count (must be between %d and %d)", minCount, maxCount)
		}
	default:
		return validationErrorf("Invalid operation type")
	}
	return nil
}

// Normalize fills the defaults for omitted optional fields. Call after
// Validate.
func (r *Request) Normalize() {
	if r.Language == "" {
		r.Language = defaultLanguage
	}
	if r.Count == 0 && r.Type != OpAnalyze {
		r.Count = defaultCount
	}
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Analysis is the analyze operation's result.
type Analysis struct {
	Subject string   `json:"subject"`
	Outline []string `json:"outline"`
}

// Flashcard is one question/answer pair.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FlashcardBatch is the generate-batch result.
type FlashcardBatch struct {
	Flashcards []Flashcard `json:"flashcards"`
}

// MCQBatch is the generate-mcq-batch result. Individual questions pass
// through unvalidated; only the top-level list shape is checked.
type MCQBatch struct {
	Questions []json.RawMessage `json:"questions"`
}
