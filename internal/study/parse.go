package study

import (
	"errors"
	"strings"
)

// ParseResponse coerces the upstream completion text into the structured
// result for op. It returns a *ParseError when the text cannot be repaired
// into the expected shape; partially parsed content is never returned.
func ParseResponse(op Operation, raw string) (any, error) {
	switch op {
	case OpGenerateBatch:
		return parseFlashcards(raw)
	case OpGenerateMCQBatch:
		return parseMCQs(raw)
	default:
		return parseAnalysis(op, raw)
	}
}

func parseAnalysis(op Operation, raw string) (*Analysis, error) {
	var out Analysis
	if err := decodeObject(raw, &out); err != nil {
		return nil, &ParseError{Operation: op, Cause: err}
	}
	if strings.TrimSpace(out.Subject) == "" {
		return nil, &ParseError{Operation: op, Cause: errors.New("missing subject")}
	}
	if len(out.Outline) == 0 {
		return nil, &ParseError{Operation: op, Cause: errors.New("missing outline")}
	}
	return &out, nil
}

func parseFlashcards(raw string) (*FlashcardBatch, error) {
	var out FlashcardBatch
	if err := decodeObject(raw, &out); err != nil {
		return nil, &ParseError{Operation: OpGenerateBatch, Cause: err}
	}
	if out.Flashcards == nil {
		return nil, &ParseError{Operation: OpGenerateBatch, Cause: errors.New("flashcards is not a list")}
	}
	return &out, nil
}

// parseMCQs validates the top-level shape only; malformed individual
// questions pass through untouched.
func parseMCQs(raw string) (*MCQBatch, error) {
	var out MCQBatch
	if err := decodeObject(raw, &out); err != nil {
		return nil, &ParseError{Operation: OpGenerateMCQBatch, Cause: err}
	}
	if out.Questions == nil {
		return nil, &ParseError{Operation: OpGenerateMCQBatch, Cause: errors.New("questions is not a list")}
	}
	return &out, nil
}
