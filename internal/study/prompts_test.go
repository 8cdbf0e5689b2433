package study

import (
	"strings"
	"testing"
)

func TestTuning(t *testing.T) {
	t.Parallel()

	if temp, tokens := Tuning(OpAnalyze); temp != 0.5 || tokens != 2048 {
		t.Fatalf("analyze tuning: %v %v", temp, tokens)
	}
	if temp, tokens := Tuning(OpGenerateBatch); temp != 0.9 || tokens != 4096 {
		t.Fatalf("flashcard tuning: %v %v", temp, tokens)
	}
	if temp, tokens := Tuning(OpGenerateMCQBatch); temp != 0.7 || tokens != 4096 {
		t.Fatalf("mcq tuning: %v %v", temp, tokens)
	}
}

func TestBuildPromptFlashcardsExistingQuestions(t *testing.T) {
	t.Parallel()

	req := validGenerateRequest(OpGenerateBatch)
	req.Count = 5
	req.ExistingQuestions = []string{"What is a cell?"}
	req.Normalize()

	prompt := BuildPrompt(req, req.Transcript)

	if !strings.Contains(prompt, "create 5 flashcards") {
		t.Fatalf("count not rendered:\n%s", prompt)
	}
	if !strings.Contains(prompt, "What is a cell?") {
		t.Fatalf("existing questions not listed")
	}
	if !strings.Contains(prompt, "do NOT repeat") {
		t.Fatalf("avoidance instruction missing")
	}
	if !strings.Contains(prompt, "Biology") {
		t.Fatalf("course subject missing")
	}
}

func TestBuildPromptNoExistingQuestionsSection(t *testing.T) {
	t.Parallel()

	req := validGenerateRequest(OpGenerateBatch)
	req.Normalize()

	if strings.Contains(BuildPrompt(req, req.Transcript), "do NOT repeat") {
		t.Fatalf("avoidance section should be omitted when no prior questions exist")
	}
}

func TestBuildPromptLanguage(t *testing.T) {
	t.Parallel()

	req := &Request{Type: OpAnalyze, Transcript: "t", Language: "fr"}
	if !strings.Contains(BuildPrompt(req, "t"), "Répondez en français.") {
		t.Fatalf("french instruction missing")
	}

	req.Language = "en"
	if !strings.Contains(BuildPrompt(req, "t"), "Respond in English.") {
		t.Fatalf("english instruction missing")
	}
}
