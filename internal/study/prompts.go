package study

import (
	"fmt"
	"strings"
)

// Tuning returns the sampling temperature and token budget for an
// operation kind.
func Tuning(op Operation) (temperature float32, maxTokens int) {
	switch op {
	case OpGenerateBatch:
		return 0.9, 4096
	case OpGenerateMCQBatch:
		return 0.7, 4096
	default:
		return 0.5, 2048
	}
}

// BuildPrompt synthesizes the upstream prompt for req. transcript must be
// the sampled form when the large-transcript policy applied.
func BuildPrompt(req *Request, transcript string) string {
	switch req.Type {
	case OpGenerateBatch:
		return flashcardBatchPrompt(req.CourseData, transcript, req.Count, req.ExistingQuestions, req.Language)
	case OpGenerateMCQBatch:
		return mcqBatchPrompt(req.CourseData, transcript, req.Count, req.Language)
	default:
		return analyzePrompt(transcript, req.Language)
	}
}

func analyzePrompt(transcript, language string) string {
	return fmt.Sprintf(`You are an educational assistant helping university students study.
Analyze the following course transcript and:
1. Determine the main subject of the course
2. Create a concise outline with 3-5 key points

Transcript:
%s

%s

IMPORTANT: Respond ONLY with a valid JSON object and nothing else. No markdown formatting, no backticks, no explanation text.
The JSON must have this exact structure:
{"subject": "The main subject of the course", "outline": ["Key point 1", "Key point 2", "Key point 3"]}`,
		transcript,
		languageInstruction(language, "Respond in English.", "Répondez en français."),
	)
}

func flashcardBatchPrompt(course *CourseData, transcript string, count int, existing []string, language string) string {
	var avoid string
	if len(existing) > 0 {
		var b strings.Builder
		b.WriteString("Questions already shown to the student (do NOT repeat these or close variants):\n")
		for _, q := range existing {
			b.WriteString("- ")
			b.WriteString(q)
			b.WriteString("\n")
		}
		avoid = b.String()
	}

	return fmt.Sprintf(`You are an educational assistant helping university students study.
Based on the following course information and transcript, create %d flashcards with questions and answers.

Course Subject: %s
Course Outline: %s

Original Transcript:
%s

%sIMPORTANT INSTRUCTIONS:
1. Use the actual content from the transcript to create questions, not just the subject and outline
2. Vary the question types between:
   - Definitions (What is...?)
   - Comparisons (How does X compare to Y?)
   - Applications (How would you use...?)
   - Analysis (Why does...?)
   - Cause and Effect (What happens when...?)
   - Examples (Give an example of...)

3. Use different question formats:
   - Open-ended questions
   - Fill-in-the-blank statements
   - True/False with explanation
   - "Identify the concept" questions

4. Vary the cognitive depth:
   - Basic recall (remembering facts)
   - Understanding (explaining concepts)
   - Application (using knowledge in new situations)
   - Analysis (breaking down complex ideas)

5. Make questions:
   - Based on specific details from the transcript
   - Challenging but clear
   - Focused on key concepts
   - Different from each other

%s

IMPORTANT: Respond ONLY with a valid JSON object and nothing else. No markdown formatting, no backticks, no explanation text.
The JSON must have this exact structure:
{"flashcards": [
  {"question": "Question 1", "answer": "Answer 1"},
  {"question": "Question 2", "answer": "Answer 2"},
  ... and so on for all %d flashcards
]}`,
		count,
		course.Subject,
		strings.Join(course.Outline, ", "),
		transcript,
		avoid,
		languageInstruction(language, "Create the flashcards in English.", "Créez les fiches en français."),
		count,
	)
}

func mcqBatchPrompt(course *CourseData, transcript string, count int, language string) string {
	return fmt.Sprintf(`You are an educational assistant helping university students study.
Based on the following course information and transcript, create %d multiple choice questions.

Course Subject: %s
Course Outline: %s

Original Transcript:
%s

IMPORTANT INSTRUCTIONS:
1. Each question must have exactly 4 options (A, B, C, D)
2. Exactly one option must be correct
3. The other 3 options must be plausible but incorrect
4. Use actual content from the transcript
5. Vary question difficulty and cognitive levels

%s

CRITICAL: Reply ONLY with a valid JSON object. No explanations, no markdown formatting, no code block markers.

Use this simplified JSON format:

{"questions": [
  {
    "question": "What is the primary function of mitochondria in a cell?",
    "A": "Protein synthesis",
    "B": "Energy production",
    "C": "Cell division",
    "D": "Waste elimination",
    "correct": "B"
  }
]}

Now create %d questions in this exact format based on the transcript provided.`,
		count,
		course.Subject,
		strings.Join(course.Outline, ", "),
		transcript,
		languageInstruction(language, "Create the questions in English.", "Créez les questions en français."),
		count,
	)
}

func languageInstruction(language, en, fr string) string {
	if language == "fr" {
		return fr
	}
	return en
}
