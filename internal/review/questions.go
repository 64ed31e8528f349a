package review

import (
	"regexp"
	"strings"
)

// Question is one user-facing question extracted from a review artifact,
// with the inline example answer when the reviewer provided one.
type Question struct {
	Text    string
	Example string
}

var (
	// questionHeadingRegex matches the demarcated questions section heading,
	// e.g. "## Questions" or "Questions:".
	questionHeadingRegex = regexp.MustCompile(`(?i)^#{0,6}\s*questions\s*:?\s*$`)
	// headingRegex matches any markdown heading, ending the section.
	headingRegex = regexp.MustCompile(`^#{1,6}\s`)
	// bulletRegex strips list markers from question lines.
	bulletRegex = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)
	// exampleRegex splits an inline example answer off the end of a
	// question, e.g. "Should bio be nullable? (e.g., yes)".
	exampleRegex = regexp.MustCompile(`\s*\((?:e\.g\.[,:]?|example:)\s*(.+?)\)\s*$`)
)

// ExtractQuestions scans review text for a demarcated questions section and
// returns its question lines. A review with no such section returns nil;
// that is the common case, not an error.
func ExtractQuestions(review string) []Question {
	lines := strings.Split(review, "\n")

	start := -1
	for i, line := range lines {
		if questionHeadingRegex.MatchString(strings.TrimSpace(line)) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var questions []Question
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if headingRegex.MatchString(trimmed) {
			break
		}

		text := bulletRegex.ReplaceAllString(trimmed, "")
		example := ""
		if m := exampleRegex.FindStringSubmatch(text); m != nil {
			example = strings.TrimSpace(m[1])
			text = strings.TrimSpace(exampleRegex.ReplaceAllString(text, ""))
		}
		if text == "" {
			continue
		}
		questions = append(questions, Question{Text: text, Example: example})
	}
	return questions
}

// FormatAnswers renders question/answer pairs for appending to the review
// artifact before it is consumed downstream.
func FormatAnswers(pairs []AnsweredQuestion) string {
	if len(pairs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n## Answers\n\n")
	for _, p := range pairs {
		sb.WriteString("Q: " + p.Question.Text + "\n")
		sb.WriteString("A: " + p.Answer + "\n")
	}
	return sb.String()
}

// AnsweredQuestion pairs a question with the answer collected for it.
type AnsweredQuestion struct {
	Question Question
	Answer   string
}
