package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQuestions_DemarcatedSection(t *testing.T) {
	text := `# Review

The mapper looks wrong.

## Questions

- Should the bio field be nullable? (e.g., yes)
- Which Java version is targeted?

## Verdict

Needs another pass.
`
	got := ExtractQuestions(text)

	assert.Len(t, got, 2)
	assert.Equal(t, "Should the bio field be nullable?", got[0].Text)
	assert.Equal(t, "yes", got[0].Example)
	assert.Equal(t, "Which Java version is targeted?", got[1].Text)
	assert.Empty(t, got[1].Example)
}

func TestExtractQuestions_NoSection(t *testing.T) {
	assert.Nil(t, ExtractQuestions("# Review\n\nAll good, no open items.\n"))
}

func TestExtractQuestions_NumberedList(t *testing.T) {
	text := "Questions:\n1. Keep the legacy endpoint? (example: no)\n2) Rename the DTO?\n"
	got := ExtractQuestions(text)

	assert.Len(t, got, 2)
	assert.Equal(t, "Keep the legacy endpoint?", got[0].Text)
	assert.Equal(t, "no", got[0].Example)
	assert.Equal(t, "Rename the DTO?", got[1].Text)
}

func TestFormatAnswers(t *testing.T) {
	out := FormatAnswers([]AnsweredQuestion{
		{Question: Question{Text: "Nullable bio?"}, Answer: "yes"},
	})

	assert.Contains(t, out, "Q: Nullable bio?")
	assert.Contains(t, out, "A: yes")
	assert.Empty(t, FormatAnswers(nil))
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Status
	}{
		{"suitable", "Looks done.\nJUDGEMENT: SUITABLE\n", StatusSuitable},
		{"failed", "JUDGEMENT: FAILED", StatusFailed},
		{"hold", "  JUDGEMENT: HOLD  ", StatusHold},
		{"unnecessary", "JUDGEMENT: UNNECESSARY", StatusUnnecessary},
		{"garbled defaults to changes needed", "JUDGEMENT: MAYBE", StatusChangesNeeded},
		{"missing line defaults to changes needed", "no verdict here", StatusChangesNeeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseStatus(tc.text))
		})
	}
}
