package question

import "testing"

func TestIsQuestionDefaults(t *testing.T) {
	t.Parallel()

	c := New(nil, 0)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"below minimum length", "what?", false},
		{"exactly too short", "czy tak", false},
		{"english marker at start", "What is your greatest weakness?", true},
		{"english marker mid-sentence", "Tell me how you handle conflict", true},
		{"english phrase marker", "Can you describe your last project?", true},
		{"polish marker", "Dlaczego chcesz u nas pracować?", true},
		{"polish phrase marker", "Czy możesz opowiedzieć o sobie?", true},
		{"uppercase marker", "WHY DID YOU LEAVE YOUR LAST JOB", true},
		{"statement", "I think the weather is nice today.", false},
		{"marker as substring accepted", "Somewhat longer statement here.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.IsQuestion(tt.text); got != tt.want {
				t.Errorf("IsQuestion(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsQuestionShortTextNeverMatches(t *testing.T) {
	t.Parallel()

	c := New(nil, 0)
	// Marker-bearing text below the threshold is still rejected. The
	// multibyte cases are 7 characters but 8 or more bytes; length is
	// counted in characters, so they stay below the threshold.
	for _, text := range []string{"why", "jak to", "czy ty", "czyżby?", "czy już"} {
		if c.IsQuestion(text) {
			t.Errorf("IsQuestion(%q) = true for text shorter than %d characters", text, c.MinLength())
		}
	}
}

func TestIsQuestionCustomConfiguration(t *testing.T) {
	t.Parallel()

	c := New([]string{"pourquoi", "comment"}, 4)

	if !c.IsQuestion("Pourquoi pas?") {
		t.Error("custom marker should match case-insensitively")
	}
	if c.IsQuestion("What time is it?") {
		t.Error("default markers must not apply when custom markers are set")
	}
	if c.IsQuestion("non") {
		t.Error("text below custom minimum length should not match")
	}
}
