package fetch

import (
	"testing"
)

// --- heading ---

func TestHeading(t *testing.T) {
	tests := []struct {
		line      string
		wantLevel int
		wantTitle string
		wantOK    bool
	}{
		{"== History ==", 2, "History", true},
		{"=== Early life ===", 3, "Early life", true},
		{"==== Detail ====", 4, "Detail", true},
		{"  == Padded ==  ", 2, "Padded", true},
		{"= Title =", 0, "", false},
		{"====", 0, "", false},
		{"== ==", 0, "", false},
		{"a == b ==", 0, "", false},
		{"plain text", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			level, title, ok := heading(tt.line)
			if ok != tt.wantOK || level != tt.wantLevel || title != tt.wantTitle {
				t.Errorf("heading(%q) = (%d, %q, %v), want (%d, %q, %v)",
					tt.line, level, title, ok, tt.wantLevel, tt.wantTitle, tt.wantOK)
			}
		})
	}
}

// --- ParseExtract ---

func TestParseExtract(t *testing.T) {
	text := `Albert Einstein was a physicist.
He was born in Ulm.

== Life ==
Einstein lived in many places.

=== Childhood ===
He grew up in Munich.

==== School ====
He attended the Luitpold Gymnasium.

=== Later years ===
He moved to Princeton.

== Work ==
He developed relativity.
`
	c := ParseExtract(text)

	if c.Summary != "Albert Einstein was a physicist.\nHe was born in Ulm." {
		t.Errorf("Summary = %q", c.Summary)
	}
	if len(c.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(c.Sections))
	}

	life := c.Sections[0]
	if life.Title != "Life" || life.Content != "Einstein lived in many places." {
		t.Errorf("Sections[0] = %q / %q", life.Title, life.Content)
	}
	if len(life.Items) != 2 {
		t.Fatalf("len(Life.Items) = %d, want 2", len(life.Items))
	}
	if life.Items[0].Title != "Childhood" {
		t.Errorf("Items[0].Title = %q, want Childhood", life.Items[0].Title)
	}
	wantChildhood := "He grew up in Munich.\nSchool\nHe attended the Luitpold Gymnasium."
	if life.Items[0].Content != wantChildhood {
		t.Errorf("Items[0].Content = %q, want %q", life.Items[0].Content, wantChildhood)
	}
	if life.Items[1].Title != "Later years" || life.Items[1].Content != "He moved to Princeton." {
		t.Errorf("Items[1] = %+v", life.Items[1])
	}

	work := c.Sections[1]
	if work.Title != "Work" || work.Content != "He developed relativity." || len(work.Items) != 0 {
		t.Errorf("Sections[1] = %+v", work)
	}
}

func TestParseExtract_NoSections(t *testing.T) {
	c := ParseExtract("Just a lead paragraph.\n")
	if c.Summary != "Just a lead paragraph." {
		t.Errorf("Summary = %q", c.Summary)
	}
	if len(c.Sections) != 0 {
		t.Errorf("len(Sections) = %d, want 0", len(c.Sections))
	}
}

func TestParseExtract_Empty(t *testing.T) {
	c := ParseExtract("")
	if c.Summary != "" || len(c.Sections) != 0 {
		t.Errorf("ParseExtract(\"\") = %+v, want zero content", c)
	}
}
